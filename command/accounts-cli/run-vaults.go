// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"
)

var vaultFlag = cli.StringFlag{
	Name:  "name, n",
	Value: "",
	Usage: "*vault `NAME`",
}

var vaultPasswordFlag = cli.StringFlag{
	Name:  "password, p",
	Value: "",
	Usage: " vault `PASSWORD` (prompted if omitted)",
}

func vaultCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "vault-new",
			Usage:     "create a new vault, it is left open",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{vaultFlag, vaultPasswordFlag},
			Action:    runVaultNew,
		},
		{
			Name:      "vault-open",
			Usage:     "open a vault",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{vaultFlag, vaultPasswordFlag},
			Action:    runVaultOpen,
		},
		{
			Name:      "vault-close",
			Usage:     "close a vault",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{vaultFlag},
			Action:    runVaultClose,
		},
		{
			Name:  "vault-list",
			Usage: "list vaults",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "opened, o",
					Usage: " only list open vaults",
				},
			},
			Action: runVaultList,
		},
		{
			Name:      "vault-meta",
			Usage:     "display the meta of a vault",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{vaultFlag},
			Action:    runVaultMeta,
		},
		{
			Name:      "vault-set-meta",
			Usage:     "set the meta of an open vault",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				vaultFlag,
				cli.StringFlag{
					Name:  "meta, m",
					Value: "",
					Usage: " vault meta `TEXT`",
				},
			},
			Action: runVaultSetMeta,
		},
		{
			Name:      "vault-change-password",
			Usage:     "change the password of an open vault",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{vaultFlag, vaultPasswordFlag},
			Action:    runVaultChangePassword,
		},
	}
}

func runVaultNew(c *cli.Context) error {
	name, err := checkVault(c.String("name"))
	if nil != err {
		return err
	}
	password, err := getNewPassword(c, "password", "new vault password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.CreateVault(name, password); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runVaultOpen(c *cli.Context) error {
	name, err := checkVault(c.String("name"))
	if nil != err {
		return err
	}
	password, err := getPassword(c, "password", "vault password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.OpenVault(name, password); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runVaultClose(c *cli.Context) error {
	name, err := checkVault(c.String("name"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.CloseVault(name); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runVaultList(c *cli.Context) error {
	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	names, err := client.ListVaults(c.Bool("opened"))
	if nil != err {
		return err
	}
	return printJson(m.w, names)
}

func runVaultMeta(c *cli.Context) error {
	name, err := checkVault(c.String("name"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	meta, err := client.VaultMeta(name)
	if nil != err {
		return err
	}
	return printJson(m.w, struct {
		Meta string `json:"meta"`
	}{meta})
}

func runVaultSetMeta(c *cli.Context) error {
	name, err := checkVault(c.String("name"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.SetVaultMeta(name, c.String("meta")); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runVaultChangePassword(c *cli.Context) error {
	name, err := checkVault(c.String("name"))
	if nil != err {
		return err
	}
	password, err := getNewPassword(c, "password", "new vault password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.ChangeVaultPassword(name, password); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}
