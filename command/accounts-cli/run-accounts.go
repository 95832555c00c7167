// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/registry"
)

type okResult struct {
	OK bool `json:"ok"`
}

var addressFlag = cli.StringFlag{
	Name:  "address, a",
	Value: "",
	Usage: "*account `ADDRESS`",
}

var passwordFlag = cli.StringFlag{
	Name:  "password, p",
	Value: "",
	Usage: " account `PASSWORD` (prompted if omitted)",
}

func accountCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "new",
			Usage:     "create a new key-backed account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				passwordFlag,
				cli.StringFlag{
					Name:  "vault, V",
					Value: "",
					Usage: " place the key in vault `NAME` (default is the root vault)",
				},
			},
			Action: runNewAccount,
		},
		{
			Name:   "list",
			Usage:  "list visible key-backed accounts",
			Action: runListAccounts,
		},
		{
			Name:   "all-info",
			Usage:  "display all visible accounts and address book entries",
			Action: runAllInfo,
		},
		{
			Name:      "info",
			Usage:     "display one account",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{addressFlag},
			Action:    runInfo,
		},
		{
			Name:      "set-name",
			Usage:     "set the name of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				addressFlag,
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: " account `NAME`",
				},
			},
			Action: runSetName,
		},
		{
			Name:      "set-meta",
			Usage:     "set the meta of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				addressFlag,
				cli.StringFlag{
					Name:  "meta, m",
					Value: registry.DefaultMeta,
					Usage: " account `JSON`",
				},
			},
			Action: runSetMeta,
		},
		{
			Name:      "register",
			Usage:     "add an address book entry",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				addressFlag,
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: " entry `NAME`",
				},
				cli.StringFlag{
					Name:  "meta, m",
					Value: registry.DefaultMeta,
					Usage: " entry `JSON`",
				},
			},
			Action: runRegister,
		},
		{
			Name:      "remove",
			Usage:     "remove an address book entry",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{addressFlag},
			Action:    runRemove,
		},
		{
			Name:      "kill",
			Usage:     "delete a key-backed account",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{addressFlag, passwordFlag},
			Action:    runKill,
		},
		{
			Name:      "change-vault",
			Usage:     "move a key-backed account to another vault",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				addressFlag,
				cli.StringFlag{
					Name:  "vault, V",
					Value: "",
					Usage: " destination vault `NAME` (default is the root vault)",
				},
			},
			Action: runChangeVault,
		},
		{
			Name:      "test-password",
			Usage:     "check the password of an account",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{addressFlag, passwordFlag},
			Action:    runTestPassword,
		},
		{
			Name:      "change-password",
			Usage:     "change the password of an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				addressFlag,
				cli.StringFlag{
					Name:  "old-password, o",
					Value: "",
					Usage: " current `PASSWORD` (prompted if omitted)",
				},
				cli.StringFlag{
					Name:  "new-password, n",
					Value: "",
					Usage: " replacement `PASSWORD` (prompted if omitted)",
				},
			},
			Action: runChangePassword,
		},
	}
}

func runNewAccount(c *cli.Context) error {
	password, err := getNewPassword(c, "password", "new account password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	a, err := client.CreateAccount(password, c.String("vault"))
	if nil != err {
		return err
	}

	return printJson(m.w, struct {
		Address address.Address `json:"address"`
	}{a})
}

func runListAccounts(c *cli.Context) error {
	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	addresses, err := client.ListAccounts()
	if nil != err {
		return err
	}
	return printJson(m.w, addresses)
}

func runAllInfo(c *cli.Context) error {
	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	info, err := client.AllInfo()
	if nil != err {
		return err
	}
	return printJson(m.w, info)
}

func runInfo(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	info, err := client.Info(a)
	if nil != err {
		return err
	}
	return printJson(m.w, info)
}

func runSetName(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.SetName(a, c.String("name")); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runSetMeta(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.SetMeta(a, c.String("meta")); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runRegister(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.RegisterAddress(a, c.String("name"), c.String("meta")); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runRemove(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.RemoveAddress(a); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runKill(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}
	password, err := getPassword(c, "password", "account password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.KillAccount(a, password); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runChangeVault(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.ChangeVault(a, c.String("vault")); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runTestPassword(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}
	password, err := getPassword(c, "password", "account password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	valid, err := client.TestPassword(a, password)
	if nil != err {
		return err
	}
	return printJson(m.w, struct {
		Valid bool `json:"valid"`
	}{valid})
}

func runChangePassword(c *cli.Context) error {
	a, err := checkAddress(c.String("address"))
	if nil != err {
		return err
	}
	oldPassword, err := getPassword(c, "old-password", "current password: ")
	if nil != err {
		return err
	}
	newPassword, err := getNewPassword(c, "new-password", "new password: ")
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.ChangePassword(a, oldPassword, newPassword); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}
