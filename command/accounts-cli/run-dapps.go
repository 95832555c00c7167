// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/accountd/address"
)

var dappFlag = cli.StringFlag{
	Name:  "dapp, d",
	Value: "",
	Usage: "*dapp `NAME`",
}

var addressListFlag = cli.StringSliceFlag{
	Name:  "address, a",
	Usage: " account `ADDRESS`, may be repeated",
}

func dappCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "dapp-set",
			Usage:     "replace the accounts a dapp may see",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{dappFlag, addressListFlag},
			Action:    runDappSet,
		},
		{
			Name:      "dapp-get",
			Usage:     "display the accounts explicitly granted to a dapp",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{dappFlag},
			Action:    runDappGet,
		},
		{
			Name:  "whitelist-set",
			Usage: "set the accounts offered to new dapps",
			Flags: []cli.Flag{
				addressListFlag,
				cli.BoolFlag{
					Name:  "clear",
					Usage: " remove the whitelist so new dapps see all accounts",
				},
			},
			Action: runWhitelistSet,
		},
		{
			Name:   "whitelist-get",
			Usage:  "display the accounts offered to new dapps",
			Action: runWhitelistGet,
		},
		{
			Name:      "dapp-used",
			Usage:     "record a use of a dapp",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{dappFlag},
			Action:    runDappUsed,
		},
		{
			Name:   "dapp-recent",
			Usage:  "display dapp use counts",
			Action: runDappRecent,
		},
		{
			Name:      "dapp-accounts",
			Usage:     "display the accounts a dapp currently sees",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{dappFlag},
			Action:    runDappAccounts,
		},
	}
}

func runDappSet(c *cli.Context) error {
	dapp, err := checkDapp(c.String("dapp"))
	if nil != err {
		return err
	}
	addresses, err := checkAddressList(c.StringSlice("address"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.SetDappAddresses(dapp, addresses); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runDappGet(c *cli.Context) error {
	dapp, err := checkDapp(c.String("dapp"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	addresses, err := client.DappAddresses(dapp)
	if nil != err {
		return err
	}
	return printJson(m.w, addresses)
}

func runWhitelistSet(c *cli.Context) error {
	var whitelist *[]address.Address
	if !c.Bool("clear") {
		addresses, err := checkAddressList(c.StringSlice("address"))
		if nil != err {
			return err
		}
		whitelist = &addresses
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.SetNewDappsWhitelist(whitelist); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runWhitelistGet(c *cli.Context) error {
	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	addresses, set, err := client.NewDappsWhitelist()
	if nil != err {
		return err
	}
	if !set {
		return printJson(m.w, nil)
	}
	return printJson(m.w, addresses)
}

func runDappUsed(c *cli.Context) error {
	dapp, err := checkDapp(c.String("dapp"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	if err := client.NoteDappUsed(dapp); nil != err {
		return err
	}
	return printJson(m.w, okResult{true})
}

func runDappRecent(c *cli.Context) error {
	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	recent, err := client.RecentDapps()
	if nil != err {
		return err
	}
	return printJson(m.w, recent)
}

func runDappAccounts(c *cli.Context) error {
	dapp, err := checkDapp(c.String("dapp"))
	if nil != err {
		return err
	}

	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	addresses, err := client.DappAccounts(dapp)
	if nil != err {
		return err
	}
	return printJson(m.w, addresses)
}
