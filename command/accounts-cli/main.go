// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/accountd/command/accounts-cli/rpccalls"
)

type metadata struct {
	connect     string
	fingerprint []byte
	verbose     bool
	e           io.Writer
	w           io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// default accountd client RPC port
const defaultConnect = "127.0.0.1:2150"

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "accounts-cli"
	app.Usage = "manage the vaults and accounts of an accountd"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  defaultConnect,
			Usage:  " accountd RPC `HOST:PORT`",
			EnvVar: "ACCOUNTD_CONNECT",
		},
		cli.StringFlag{
			Name:  "fingerprint, f",
			Value: "",
			Usage: " expected server certificate `SHA3` fingerprint",
		},
	}

	app.Commands = append(app.Commands, accountCommands()...)
	app.Commands = append(app.Commands, vaultCommands()...)
	app.Commands = append(app.Commands, dappCommands()...)
	app.Commands = append(app.Commands,
		cli.Command{
			Name:   "status",
			Usage:  "display accountd status",
			Action: runStatus,
		},
		cli.Command{
			Name:  "version",
			Usage: "display accounts-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	)

	app.Before = func(c *cli.Context) error {

		connect := c.GlobalString("connect")
		if "" == connect {
			return ErrRequiredConnect
		}

		var fingerprint []byte
		if f := c.GlobalString("fingerprint"); "" != f {
			b, err := hex.DecodeString(f)
			if nil != err || 32 != len(b) {
				return ErrInvalidFingerprint
			}
			fingerprint = b
		}

		c.App.Metadata["config"] = &metadata{
			connect:     connect,
			fingerprint: fingerprint,
			verbose:     c.GlobalBool("verbose"),
			e:           c.App.ErrWriter,
			w:           c.App.Writer,
		}
		return nil
	}

	return app
}

// connect to the server selected by the global flags
func connectClient(c *cli.Context) (*rpccalls.Client, *metadata, error) {
	m := c.App.Metadata["config"].(*metadata)

	if m.verbose {
		fmt.Fprintf(m.e, "connect: %s\n", m.connect)
	}

	client, err := rpccalls.NewClient(m.connect, m.fingerprint, m.verbose, m.e)
	if nil != err {
		return nil, nil, err
	}
	return client, m, nil
}
