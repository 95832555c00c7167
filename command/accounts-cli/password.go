// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/urfave/cli"
	"golang.org/x/crypto/ssh/terminal"
)

// read a password from the controlling terminal without echo
func promptPassword(prompt string) (string, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if nil != err {
		return "", err
	}
	defer tty.Close()

	fd := int(tty.Fd())
	oldState, err := terminal.MakeRaw(fd)
	if nil != err {
		return "", err
	}
	defer terminal.Restore(fd, oldState)

	console := terminal.NewTerminal(tty, "accounts-cli: ")
	return console.ReadPassword(prompt)
}

// flag value if present, otherwise prompt
func getPassword(c *cli.Context, flag string, prompt string) (string, error) {
	if c.IsSet(flag) {
		return c.String(flag), nil
	}
	return promptPassword(prompt)
}

// as getPassword but a prompted password must be entered twice
func getNewPassword(c *cli.Context, flag string, prompt string) (string, error) {
	if c.IsSet(flag) {
		return c.String(flag), nil
	}
	password, err := promptPassword(prompt)
	if nil != err {
		return "", err
	}
	verify, err := promptPassword("verify password: ")
	if nil != err {
		return "", err
	}
	if password != verify {
		return "", ErrPasswordMismatch
	}
	return password, nil
}
