// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"
)

func runStatus(c *cli.Context) error {
	client, m, err := connectClient(c)
	if nil != err {
		return err
	}
	defer client.Close()

	info, err := client.NodeInfo()
	if nil != err {
		return err
	}
	return printJson(m.w, info)
}
