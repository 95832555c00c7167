// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/accounts"
	rpcaccounts "github.com/bitmark-inc/accountd/rpc/accounts"
	"github.com/bitmark-inc/accountd/rpc/dapps"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/rpc/node"
	"github.com/bitmark-inc/accountd/rpc/vaults"
)

// Create - an RPC server with every service registered, the node
// service is returned for the HTTPS details page
func Create(log *logger.L, version string, manager *accounts.Manager, count *listeners.Connections) (*rpc.Server, *node.Node) {
	start := time.Now().UTC()

	n := node.New(log, manager, start, version, count)

	server := rpc.NewServer()

	_ = server.Register(rpcaccounts.New(log, manager.Registry))
	_ = server.Register(vaults.New(log, manager.Vaults))
	_ = server.Register(dapps.New(log, manager))
	_ = server.Register(n)

	return server, n
}
