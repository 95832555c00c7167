// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	manager *accounts.Manager
	count   *listeners.Connections
}

// New - create the Node RPC service
func New(log *logger.L, manager *accounts.Manager, start time.Time, version string, count *listeners.Connections) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:   start,
		Version: version,
		manager: manager,
		count:   count,
	}
}

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	RPCs       uint64 `json:"rpcs"`
	Vaults     int    `json:"vaults"`
	OpenVaults int    `json:"openVaults"`
	Accounts   int    `json:"accounts"`
}

// Info - return some information about this node
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {
	if err := ratelimit.Limit(node.Limiter); nil != err {
		return fault.Coded(err)
	}
	*reply = node.Details()
	return nil
}

// Details - the Info reply without rate limiting, for the HTTPS
// details page
func (node *Node) Details() InfoReply {
	return InfoReply{
		Version:    node.Version,
		Uptime:     time.Since(node.Start).String(),
		RPCs:       node.count.Count(),
		Vaults:     len(node.manager.Vaults.List()),
		OpenVaults: len(node.manager.Vaults.ListOpened()),
		Accounts:   len(node.manager.Registry.Accounts()),
	}
}
