// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"net"
	"strings"
	"sync/atomic"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/fault"
)

const minConnectionCount = 1

// Listener - a network service started by Serve and stopped by Close
type Listener interface {
	Serve() error
	Addresses() []net.Addr
	Close() error
}

// Connections - number of clients currently being served,
// shared by all listeners
type Connections struct {
	n uint64
}

// Count - current value
func (c *Connections) Count() uint64 {
	return atomic.LoadUint64(&c.n)
}

// acquire a slot if fewer than maximum are in use
func (c *Connections) acquire(maximum uint64) bool {
	for {
		n := atomic.LoadUint64(&c.n)
		if n >= maximum {
			return false
		}
		if atomic.CompareAndSwapUint64(&c.n, n, n+1) {
			return true
		}
	}
}

func (c *Connections) release() {
	atomic.AddUint64(&c.n, ^uint64(0))
}

// parseListenAddress - determine the network for each listen address
//
// "*:PORT" is rewritten in place to "[::]:PORT" to listen on both
// tcp4 and tcp6
func parseListenAddress(addrs []string, log *logger.L) ([]string, error) {
	parsed := make([]string, len(addrs))
	for i, listen := range addrs {
		if 0 == len(listen) {
			log.Errorf("empty listen address at: %d", i)
			return nil, fault.InvalidListenAddress
		}

		host, port, err := net.SplitHostPort(listen)
		if nil != err {
			log.Errorf("listen address: %q  error: %s", listen, err)
			return nil, fault.InvalidListenAddress
		}

		switch {
		case "*" == host:
			addrs[i] = net.JoinHostPort("::", port)
			host = "::"
			parsed[i] = "tcp"
		case strings.Contains(host, ":"):
			parsed[i] = "tcp6"
		default:
			parsed[i] = "tcp4"
		}

		if ip := net.ParseIP(host); nil == ip {
			log.Errorf("listen address: %q  error: %s", listen, fault.InvalidListenAddress)
			return nil, fault.InvalidListenAddress
		}
	}

	return parsed, nil
}
