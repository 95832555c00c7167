// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"net/rpc"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/fault"
)

const logName = "client_rpc"

// RPCConfiguration - configuration file data for the client RPC listener
type RPCConfiguration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

// RPCListener - JSON-RPC over TLS, one goroutine per connection
type RPCListener struct {
	sync.Mutex

	log             *logger.L
	server          *rpc.Server
	count           *Connections
	maxConnections  uint64
	tlsConfig       *tls.Config
	ipType          []string
	listenIPAndPort []string
	listeners       []net.Listener
}

// NewRPC - validate the configuration and create an unstarted listener
func NewRPC(
	configuration *RPCConfiguration,
	log *logger.L,
	count *Connections,
	server *rpc.Server,
	tlsConfig *tls.Config,
	certificateFingerprint [32]byte,
) (*RPCListener, error) {
	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", logName, configuration.MaximumConnections)
		return nil, fault.MissingParameters
	}

	if 0 == len(configuration.Listen) {
		log.Errorf("missing %s listen", logName)
		return nil, fault.MissingParameters
	}

	listen := make([]string, len(configuration.Listen))
	copy(listen, configuration.Listen)

	ipType, err := parseListenAddress(listen, log)
	if nil != err {
		return nil, err
	}

	log.Infof("%s: SHA3-256 fingerprint: %x", logName, certificateFingerprint)

	r := &RPCListener{
		log:             log,
		server:          server,
		count:           count,
		maxConnections:  configuration.MaximumConnections,
		tlsConfig:       tlsConfig,
		ipType:          ipType,
		listenIPAndPort: listen,
	}
	return r, nil
}

// Serve - open every listen address and start accepting
func (r *RPCListener) Serve() error {
	r.Lock()
	defer r.Unlock()

	for i, listen := range r.listenIPAndPort {
		r.log.Infof("starting RPC server: %s", listen)
		l, err := tls.Listen(r.ipType[i], listen, r.tlsConfig)
		if nil != err {
			r.log.Errorf("rpc server listen error: %s", err)
			r.closeAll()
			return err
		}
		r.listeners = append(r.listeners, l)

		go r.accept(l)
	}
	return nil
}

// Addresses - the bound addresses, valid after Serve
func (r *RPCListener) Addresses() []net.Addr {
	r.Lock()
	defer r.Unlock()

	addrs := make([]net.Addr, len(r.listeners))
	for i, l := range r.listeners {
		addrs[i] = l.Addr()
	}
	return addrs
}

// Close - stop accepting, connections in progress are left to finish
func (r *RPCListener) Close() error {
	r.Lock()
	defer r.Unlock()
	r.closeAll()
	return nil
}

func (r *RPCListener) closeAll() {
	for _, l := range r.listeners {
		_ = l.Close()
	}
	r.listeners = nil
}

func (r *RPCListener) accept(listen net.Listener) {
	for {
		conn, err := listen.Accept()
		if nil != err {
			r.log.Infof("rpc accept terminated: %s", err)
			return
		}

		if !r.count.acquire(r.maxConnections) {
			r.log.Warnf("connection limit reached: rejecting: %s", conn.RemoteAddr())
			_ = conn.Close()
			continue
		}

		go func() {
			r.server.ServeCodec(NewServerCodec(conn))
			r.count.release()
		}()
	}
}
