// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/rpc/certificate"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/rpc/server"
)

const (
	tlsName   = "client_rpc"
	httpsName = "https_rpc"
)

// Servers - the running listeners of one process
type Servers struct {
	sync.Mutex

	log       *logger.L
	count     listeners.Connections
	listeners []listeners.Listener
}

// Initialise - load certificates, register services and start listening
func Initialise(rpcConfiguration *listeners.RPCConfiguration, httpsConfiguration *listeners.HTTPSConfiguration, version string, manager *accounts.Manager) (*Servers, error) {
	if nil == rpcConfiguration || nil == manager {
		return nil, fault.MissingParameters
	}

	log := logger.New("rpc")
	log.Info("starting…")

	s := &Servers{
		log: log,
	}

	tlsConfig, fingerprint, err := certificate.Load(log, tlsName, rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
	if nil != err {
		return nil, err
	}

	rpcServer, node := server.Create(log, version, manager, &s.count)

	rpcListener, err := listeners.NewRPC(
		rpcConfiguration,
		log,
		&s.count,
		rpcServer,
		tlsConfig,
		fingerprint,
	)
	if nil != err {
		return nil, err
	}
	if err := rpcListener.Serve(); nil != err {
		return nil, err
	}
	s.listeners = append(s.listeners, rpcListener)

	if nil != httpsConfiguration && 0 != len(httpsConfiguration.Listen) {
		httpsConfig, httpsFingerprint, err := certificate.Load(log, httpsName, httpsConfiguration.Certificate, httpsConfiguration.PrivateKey)
		if nil != err {
			s.Finalise()
			return nil, err
		}
		log.Infof("%s: SHA3-256 fingerprint: %x", httpsName, httpsFingerprint)

		details := func() interface{} {
			return node.Details()
		}
		httpsListener, err := listeners.NewHTTPS(httpsConfiguration, log, &s.count, rpcServer, httpsConfig, details)
		if nil != err {
			s.Finalise()
			return nil, err
		}
		if err := httpsListener.Serve(); nil != err {
			s.Finalise()
			return nil, err
		}
		s.listeners = append(s.listeners, httpsListener)
	}

	return s, nil
}

// Connections - number of clients being served
func (s *Servers) Connections() uint64 {
	return s.count.Count()
}

// Addresses - bound addresses of every listener
func (s *Servers) Addresses() []net.Addr {
	s.Lock()
	defer s.Unlock()

	addrs := make([]net.Addr, 0, len(s.listeners))
	for _, l := range s.listeners {
		addrs = append(addrs, l.Addresses()...)
	}
	return addrs
}

// Finalise - stop all listeners
func (s *Servers) Finalise() {
	s.Lock()
	defer s.Unlock()

	s.log.Info("shutting down…")
	for _, l := range s.listeners {
		if err := l.Close(); nil != err {
			s.log.Errorf("close listener error: %s", err)
		}
	}
	s.listeners = nil

	s.log.Info("finished")
	s.log.Flush()
}
