// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners_test

import (
	"crypto/tls"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/fixtures"
	"github.com/bitmark-inc/accountd/rpc/certificate"
	"github.com/bitmark-inc/accountd/rpc/listeners"
)

type Add struct{}
type AddArg struct {
	A, B int
}

func (a Add) Add(arg *AddArg, reply *int) error {
	*reply = arg.A + arg.B
	return nil
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func testServer(t *testing.T) (*rpc.Server, *tls.Config, [32]byte) {
	s := rpc.NewServer()
	require.Nil(t, s.Register(Add{}), "register")

	cer, key := fixtures.Certificate()
	tlsConfig, fin, err := certificate.Get(logger.New(fixtures.LogCategory), "test", cer, key)
	require.Nil(t, err, "certificate")

	return s, tlsConfig, fin
}

func TestRpcListenerServe(t *testing.T) {
	s, tlsConfig, fin := testServer(t)

	con := listeners.RPCConfiguration{
		MaximumConnections: 5,
		Listen:             []string{"127.0.0.1:0"},
	}

	var count listeners.Connections
	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, s, tlsConfig, fin)
	require.Nil(t, err, "wrong NewRPC")

	err = l.Serve()
	require.Nil(t, err, "wrong Serve")
	defer l.Close()

	addrs := l.Addresses()
	require.Equal(t, 1, len(addrs), "address count")

	c, err := tls.Dial("tcp", addrs[0].String(), &tls.Config{InsecureSkipVerify: true})
	require.Nil(t, err, "dial")

	arg := AddArg{
		A: 2,
		B: 5,
	}
	var reply int

	client := jsonrpc.NewClient(c)
	defer client.Close()

	err = client.Call("Add.Add", &arg, &reply)
	assert.Nil(t, err, "wrong client Call")
	assert.Equal(t, arg.A+arg.B, reply, "wrong result")
	assert.Equal(t, uint64(1), count.Count(), "connection not counted")
}

func TestRpcListenerConnectionLimit(t *testing.T) {
	s, tlsConfig, fin := testServer(t)

	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{"127.0.0.1:0"},
	}

	var count listeners.Connections
	l, err := listeners.NewRPC(&con, logger.New(fixtures.LogCategory), &count, s, tlsConfig, fin)
	require.Nil(t, err, "wrong NewRPC")
	require.Nil(t, l.Serve(), "wrong Serve")
	defer l.Close()

	address := l.Addresses()[0].String()
	config := &tls.Config{InsecureSkipVerify: true}

	c1, err := tls.Dial("tcp", address, config)
	require.Nil(t, err, "first dial")
	client1 := jsonrpc.NewClient(c1)
	defer client1.Close()

	var reply int
	require.Nil(t, client1.Call("Add.Add", &AddArg{1, 1}, &reply), "first call")

	// the second connection is closed by the server
	c2, err := tls.Dial("tcp", address, config)
	if nil == err {
		client2 := jsonrpc.NewClient(c2)
		err = client2.Call("Add.Add", &AddArg{1, 1}, &reply)
		_ = client2.Close()
	}
	assert.NotNil(t, err, "connection over the limit was served")
}

func TestRpcListenerInvalidConfiguration(t *testing.T) {
	s := rpc.NewServer()
	log := logger.New(fixtures.LogCategory)

	items := []struct {
		configuration listeners.RPCConfiguration
		err           error
	}{
		{listeners.RPCConfiguration{MaximumConnections: 0, Listen: []string{"127.0.0.1:2150"}}, fault.MissingParameters},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{}}, fault.MissingParameters},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"127.0.0.1"}}, fault.InvalidListenAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{"localhost:2150"}}, fault.InvalidListenAddress},
		{listeners.RPCConfiguration{MaximumConnections: 1, Listen: []string{""}}, fault.InvalidListenAddress},
	}

	for i, item := range items {
		var count listeners.Connections
		_, err := listeners.NewRPC(&item.configuration, log, &count, s, &tls.Config{}, [32]byte{})
		assert.Equal(t, item.err, err, "%d: wrong error", i)
	}
}

func TestRpcListenerAcceptsAllForms(t *testing.T) {
	s := rpc.NewServer()
	log := logger.New(fixtures.LogCategory)

	con := listeners.RPCConfiguration{
		MaximumConnections: 1,
		Listen:             []string{"*:2150", "[::1]:2150", "127.0.0.1:2150"},
	}

	var count listeners.Connections
	_, err := listeners.NewRPC(&con, log, &count, s, &tls.Config{}, [32]byte{})
	assert.Nil(t, err, "valid listen addresses rejected")
	assert.Equal(t, "*:2150", con.Listen[0], "configuration was modified")
}
