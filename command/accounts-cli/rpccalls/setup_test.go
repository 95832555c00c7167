// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/command/accounts-cli/rpccalls"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/fixtures"
	"github.com/bitmark-inc/accountd/rpc"
	"github.com/bitmark-inc/accountd/rpc/certificate"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
)

var (
	connect     string
	fingerprint [32]byte
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()

	log := logger.New(fixtures.LogCategory)
	dir := fixtures.TempDir("rpccalls")

	store, err := secretstore.New(log, filepath.Join(dir, "keystore"), secretstore.KDF{Time: 1, Memory: 1024, Threads: 1})
	if nil != err {
		panic(err)
	}
	db, err := storage.OpenMemory(log)
	if nil != err {
		panic(err)
	}
	manager, err := accounts.New(log, store, db)
	if nil != err {
		panic(err)
	}

	certFile := filepath.Join(dir, "rpc.crt")
	keyFile := filepath.Join(dir, "rpc.key")
	if err := certificate.MakeSelfSigned("test", certFile, keyFile, false, []string{"127.0.0.1"}); nil != err {
		panic(err)
	}
	_, fingerprint, err = certificate.Load(log, "test", certFile, keyFile)
	if nil != err {
		panic(err)
	}

	configuration := listeners.RPCConfiguration{
		MaximumConnections: 10,
		Listen:             []string{"127.0.0.1:0"},
		Certificate:        certFile,
		PrivateKey:         keyFile,
	}
	servers, err := rpc.Initialise(&configuration, nil, "test", manager)
	if nil != err {
		panic(err)
	}
	connect = servers.Addresses()[0].String()

	rc := m.Run()

	servers.Finalise()
	db.Close()
	os.RemoveAll(dir)
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestFingerprint(t *testing.T) {
	client, err := rpccalls.NewClient(connect, fingerprint[:], false, nil)
	require.Nil(t, err, "matching fingerprint")
	client.Close()

	wrong := make([]byte, len(fingerprint))
	copy(wrong, fingerprint[:])
	wrong[0] ^= 0xff
	_, err = rpccalls.NewClient(connect, wrong, false, nil)
	assert.Equal(t, fault.FingerprintMismatch, err, "wrong fingerprint")
}

func TestVaultsAndAccounts(t *testing.T) {
	var verbose bytes.Buffer
	client, err := rpccalls.NewClient(connect, nil, true, &verbose)
	require.Nil(t, err, "connect")
	defer client.Close()

	require.Nil(t, client.CreateVault("calls", "secret"), "create vault")
	names, err := client.ListVaults(true)
	require.Nil(t, err, "list opened")
	assert.Contains(t, names, "calls")

	a, err := client.CreateAccount("pass", "calls")
	require.Nil(t, err, "create account")

	valid, err := client.TestPassword(a, "pass")
	require.Nil(t, err, "test password")
	assert.True(t, valid, "password")

	require.Nil(t, client.SetName(a, "first"), "set name")
	info, err := client.Info(a)
	require.Nil(t, err, "info")
	assert.Equal(t, "first", info.Name)

	require.Nil(t, client.CloseVault("calls"), "close")
	_, err = client.Info(a)
	assert.Equal(t, fault.Coded(fault.UnknownAccount).Error(), err.Error(), "hidden account")

	assert.Contains(t, verbose.String(), "request: Vaults.New")
	assert.Contains(t, verbose.String(), "reply: Accounts.New")
}

func TestWhitelist(t *testing.T) {
	client, err := rpccalls.NewClient(connect, nil, false, nil)
	require.Nil(t, err, "connect")
	defer client.Close()

	_, set, err := client.NewDappsWhitelist()
	require.Nil(t, err, "get whitelist")
	assert.False(t, set, "initially unset")

	require.Nil(t, client.SetNewDappsWhitelist(nil), "clear whitelist")
	_, set, err = client.NewDappsWhitelist()
	require.Nil(t, err, "get whitelist")
	assert.False(t, set, "cleared")

	require.Nil(t, client.NoteDappUsed("wallet"), "note used")
	recent, err := client.RecentDapps()
	require.Nil(t, err, "recent")
	assert.Equal(t, uint64(1), recent["wallet"])
}
