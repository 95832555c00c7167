// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fixtures"
	"github.com/bitmark-inc/accountd/rpc"
	"github.com/bitmark-inc/accountd/rpc/certificate"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
)

var connect string

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()

	log := logger.New(fixtures.LogCategory)
	dir := fixtures.TempDir("accounts-cli")

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

// run one command and return its standard output
func run(t *testing.T, args ...string) (string, error) {
	var w, e bytes.Buffer
	app := newApp(&w, &e)
	err := app.Run(append([]string{"accounts-cli", "--connect", connect}, args...))
	return w.String(), err
}

func TestCommands(t *testing.T) {
	out, err := run(t, "vault-new", "--name", "cli", "--password", "secret")
	require.Nil(t, err, "vault-new")
	assert.JSONEq(t, `{"ok":true}`, out)

	out, err = run(t, "new", "-p", "pass", "-V", "cli")
	require.Nil(t, err, "new")
	var created struct {
		Address address.Address `json:"address"`
	}
	require.Nil(t, json.Unmarshal([]byte(out), &created), "new output: %s", out)

	out, err = run(t, "set-name", "-a", created.Address.String(), "-n", "cli account")
	require.Nil(t, err, "set-name")

	out, err = run(t, "info", "-a", created.Address.String())
	require.Nil(t, err, "info")
	assert.Contains(t, out, `"cli account"`)

	out, err = run(t, "vault-list", "--opened")
	require.Nil(t, err, "vault-list")
	assert.Contains(t, out, `"cli"`)

	out, err = run(t, "test-password", "-a", created.Address.String(), "-p", "wrong")
	require.Nil(t, err, "test-password")
	assert.JSONEq(t, `{"valid":false}`, out)

	_, err = run(t, "dapp-set", "-d", "wallet", "-a", created.Address.String())
	require.Nil(t, err, "dapp-set")
	out, err = run(t, "dapp-accounts", "-d", "wallet")
	require.Nil(t, err, "dapp-accounts")
	assert.JSONEq(t, `["`+created.Address.String()+`"]`, out)

	out, err = run(t, "status")
	require.Nil(t, err, "status")
	assert.Contains(t, out, `"version": "test"`)
}

func TestArgumentChecks(t *testing.T) {
	_, err := run(t, "info")
	assert.Equal(t, ErrRequiredAddress, err, "missing address")

	_, err = run(t, "info", "-a", "0x1234")
	assert.Equal(t, ErrInvalidAddress, err, "short address")

	_, err = run(t, "vault-close")
	assert.Equal(t, ErrRequiredVault, err, "missing vault")

	_, err = run(t, "dapp-get")
	assert.Equal(t, ErrRequiredDapp, err, "missing dapp")

	_, err = run(t, "dapp-set", "-d", "x", "-a", "nonsense")
	assert.Equal(t, ErrInvalidAddress, err, "bad address in list")

	var w, e bytes.Buffer
	app := newApp(&w, &e)
	err = app.Run([]string{"accounts-cli", "--connect", connect, "--fingerprint", "abcd", "status"})
	assert.Equal(t, ErrInvalidFingerprint, err, "short fingerprint")
}
