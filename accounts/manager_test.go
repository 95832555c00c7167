// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accounts_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/fixtures"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func setup(t *testing.T) (*accounts.Manager, func()) {
	log := logger.New(fixtures.LogCategory)
	dir := fixtures.TempDir("accounts")

	store, err := secretstore.New(log, dir, secretstore.KDF{Time: 1, Memory: 1024, Threads: 1})
	require.Nil(t, err)
	db, err := storage.OpenMemory(log)
	require.Nil(t, err)

	m, err := accounts.New(log, store, db)
	require.Nil(t, err)

	return m, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := accounts.New(nil, nil, nil)
	assert.Equal(t, fault.InvalidParameters, err)
}

func TestDappAccounts(t *testing.T) {
	m, teardown := setup(t)
	defer teardown()

	r1, err := m.Registry.CreateAccount("", secretstore.RootVault)
	require.Nil(t, err)
	r2, err := m.Registry.CreateAccount("", secretstore.RootVault)
	require.Nil(t, err)

	require.Nil(t, m.Vaults.Create("v", "p"))
	v1, err := m.Registry.CreateAccount("", "v")
	require.Nil(t, err)

	book, _ := address.FromHex("0x00000000000000000000000000000000000000b0")
	require.Nil(t, m.Registry.RegisterAddress(book, "book", "{}"))

	unknown, _ := address.FromHex("0x00000000000000000000000000000000000000c0")

	// no grant, no whitelist: every visible key-backed account
	assert.Equal(t, address.Unique([]address.Address{r1, r2, v1}), m.DappAccounts("dapp"))

	// whitelist restricts dapps without a grant
	whitelist := []address.Address{r2, v1, unknown}
	m.Dapps.SetNewDappsWhitelist(&whitelist)
	assert.Equal(t, address.Unique([]address.Address{r2, v1}), m.DappAccounts("dapp"))

	// explicit grant wins, address book entries are visible
	m.Dapps.SetDappAddresses("dapp", []address.Address{r1, book, unknown})
	assert.Equal(t, address.Unique([]address.Address{r1, book}), m.DappAccounts("dapp"))

	// explicit empty grant
	m.Dapps.SetDappAddresses("none", []address.Address{})
	assert.Equal(t, []address.Address{}, m.DappAccounts("none"))

	// closing a vault hides its accounts
	require.Nil(t, m.Vaults.Close("v"))
	assert.Equal(t, []address.Address{r2}, m.DappAccounts("other"))

	m.Dapps.SetNewDappsWhitelist(nil)
	assert.Equal(t, address.Unique([]address.Address{r1, r2}), m.DappAccounts("other"))
}
