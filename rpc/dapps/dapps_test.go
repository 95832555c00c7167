// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dapps_test

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
	"github.com/bitmark-inc/accountd/rpc/dapps"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func setup(t *testing.T) (*dapps.Dapps, *accounts.Manager, func()) {
	log := logger.New(fixtures.LogCategory)
	dir := fixtures.TempDir("rpc-dapps")

	store, err := secretstore.New(log, dir, secretstore.KDF{Time: 1, Memory: 1024, Threads: 1})
	require.Nil(t, err)
	db, err := storage.OpenMemory(log)
	require.Nil(t, err)
	m, err := accounts.New(log, store, db)
	require.Nil(t, err)

	return dapps.New(log, m), m, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func TestSetAddressesLimits(t *testing.T) {
	d, m, teardown := setup(t)
	defer teardown()

	var ok dapps.OkReply
	err := d.SetAddresses(nil, &ok)
	assert.Equal(t, fault.Coded(fault.InvalidParameters), err, "nil arguments")

	err = d.SetAddresses(&dapps.SetAddressesArguments{Dapp: "empty"}, &ok)
	assert.Nil(t, err, "empty grant")
	assert.True(t, ok.OK)
	assert.True(t, m.Dapps.HasDappAddresses("empty"), "empty grant not stored")

	tooMany := make([]address.Address, 1001)
	err = d.SetAddresses(&dapps.SetAddressesArguments{Dapp: "big", Addresses: tooMany}, &ok)
	assert.Equal(t, fault.Coded(fault.InvalidParameters), err, "oversized grant")
	assert.False(t, m.Dapps.HasDappAddresses("big"), "oversized grant stored")
}

func TestEmptyGrantHidesAccounts(t *testing.T) {
	d, m, teardown := setup(t)
	defer teardown()

	_, err := m.Registry.CreateAccount("", secretstore.RootVault)
	require.Nil(t, err)

	var all dapps.AddressesReply
	require.Nil(t, d.Accounts(&dapps.DappArguments{Dapp: "fresh"}, &all))
	assert.Equal(t, 1, len(all.Addresses), "default access")

	var ok dapps.OkReply
	require.Nil(t, d.SetAddresses(&dapps.SetAddressesArguments{Dapp: "fresh"}, &ok))

	var none dapps.AddressesReply
	require.Nil(t, d.Accounts(&dapps.DappArguments{Dapp: "fresh"}, &none))
	assert.Equal(t, 0, len(none.Addresses), "empty grant still sees accounts")
}
