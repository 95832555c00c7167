// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secretstore_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/fixtures"
	"github.com/bitmark-inc/accountd/secretstore"
)

var testKDF = secretstore.KDF{
	Time:    1,
	Memory:  1024,
	Threads: 1,
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newStore(t *testing.T) (*secretstore.Disk, string) {
	dir := fixtures.TempDir("keystore")
	d, err := secretstore.New(logger.New(fixtures.LogCategory), dir, testKDF)
	require.Nil(t, err, "new store")
	return d, dir
}

func TestNewInvalid(t *testing.T) {
	_, err := secretstore.New(nil, "x", testKDF)
	assert.Equal(t, fault.InvalidParameters, err, "nil logger")

	_, err = secretstore.New(logger.New(fixtures.LogCategory), "x", secretstore.KDF{})
	assert.Equal(t, fault.InvalidParameters, err, "zero kdf")
}

func TestRootAccounts(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	info, err := d.NewAccount(secretstore.RootVault, "")
	require.Nil(t, err, "new account")
	assert.Equal(t, secretstore.RootVault, info.Vault)
	assert.NotEqual(t, "", info.UUID)
	assert.False(t, info.Address.IsZero())

	_, err = os.Stat(filepath.Join(dir, info.UUID+".json"))
	assert.Nil(t, err, "key file missing")

	list, err := d.Accounts(secretstore.RootVault)
	assert.Nil(t, err, "accounts")
	assert.Equal(t, []secretstore.KeyInfo{info}, list)

	ok, err := d.TestPassword(secretstore.RootVault, info.Address, "")
	assert.Nil(t, err)
	assert.True(t, ok, "empty password rejected")

	ok, err = d.TestPassword(secretstore.RootVault, info.Address, "x")
	assert.Nil(t, err)
	assert.False(t, ok, "wrong password accepted")

	// a second store on the same directory sees the key
	d2, err := secretstore.New(logger.New(fixtures.LogCategory), dir, testKDF)
	require.Nil(t, err, "reopen store")
	list, err = d2.Accounts(secretstore.RootVault)
	assert.Nil(t, err)
	assert.Equal(t, []secretstore.KeyInfo{info}, list)
}

func TestRemoveAccount(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	info, err := d.NewAccount(secretstore.RootVault, "secret")
	require.Nil(t, err)

	err = d.RemoveAccount(secretstore.RootVault, info.Address, "wrong")
	assert.Equal(t, fault.WrongPassword, err)

	var unknown address.Address
	err = d.RemoveAccount(secretstore.RootVault, unknown, "secret")
	assert.Equal(t, fault.UnknownAccount, err)

	err = d.RemoveAccount(secretstore.RootVault, info.Address, "secret")
	assert.Nil(t, err)

	list, _ := d.Accounts(secretstore.RootVault)
	assert.Equal(t, 0, len(list))

	_, err = os.Stat(filepath.Join(dir, info.UUID+".json"))
	assert.True(t, os.IsNotExist(err), "key file not removed")
}

func TestVaultLifecycle(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	err := d.CreateVault("vault1", "password1")
	require.Nil(t, err, "create")

	err = d.CreateVault("vault1", "password1")
	assert.Equal(t, fault.VaultAlreadyExists, err)

	info, err := d.NewAccount("vault1", "account")
	require.Nil(t, err)
	assert.Equal(t, "vault1", info.Vault)

	// sealed: the address does not appear in the file
	buffer, err := ioutil.ReadFile(filepath.Join(dir, "vault1", info.UUID+".json"))
	require.Nil(t, err)
	assert.False(t, strings.Contains(string(buffer), info.Address.String()[2:]), "address visible in sealed file")

	err = d.CloseVault("vault1")
	assert.Nil(t, err)
	err = d.CloseVault("vault1")
	assert.Nil(t, err, "close not idempotent")

	_, err = d.Accounts("vault1")
	assert.Equal(t, fault.VaultLocked, err)
	_, err = d.NewAccount("vault1", "")
	assert.Equal(t, fault.VaultLocked, err)

	err = d.OpenVault("vault1", "wrong")
	assert.Equal(t, fault.WrongPassword, err)
	_, err = d.Accounts("vault1")
	assert.Equal(t, fault.VaultLocked, err, "opened by wrong password")

	err = d.OpenVault("vault1", "password1")
	assert.Nil(t, err)
	err = d.OpenVault("vault1", "password1")
	assert.Nil(t, err, "open not idempotent")

	list, err := d.Accounts("vault1")
	assert.Nil(t, err)
	assert.Equal(t, []secretstore.KeyInfo{info}, list)

	err = d.OpenVault("nope", "x")
	assert.Equal(t, fault.VaultNotFound, err)
	err = d.CloseVault("nope")
	assert.Equal(t, fault.VaultNotFound, err)
}

func TestVaultNames(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	for _, name := range []string{"", ".", "..", "a/b", `a\b`, strings.Repeat("v", 65)} {
		err := d.CreateVault(name, "p")
		assert.Equal(t, fault.InvalidVaultName, err, "name: %q", name)
	}

	assert.Nil(t, d.CreateVault("b", "p"))
	assert.Nil(t, d.CreateVault("a", "p"))

	names, err := d.Vaults()
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	// another process adds a vault
	d2, err := secretstore.New(logger.New(fixtures.LogCategory), dir, testKDF)
	require.Nil(t, err)
	assert.Nil(t, d2.CreateVault("c", "p"))

	names, err = d.Vaults()
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	_, err = d.Accounts("c")
	assert.Equal(t, fault.VaultLocked, err, "rescanned vault must start closed")
}

func TestVaultMeta(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	require.Nil(t, d.CreateVault("v", "p"))

	meta, err := d.VaultMeta("v")
	assert.Nil(t, err)
	assert.Equal(t, "", meta)

	assert.Nil(t, d.SetVaultMeta("v", `{"colour":"red"}`))
	assert.Nil(t, d.CloseVault("v"))

	meta, err = d.VaultMeta("v")
	assert.Nil(t, err, "meta must be readable while closed")
	assert.Equal(t, `{"colour":"red"}`, meta)

	d2, err := secretstore.New(logger.New(fixtures.LogCategory), dir, testKDF)
	require.Nil(t, err)
	meta, err = d2.VaultMeta("v")
	assert.Nil(t, err)
	assert.Equal(t, `{"colour":"red"}`, meta)

	_, err = d.VaultMeta("none")
	assert.Equal(t, fault.VaultNotFound, err)
}

func TestChangeVaultPassword(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	require.Nil(t, d.CreateVault("v", "old"))
	info, err := d.NewAccount("v", "account")
	require.Nil(t, err)

	assert.Nil(t, d.CloseVault("v"))
	err = d.ChangeVaultPassword("v", "new")
	assert.Equal(t, fault.VaultLocked, err)

	assert.Nil(t, d.OpenVault("v", "old"))
	assert.Nil(t, d.ChangeVaultPassword("v", "new"))
	assert.Nil(t, d.CloseVault("v"))

	assert.Equal(t, fault.WrongPassword, d.OpenVault("v", "old"))
	assert.Nil(t, d.OpenVault("v", "new"))

	list, err := d.Accounts("v")
	assert.Nil(t, err)
	assert.Equal(t, []secretstore.KeyInfo{info}, list)

	ok, err := d.TestPassword("v", info.Address, "account")
	assert.Nil(t, err)
	assert.True(t, ok, "account password must not change")
}

func TestMoveAccount(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	require.Nil(t, d.CreateVault("v1", "p1"))
	require.Nil(t, d.CreateVault("v2", "p2"))

	info, err := d.NewAccount("v1", "account")
	require.Nil(t, err)

	assert.Nil(t, d.CloseVault("v2"))
	err = d.MoveAccount(info.Address, "v1", "v2")
	assert.Equal(t, fault.VaultLocked, err)

	err = d.MoveAccount(info.Address, "v1", "none")
	assert.Equal(t, fault.VaultNotFound, err)

	assert.Nil(t, d.OpenVault("v2", "p2"))
	assert.Nil(t, d.MoveAccount(info.Address, "v1", "v2"))

	list, _ := d.Accounts("v1")
	assert.Equal(t, 0, len(list))
	list, _ = d.Accounts("v2")
	require.Equal(t, 1, len(list))
	assert.Equal(t, info.Address, list[0].Address)
	assert.Equal(t, info.UUID, list[0].UUID)
	assert.Equal(t, "v2", list[0].Vault)

	// back to root, then the key file is in the keystore directory
	assert.Nil(t, d.MoveAccount(info.Address, "v2", secretstore.RootVault))
	_, err = os.Stat(filepath.Join(dir, info.UUID+".json"))
	assert.Nil(t, err)

	ok, err := d.TestPassword(secretstore.RootVault, info.Address, "account")
	assert.Nil(t, err)
	assert.True(t, ok)

	err = d.MoveAccount(info.Address, "v2", "v1")
	assert.Equal(t, fault.UnknownAccount, err)
}

func TestChangeAccountPassword(t *testing.T) {
	d, dir := newStore(t)
	defer os.RemoveAll(dir)

	info, err := d.NewAccount(secretstore.RootVault, "one")
	require.Nil(t, err)

	err = d.ChangeAccountPassword(secretstore.RootVault, info.Address, "bad", "two")
	assert.Equal(t, fault.WrongPassword, err)

	assert.Nil(t, d.ChangeAccountPassword(secretstore.RootVault, info.Address, "one", "two"))

	ok, _ := d.TestPassword(secretstore.RootVault, info.Address, "one")
	assert.False(t, ok)
	ok, _ = d.TestPassword(secretstore.RootVault, info.Address, "two")
	assert.True(t, ok)

	// persisted
	d2, err := secretstore.New(logger.New(fixtures.LogCategory), dir, testKDF)
	require.Nil(t, err)
	ok, _ = d2.TestPassword(secretstore.RootVault, info.Address, "two")
	assert.True(t, ok)
}

// a password operation must not hold up listing the vault
func TestPasswordHashingOutsideLock(t *testing.T) {
	dir := fixtures.TempDir("keystore")
	defer os.RemoveAll(dir)

	slow := secretstore.KDF{
		Time:    3,
		Memory:  128 * 1024,
		Threads: 1,
	}
	d, err := secretstore.New(logger.New(fixtures.LogCategory), dir, slow)
	require.Nil(t, err, "new store")

	info, err := d.NewAccount(secretstore.RootVault, "one")
	require.Nil(t, err, "new account")

	operations := []struct {
		name string
		f    func() error
	}{
		{"new account", func() error {
			_, err := d.NewAccount(secretstore.RootVault, "two")
			return err
		}},
		{"test password", func() error {
			_, err := d.TestPassword(secretstore.RootVault, info.Address, "one")
			return err
		}},
		{"change password", func() error {
			return d.ChangeAccountPassword(secretstore.RootVault, info.Address, "one", "three")
		}},
		{"remove account", func() error {
			return d.RemoveAccount(secretstore.RootVault, info.Address, "three")
		}},
	}

	for _, op := range operations {
		done := make(chan error, 1)
		start := time.Now()
		go func(f func() error) {
			done <- f()
		}(op.f)

		longest := time.Duration(0)
		polls := 0
	loop:
		for {
			select {
			case err := <-done:
				require.Nil(t, err, "%s", op.name)
				break loop
			default:
			}
			begin := time.Now()
			_, err := d.Accounts(secretstore.RootVault)
			require.Nil(t, err, "accounts during: %s", op.name)
			if elapsed := time.Since(begin); elapsed > longest {
				longest = elapsed
			}
			polls += 1
			time.Sleep(time.Millisecond)
		}
		total := time.Since(start)

		require.NotEqual(t, 0, polls, "%s: no listing while running", op.name)
		assert.True(t, longest < total/2, "%s: took %s  listing blocked for %s", op.name, total, longest)
	}
}
