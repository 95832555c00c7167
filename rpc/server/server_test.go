// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server_test

import (
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/fixtures"
	"github.com/bitmark-inc/accountd/registry"
	rpcaccounts "github.com/bitmark-inc/accountd/rpc/accounts"
	"github.com/bitmark-inc/accountd/rpc/dapps"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/rpc/node"
	"github.com/bitmark-inc/accountd/rpc/server"
	"github.com/bitmark-inc/accountd/rpc/vaults"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
)

var client *rpc.Client

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()

	log := logger.New(fixtures.LogCategory)
	dir := fixtures.TempDir("server")

	store, err := secretstore.New(log, dir, secretstore.KDF{Time: 1, Memory: 1024, Threads: 1})
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

	var count listeners.Connections
	r, _ := server.Create(log, "1.0", manager, &count)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if nil != err {
		panic(err)
	}
	go func() {
		for {
			conn, err := l.Accept()
			if nil != err {
				return
			}
			go r.ServeCodec(listeners.NewServerCodec(conn))
		}
	}()

	client, err = jsonrpc.Dial("tcp", l.Addr().String())
	if nil != err {
		panic(err)
	}

	rc := m.Run()

	client.Close()
	l.Close()
	db.Close()
	os.RemoveAll(dir)
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// an RPC error carries the numeric code
func coded(err error) string {
	return fmt.Sprintf("%d: %s", fault.Code(err), err)
}

func newAccount(t *testing.T, password string, vault string) address.Address {
	var reply rpcaccounts.NewReply
	err := client.Call("Accounts.New", &rpcaccounts.NewArguments{Password: password, Vault: vault}, &reply)
	require.Nil(t, err, "Accounts.New")
	return reply.Address
}

func TestVaultVisibility(t *testing.T) {
	var ok vaults.OkReply
	err := client.Call("Vaults.New", &vaults.PasswordArguments{Name: "work", Password: "pw"}, &ok)
	require.Nil(t, err, "Vaults.New")
	assert.True(t, ok.OK)

	a := newAccount(t, "secret", "work")

	var info registry.AccountInfo
	err = client.Call("Accounts.Info", &rpcaccounts.AddressArguments{Address: &a}, &info)
	require.Nil(t, err, "Accounts.Info")
	assert.Equal(t, `{"vault":"work"}`, info.Meta, "meta of vault account")

	err = client.Call("Vaults.Close", &vaults.NameArguments{Name: "work"}, &ok)
	require.Nil(t, err, "Vaults.Close")

	var all rpcaccounts.AllInfoReply
	err = client.Call("Accounts.AllInfo", &rpcaccounts.ListArguments{}, &all)
	require.Nil(t, err, "Accounts.AllInfo")
	_, found := all.Accounts[a]
	assert.False(t, found, "closed vault account visible")

	err = client.Call("Accounts.Info", &rpcaccounts.AddressArguments{Address: &a}, &info)
	require.NotNil(t, err, "Accounts.Info on hidden account")
	assert.Equal(t, coded(fault.UnknownAccount), err.Error(), "error code")

	err = client.Call("Vaults.Open", &vaults.PasswordArguments{Name: "work", Password: "wrong"}, &ok)
	require.NotNil(t, err, "open with wrong password")
	assert.Equal(t, coded(fault.WrongPassword), err.Error(), "error code")

	err = client.Call("Vaults.Open", &vaults.PasswordArguments{Name: "work", Password: "pw"}, &ok)
	require.Nil(t, err, "Vaults.Open")

	var opened vaults.ListReply
	err = client.Call("Vaults.ListOpened", &vaults.ListArguments{}, &opened)
	require.Nil(t, err, "Vaults.ListOpened")
	assert.Contains(t, opened.Vaults, "work")

	all = rpcaccounts.AllInfoReply{}
	err = client.Call("Accounts.AllInfo", &rpcaccounts.ListArguments{}, &all)
	require.Nil(t, err, "Accounts.AllInfo")
	_, found = all.Accounts[a]
	assert.True(t, found, "reopened vault account hidden")
}

func TestAddressBook(t *testing.T) {
	a, _ := address.FromHex("0x000baba1000baba2000baba3000baba4000baba5")

	var ok rpcaccounts.OkReply
	err := client.Call("Accounts.RegisterAddress", &rpcaccounts.RegisterAddressArguments{
		Address: &a,
		Name:    "friend",
		Meta:    `{"vault":"x","k":1}`,
	}, &ok)
	require.Nil(t, err, "Accounts.RegisterAddress")

	var info registry.AccountInfo
	err = client.Call("Accounts.Info", &rpcaccounts.AddressArguments{Address: &a}, &info)
	require.Nil(t, err, "Accounts.Info")
	assert.Equal(t, "", info.UUID, "address book entry has uuid")
	assert.Equal(t, "friend", info.Name)
	assert.Equal(t, `{"k":1}`, info.Meta)

	err = client.Call("Accounts.RemoveAddress", &rpcaccounts.AddressArguments{Address: &a}, &ok)
	require.Nil(t, err, "Accounts.RemoveAddress")

	err = client.Call("Accounts.Info", &rpcaccounts.AddressArguments{Address: &a}, &info)
	assert.NotNil(t, err, "removed address still present")

	k := newAccount(t, "pw", "")
	err = client.Call("Accounts.RemoveAddress", &rpcaccounts.AddressArguments{Address: &k}, &ok)
	require.NotNil(t, err, "key-backed address removed")
	assert.Equal(t, coded(fault.HasKeyMaterial), err.Error(), "error code")
}

func TestMissingAddress(t *testing.T) {
	var ok rpcaccounts.OkReply
	err := client.Call("Accounts.SetName", &rpcaccounts.SetNameArguments{Name: "x"}, &ok)
	require.NotNil(t, err, "missing address accepted")
	assert.Equal(t, coded(fault.InvalidParameters), err.Error(), "error code")
}

func TestKeyBackedAccount(t *testing.T) {
	a := newAccount(t, "one", "")

	var valid rpcaccounts.TestPasswordReply
	err := client.Call("Accounts.TestPassword", &rpcaccounts.PasswordArguments{Address: &a, Password: "one"}, &valid)
	require.Nil(t, err, "Accounts.TestPassword")
	assert.True(t, valid.Valid)

	var ok rpcaccounts.OkReply
	err = client.Call("Accounts.ChangePassword", &rpcaccounts.ChangePasswordArguments{
		Address:     &a,
		OldPassword: "one",
		NewPassword: "two",
	}, &ok)
	require.Nil(t, err, "Accounts.ChangePassword")

	err = client.Call("Accounts.Kill", &rpcaccounts.PasswordArguments{Address: &a, Password: "one"}, &ok)
	require.NotNil(t, err, "kill with old password")
	assert.Equal(t, coded(fault.WrongPassword), err.Error(), "error code")

	err = client.Call("Accounts.Kill", &rpcaccounts.PasswordArguments{Address: &a, Password: "two"}, &ok)
	require.Nil(t, err, "Accounts.Kill")

	var list rpcaccounts.ListReply
	err = client.Call("Accounts.List", &rpcaccounts.ListArguments{}, &list)
	require.Nil(t, err, "Accounts.List")
	assert.NotContains(t, list.Addresses, a, "killed account listed")
}

func TestMalformedAddress(t *testing.T) {
	arguments := map[string]string{
		"address":  "0xf00baba2f00baba2f00baba2",
		"password": "secret",
	}

	var ok rpcaccounts.OkReply
	err := client.Call("Accounts.Kill", arguments, &ok)
	require.NotNil(t, err, "kill with malformed address")
	assert.Equal(t, coded(fault.InvalidParameters), err.Error(), "error code")

	err = client.Call("Accounts.Info", map[string]interface{}{"address": 42}, &ok)
	require.NotNil(t, err, "info with numeric address")
	assert.Contains(t, err.Error(), fmt.Sprintf("%d: ", fault.CodeInvalidParameters), "error code")

	// the connection survives a bad request
	var list rpcaccounts.ListReply
	err = client.Call("Accounts.List", &rpcaccounts.ListArguments{}, &list)
	assert.Nil(t, err, "Accounts.List")
}

func TestChangeVault(t *testing.T) {
	var ok vaults.OkReply
	err := client.Call("Vaults.New", &vaults.PasswordArguments{Name: "move", Password: "pw"}, &ok)
	require.Nil(t, err, "Vaults.New")

	a := newAccount(t, "pw", "")

	var moved rpcaccounts.OkReply
	err = client.Call("Accounts.ChangeVault", &rpcaccounts.ChangeVaultArguments{Address: &a, Vault: "move"}, &moved)
	require.Nil(t, err, "Accounts.ChangeVault")

	var info registry.AccountInfo
	err = client.Call("Accounts.Info", &rpcaccounts.AddressArguments{Address: &a}, &info)
	require.Nil(t, err, "Accounts.Info")
	assert.Equal(t, `{"vault":"move"}`, info.Meta)

	err = client.Call("Accounts.ChangeVault", &rpcaccounts.ChangeVaultArguments{Address: &a, Vault: "missing"}, &moved)
	require.NotNil(t, err, "move to missing vault")
	assert.Equal(t, coded(fault.VaultNotFound), err.Error(), "error code")
}

func TestVaultMeta(t *testing.T) {
	var ok vaults.OkReply
	err := client.Call("Vaults.New", &vaults.PasswordArguments{Name: "meta", Password: "pw"}, &ok)
	require.Nil(t, err, "Vaults.New")

	err = client.Call("Vaults.SetMeta", &vaults.SetMetaArguments{Name: "meta", Meta: "colour=blue"}, &ok)
	require.Nil(t, err, "Vaults.SetMeta")

	var meta vaults.MetaReply
	err = client.Call("Vaults.GetMeta", &vaults.NameArguments{Name: "meta"}, &meta)
	require.Nil(t, err, "Vaults.GetMeta")
	assert.Equal(t, "colour=blue", meta.Meta)

	err = client.Call("Vaults.New", &vaults.PasswordArguments{Name: "meta", Password: "pw"}, &ok)
	require.NotNil(t, err, "duplicate vault")
	assert.Equal(t, coded(fault.VaultAlreadyExists), err.Error(), "error code")

	err = client.Call("Vaults.ChangePassword", &vaults.PasswordArguments{Name: "meta", Password: "new"}, &ok)
	require.Nil(t, err, "Vaults.ChangePassword")

	var list vaults.ListReply
	err = client.Call("Vaults.List", &vaults.ListArguments{}, &list)
	require.Nil(t, err, "Vaults.List")
	assert.Contains(t, list.Vaults, "meta")
}

func TestDapps(t *testing.T) {
	a := newAccount(t, "pw", "")
	b := newAccount(t, "pw", "")

	var ok dapps.OkReply
	err := client.Call("Dapps.SetAddresses", &dapps.SetAddressesArguments{Dapp: "game", Addresses: []address.Address{b}}, &ok)
	require.Nil(t, err, "Dapps.SetAddresses")

	var granted dapps.AddressesReply
	err = client.Call("Dapps.GetAddresses", &dapps.DappArguments{Dapp: "game"}, &granted)
	require.Nil(t, err, "Dapps.GetAddresses")
	assert.Equal(t, []address.Address{b}, granted.Addresses)

	var visible dapps.AddressesReply
	err = client.Call("Dapps.Accounts", &dapps.DappArguments{Dapp: "game"}, &visible)
	require.Nil(t, err, "Dapps.Accounts")
	assert.Equal(t, []address.Address{b}, visible.Addresses)

	list := []address.Address{a}
	err = client.Call("Dapps.SetNewWhitelist", &dapps.WhitelistArguments{Addresses: &list}, &ok)
	require.Nil(t, err, "Dapps.SetNewWhitelist")

	var whitelist dapps.WhitelistReply
	err = client.Call("Dapps.GetNewWhitelist", &dapps.EmptyArguments{}, &whitelist)
	require.Nil(t, err, "Dapps.GetNewWhitelist")
	assert.True(t, whitelist.Set)
	assert.Equal(t, []address.Address{a}, whitelist.Addresses)

	visible = dapps.AddressesReply{}
	err = client.Call("Dapps.Accounts", &dapps.DappArguments{Dapp: "new"}, &visible)
	require.Nil(t, err, "Dapps.Accounts")
	assert.Equal(t, []address.Address{a}, visible.Addresses)

	err = client.Call("Dapps.SetNewWhitelist", &dapps.WhitelistArguments{}, &ok)
	require.Nil(t, err, "clear whitelist")

	whitelist = dapps.WhitelistReply{}
	err = client.Call("Dapps.GetNewWhitelist", &dapps.EmptyArguments{}, &whitelist)
	require.Nil(t, err, "Dapps.GetNewWhitelist")
	assert.False(t, whitelist.Set)

	err = client.Call("Dapps.NoteUsed", &dapps.DappArguments{Dapp: "game"}, &ok)
	require.Nil(t, err, "Dapps.NoteUsed")
	err = client.Call("Dapps.NoteUsed", &dapps.DappArguments{Dapp: "game"}, &ok)
	require.Nil(t, err, "Dapps.NoteUsed")

	var recent dapps.RecentReply
	err = client.Call("Dapps.ListRecent", &dapps.EmptyArguments{}, &recent)
	require.Nil(t, err, "Dapps.ListRecent")
	assert.Equal(t, uint64(2), recent.Dapps["game"])
}

func TestNodeInfo(t *testing.T) {
	var info node.InfoReply
	err := client.Call("Node.Info", &node.InfoArguments{}, &info)
	require.Nil(t, err, "Node.Info")
	assert.Equal(t, "1.0", info.Version)
	assert.NotEqual(t, "", info.Uptime)
}
