// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/registry"
	"github.com/bitmark-inc/accountd/rpc/accounts"
)

// CreateAccount - generate a key-backed account
func (c *Client) CreateAccount(password string, vault string) (address.Address, error) {
	arguments := accounts.NewArguments{
		Password: password,
		Vault:    vault,
	}
	var reply accounts.NewReply
	if err := c.call("Accounts.New", &arguments, &reply); nil != err {
		return address.Address{}, err
	}
	return reply.Address, nil
}

// ListAccounts - visible key-backed addresses
func (c *Client) ListAccounts() ([]address.Address, error) {
	var reply accounts.ListReply
	if err := c.call("Accounts.List", &accounts.ListArguments{}, &reply); nil != err {
		return nil, err
	}
	return reply.Addresses, nil
}

// AllInfo - every visible account and address book entry
func (c *Client) AllInfo() (map[address.Address]registry.AccountInfo, error) {
	var reply accounts.AllInfoReply
	if err := c.call("Accounts.AllInfo", &accounts.ListArguments{}, &reply); nil != err {
		return nil, err
	}
	return reply.Accounts, nil
}

// Info - details of one account
func (c *Client) Info(a address.Address) (*registry.AccountInfo, error) {
	var reply registry.AccountInfo
	if err := c.call("Accounts.Info", &accounts.AddressArguments{Address: &a}, &reply); nil != err {
		return nil, err
	}
	return &reply, nil
}

// SetName - name an address
func (c *Client) SetName(a address.Address, name string) error {
	var reply accounts.OkReply
	return c.call("Accounts.SetName", &accounts.SetNameArguments{Address: &a, Name: name}, &reply)
}

// SetMeta - attach meta to an address
func (c *Client) SetMeta(a address.Address, meta string) error {
	var reply accounts.OkReply
	return c.call("Accounts.SetMeta", &accounts.SetMetaArguments{Address: &a, Meta: meta}, &reply)
}

// RegisterAddress - add an address book entry
func (c *Client) RegisterAddress(a address.Address, name string, meta string) error {
	arguments := accounts.RegisterAddressArguments{
		Address: &a,
		Name:    name,
		Meta:    meta,
	}
	var reply accounts.OkReply
	return c.call("Accounts.RegisterAddress", &arguments, &reply)
}

// RemoveAddress - delete an address book entry
func (c *Client) RemoveAddress(a address.Address) error {
	var reply accounts.OkReply
	return c.call("Accounts.RemoveAddress", &accounts.AddressArguments{Address: &a}, &reply)
}

// KillAccount - delete a key-backed account
func (c *Client) KillAccount(a address.Address, password string) error {
	var reply accounts.OkReply
	return c.call("Accounts.Kill", &accounts.PasswordArguments{Address: &a, Password: password}, &reply)
}

// ChangeVault - move a key-backed account
func (c *Client) ChangeVault(a address.Address, vault string) error {
	var reply accounts.OkReply
	return c.call("Accounts.ChangeVault", &accounts.ChangeVaultArguments{Address: &a, Vault: vault}, &reply)
}

// TestPassword - check an account password
func (c *Client) TestPassword(a address.Address, password string) (bool, error) {
	var reply accounts.TestPasswordReply
	if err := c.call("Accounts.TestPassword", &accounts.PasswordArguments{Address: &a, Password: password}, &reply); nil != err {
		return false, err
	}
	return reply.Valid, nil
}

// ChangePassword - re-encrypt an account key
func (c *Client) ChangePassword(a address.Address, oldPassword string, newPassword string) error {
	arguments := accounts.ChangePasswordArguments{
		Address:     &a,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}
	var reply accounts.OkReply
	return c.call("Accounts.ChangePassword", &arguments, &reply)
}
