// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/accountd/rpc/node"
	"github.com/bitmark-inc/accountd/rpc/vaults"
)

// CreateVault - make a new open vault
func (c *Client) CreateVault(name string, password string) error {
	var reply vaults.OkReply
	return c.call("Vaults.New", &vaults.PasswordArguments{Name: name, Password: password}, &reply)
}

// OpenVault - unlock a vault
func (c *Client) OpenVault(name string, password string) error {
	var reply vaults.OkReply
	return c.call("Vaults.Open", &vaults.PasswordArguments{Name: name, Password: password}, &reply)
}

// CloseVault - lock a vault
func (c *Client) CloseVault(name string) error {
	var reply vaults.OkReply
	return c.call("Vaults.Close", &vaults.NameArguments{Name: name}, &reply)
}

// ListVaults - all vault names, or only the open ones
func (c *Client) ListVaults(opened bool) ([]string, error) {
	method := "Vaults.List"
	if opened {
		method = "Vaults.ListOpened"
	}
	var reply vaults.ListReply
	if err := c.call(method, &vaults.ListArguments{}, &reply); nil != err {
		return nil, err
	}
	return reply.Vaults, nil
}

// VaultMeta - read vault meta
func (c *Client) VaultMeta(name string) (string, error) {
	var reply vaults.MetaReply
	if err := c.call("Vaults.GetMeta", &vaults.NameArguments{Name: name}, &reply); nil != err {
		return "", err
	}
	return reply.Meta, nil
}

// SetVaultMeta - replace vault meta
func (c *Client) SetVaultMeta(name string, meta string) error {
	var reply vaults.OkReply
	return c.call("Vaults.SetMeta", &vaults.SetMetaArguments{Name: name, Meta: meta}, &reply)
}

// ChangeVaultPassword - re-key an open vault
func (c *Client) ChangeVaultPassword(name string, password string) error {
	var reply vaults.OkReply
	return c.call("Vaults.ChangePassword", &vaults.PasswordArguments{Name: name, Password: password}, &reply)
}

// NodeInfo - server status
func (c *Client) NodeInfo() (*node.InfoReply, error) {
	var reply node.InfoReply
	if err := c.call("Node.Info", &node.InfoArguments{}, &reply); nil != err {
		return nil, err
	}
	return &reply, nil
}
