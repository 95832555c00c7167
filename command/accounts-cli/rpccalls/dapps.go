// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/rpc/dapps"
)

// SetDappAddresses - replace the grant of a dapp
func (c *Client) SetDappAddresses(dapp string, addresses []address.Address) error {
	var reply dapps.OkReply
	return c.call("Dapps.SetAddresses", &dapps.SetAddressesArguments{Dapp: dapp, Addresses: addresses}, &reply)
}

// DappAddresses - the explicit grant of a dapp
func (c *Client) DappAddresses(dapp string) ([]address.Address, error) {
	var reply dapps.AddressesReply
	if err := c.call("Dapps.GetAddresses", &dapps.DappArguments{Dapp: dapp}, &reply); nil != err {
		return nil, err
	}
	return reply.Addresses, nil
}

// SetNewDappsWhitelist - nil clears the whitelist
func (c *Client) SetNewDappsWhitelist(addresses *[]address.Address) error {
	var reply dapps.OkReply
	return c.call("Dapps.SetNewWhitelist", &dapps.WhitelistArguments{Addresses: addresses}, &reply)
}

// NewDappsWhitelist - the whitelist and whether it is set
func (c *Client) NewDappsWhitelist() ([]address.Address, bool, error) {
	var reply dapps.WhitelistReply
	if err := c.call("Dapps.GetNewWhitelist", &dapps.EmptyArguments{}, &reply); nil != err {
		return nil, false, err
	}
	return reply.Addresses, reply.Set, nil
}

// NoteDappUsed - count a use of a dapp
func (c *Client) NoteDappUsed(dapp string) error {
	var reply dapps.OkReply
	return c.call("Dapps.NoteUsed", &dapps.DappArguments{Dapp: dapp}, &reply)
}

// RecentDapps - use counts
func (c *Client) RecentDapps() (map[string]uint64, error) {
	var reply dapps.RecentReply
	if err := c.call("Dapps.ListRecent", &dapps.EmptyArguments{}, &reply); nil != err {
		return nil, err
	}
	return reply.Dapps, nil
}

// DappAccounts - the addresses a dapp may currently see
func (c *Client) DappAccounts(dapp string) ([]address.Address, error) {
	var reply dapps.AddressesReply
	if err := c.call("Dapps.Accounts", &dapps.DappArguments{Dapp: dapp}, &reply); nil != err {
		return nil, err
	}
	return reply.Addresses, nil
}
