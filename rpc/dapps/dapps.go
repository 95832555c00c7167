// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dapps

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/accounts"
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/rpc/ratelimit"
)

const (
	maximumAddresses = 1000
	rateLimitDapps   = 200
	rateBurstDapps   = maximumAddresses
)

// Dapps - type for the RPC
type Dapps struct {
	Log     *logger.L
	Limiter *rate.Limiter
	manager *accounts.Manager
}

// OkReply - result of a mutation
type OkReply struct {
	OK bool `json:"ok"`
}

// New - create the Dapps RPC service
func New(log *logger.L, manager *accounts.Manager) *Dapps {
	return &Dapps{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitDapps, rateBurstDapps),
		manager: manager,
	}
}

func (dapps *Dapps) limit() error {
	return fault.Coded(ratelimit.Limit(dapps.Limiter))
}

// EmptyArguments - for calls without arguments
type EmptyArguments struct{}

// DappArguments - a dapp identifier
type DappArguments struct {
	Dapp string `json:"dapp"`
}

// AddressesReply - a list of addresses
type AddressesReply struct {
	Addresses []address.Address `json:"addresses"`
}

// SetAddressesArguments - arguments for SetAddresses
type SetAddressesArguments struct {
	Dapp      string            `json:"dapp"`
	Addresses []address.Address `json:"addresses"`
}

// SetAddresses - replace the grant of a dapp, an empty list grants nothing
func (dapps *Dapps) SetAddresses(arguments *SetAddressesArguments, reply *OkReply) error {
	if nil == arguments {
		if err := dapps.limit(); nil != err {
			return err
		}
		return fault.Coded(fault.InvalidParameters)
	}

	// each address costs one token, an empty list is one request
	if 0 == len(arguments.Addresses) {
		if err := dapps.limit(); nil != err {
			return err
		}
	} else if err := ratelimit.LimitN(dapps.Limiter, len(arguments.Addresses), maximumAddresses); nil != err {
		return fault.Coded(err)
	}

	dapps.Log.Infof("SetAddresses: dapp: %q  count: %d", arguments.Dapp, len(arguments.Addresses))

	dapps.manager.Dapps.SetDappAddresses(arguments.Dapp, arguments.Addresses)
	reply.OK = true
	return nil
}

// GetAddresses - the explicit grant of a dapp
func (dapps *Dapps) GetAddresses(arguments *DappArguments, reply *AddressesReply) error {
	if err := dapps.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}
	reply.Addresses = dapps.manager.Dapps.DappAddresses(arguments.Dapp)
	return nil
}

// WhitelistArguments - arguments for SetNewWhitelist
//
// a missing list removes the whitelist
type WhitelistArguments struct {
	Addresses *[]address.Address `json:"addresses"`
}

// WhitelistReply - result of GetNewWhitelist
type WhitelistReply struct {
	Addresses []address.Address `json:"addresses"`
	Set       bool              `json:"set"`
}

// SetNewWhitelist - set or clear the addresses given to new dapps
func (dapps *Dapps) SetNewWhitelist(arguments *WhitelistArguments, reply *OkReply) error {
	if err := dapps.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}
	if nil != arguments.Addresses && len(*arguments.Addresses) > maximumAddresses {
		return fault.Coded(fault.InvalidParameters)
	}

	dapps.manager.Dapps.SetNewDappsWhitelist(arguments.Addresses)
	reply.OK = true
	return nil
}

// GetNewWhitelist - the addresses given to new dapps
func (dapps *Dapps) GetNewWhitelist(_ *EmptyArguments, reply *WhitelistReply) error {
	if err := dapps.limit(); nil != err {
		return err
	}
	list, ok := dapps.manager.Dapps.NewDappsWhitelist()
	if !ok {
		list = []address.Address{}
	}
	reply.Addresses = list
	reply.Set = ok
	return nil
}

// NoteUsed - count a use of a dapp
func (dapps *Dapps) NoteUsed(arguments *DappArguments, reply *OkReply) error {
	if err := dapps.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}
	dapps.manager.Dapps.NoteDappUsed(arguments.Dapp)
	reply.OK = true
	return nil
}

// RecentReply - use counts by dapp
type RecentReply struct {
	Dapps map[string]uint64 `json:"dapps"`
}

// ListRecent - every dapp that has been used
func (dapps *Dapps) ListRecent(_ *EmptyArguments, reply *RecentReply) error {
	if err := dapps.limit(); nil != err {
		return err
	}
	reply.Dapps = dapps.manager.Dapps.RecentDapps()
	return nil
}

// Accounts - the addresses a dapp may currently see
func (dapps *Dapps) Accounts(arguments *DappArguments, reply *AddressesReply) error {
	if err := dapps.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}
	reply.Addresses = dapps.manager.DappAccounts(arguments.Dapp)
	return nil
}
