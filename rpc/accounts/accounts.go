// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accounts

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/registry"
	"github.com/bitmark-inc/accountd/rpc/ratelimit"
)

// Accounts
// --------

const (
	rateLimitAccounts = 100
	rateBurstAccounts = 20
)

// Accounts - type for the RPC
type Accounts struct {
	Log      *logger.L
	Limiter  *rate.Limiter
	registry *registry.Registry
}

// OkReply - result of a mutation
type OkReply struct {
	OK bool `json:"ok"`
}

// New - create the Accounts RPC service
func New(log *logger.L, r *registry.Registry) *Accounts {
	return &Accounts{
		Log:      log,
		Limiter:  rate.NewLimiter(rateLimitAccounts, rateBurstAccounts),
		registry: r,
	}
}

func (accounts *Accounts) limit() error {
	return fault.Coded(ratelimit.Limit(accounts.Limiter))
}

// Accounts create
// ---------------

// NewArguments - arguments for New
type NewArguments struct {
	Password string `json:"password"`
	Vault    string `json:"vault"`
}

// NewReply - result of New
type NewReply struct {
	Address address.Address `json:"address"`
}

// New - generate a key-backed account, an empty vault is the root vault
func (accounts *Accounts) New(arguments *NewArguments, reply *NewReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	accounts.Log.Infof("New: vault: %q", arguments.Vault)

	a, err := accounts.registry.CreateAccount(arguments.Password, arguments.Vault)
	if nil != err {
		return fault.Coded(err)
	}
	reply.Address = a
	return nil
}

// Accounts listing
// ----------------

// ListArguments - empty arguments for List and AllInfo
type ListArguments struct{}

// ListReply - result of List
type ListReply struct {
	Addresses []address.Address `json:"addresses"`
}

// List - visible key-backed addresses
func (accounts *Accounts) List(_ *ListArguments, reply *ListReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	reply.Addresses = accounts.registry.Accounts()
	return nil
}

// AllInfoReply - result of AllInfo
type AllInfoReply struct {
	Accounts map[address.Address]registry.AccountInfo `json:"accounts"`
}

// AllInfo - every visible account and address book entry
func (accounts *Accounts) AllInfo(_ *ListArguments, reply *AllInfoReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	reply.Accounts = accounts.registry.AllInfo()
	return nil
}

// AddressArguments - a single address
type AddressArguments struct {
	Address *address.Address `json:"address"`
}

// Info - details of one visible account
func (accounts *Accounts) Info(arguments *AddressArguments, reply *registry.AccountInfo) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	info, err := accounts.registry.Info(*arguments.Address)
	if nil != err {
		return fault.Coded(err)
	}
	*reply = info
	return nil
}

// Accounts bookkeeping
// --------------------

// SetNameArguments - arguments for SetName
type SetNameArguments struct {
	Address *address.Address `json:"address"`
	Name    string           `json:"name"`
}

// SetName - upsert the name of an address
func (accounts *Accounts) SetName(arguments *SetNameArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	if err := accounts.registry.SetName(*arguments.Address, arguments.Name); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// SetMetaArguments - arguments for SetMeta
type SetMetaArguments struct {
	Address *address.Address `json:"address"`
	Meta    string           `json:"meta"`
}

// SetMeta - upsert the meta of an address
func (accounts *Accounts) SetMeta(arguments *SetMetaArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	if err := accounts.registry.SetMeta(*arguments.Address, arguments.Meta); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// RegisterAddressArguments - arguments for RegisterAddress
type RegisterAddressArguments struct {
	Address *address.Address `json:"address"`
	Name    string           `json:"name"`
	Meta    string           `json:"meta"`
}

// RegisterAddress - add or replace an address book entry
func (accounts *Accounts) RegisterAddress(arguments *RegisterAddressArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	accounts.Log.Infof("RegisterAddress: %s", arguments.Address)

	meta := arguments.Meta
	if "" == meta {
		meta = registry.DefaultMeta
	}
	if err := accounts.registry.RegisterAddress(*arguments.Address, arguments.Name, meta); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// RemoveAddress - delete an address book entry
func (accounts *Accounts) RemoveAddress(arguments *AddressArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	if err := accounts.registry.RemoveAddress(*arguments.Address); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// Accounts key material
// ---------------------

// PasswordArguments - an address and its password
type PasswordArguments struct {
	Address  *address.Address `json:"address"`
	Password string           `json:"password"`
}

// Kill - delete a key-backed account
func (accounts *Accounts) Kill(arguments *PasswordArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	accounts.Log.Infof("Kill: %s", arguments.Address)

	if err := accounts.registry.KillAccount(*arguments.Address, arguments.Password); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// ChangeVaultArguments - arguments for ChangeVault
type ChangeVaultArguments struct {
	Address *address.Address `json:"address"`
	Vault   string           `json:"vault"`
}

// ChangeVault - move a key-backed account to another vault
func (accounts *Accounts) ChangeVault(arguments *ChangeVaultArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	accounts.Log.Infof("ChangeVault: %s  to: %q", arguments.Address, arguments.Vault)

	if err := accounts.registry.ChangeVault(*arguments.Address, arguments.Vault); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// TestPasswordReply - result of TestPassword
type TestPasswordReply struct {
	Valid bool `json:"valid"`
}

// TestPassword - check an account password
func (accounts *Accounts) TestPassword(arguments *PasswordArguments, reply *TestPasswordReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	ok, err := accounts.registry.TestPassword(*arguments.Address, arguments.Password)
	if nil != err {
		return fault.Coded(err)
	}
	reply.Valid = ok
	return nil
}

// ChangePasswordArguments - arguments for ChangePassword
type ChangePasswordArguments struct {
	Address     *address.Address `json:"address"`
	OldPassword string           `json:"oldPassword"`
	NewPassword string           `json:"newPassword"`
}

// ChangePassword - re-encrypt an account key
func (accounts *Accounts) ChangePassword(arguments *ChangePasswordArguments, reply *OkReply) error {
	if err := accounts.limit(); nil != err {
		return err
	}
	if nil == arguments || nil == arguments.Address {
		return fault.Coded(fault.InvalidParameters)
	}

	err := accounts.registry.ChangePassword(*arguments.Address, arguments.OldPassword, arguments.NewPassword)
	if nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}
