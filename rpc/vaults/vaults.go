// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vaults

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/rpc/ratelimit"
	"github.com/bitmark-inc/accountd/vault"
)

const (
	rateLimitVaults = 20
	rateBurstVaults = 10
)

// Vaults - type for the RPC
type Vaults struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	directory *vault.Directory
}

// OkReply - result of a mutation
type OkReply struct {
	OK bool `json:"ok"`
}

// New - create the Vaults RPC service
func New(log *logger.L, directory *vault.Directory) *Vaults {
	return &Vaults{
		Log:       log,
		Limiter:   rate.NewLimiter(rateLimitVaults, rateBurstVaults),
		directory: directory,
	}
}

func (vaults *Vaults) limit() error {
	return fault.Coded(ratelimit.Limit(vaults.Limiter))
}

// PasswordArguments - a vault name with its password
type PasswordArguments struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// NameArguments - a vault name
type NameArguments struct {
	Name string `json:"name"`
}

// New - create a vault, it is left open
func (vaults *Vaults) New(arguments *PasswordArguments, reply *OkReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	vaults.Log.Infof("New: %q", arguments.Name)

	if err := vaults.directory.Create(arguments.Name, arguments.Password); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// Open - unlock a vault
func (vaults *Vaults) Open(arguments *PasswordArguments, reply *OkReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	vaults.Log.Infof("Open: %q", arguments.Name)

	if err := vaults.directory.Open(arguments.Name, arguments.Password); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// Close - lock a vault
func (vaults *Vaults) Close(arguments *NameArguments, reply *OkReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	vaults.Log.Infof("Close: %q", arguments.Name)

	if err := vaults.directory.Close(arguments.Name); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// ListArguments - empty arguments for List and ListOpened
type ListArguments struct{}

// ListReply - vault names
type ListReply struct {
	Vaults []string `json:"vaults"`
}

// List - all named vaults
func (vaults *Vaults) List(_ *ListArguments, reply *ListReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	reply.Vaults = vaults.directory.List()
	return nil
}

// ListOpened - the named vaults that are open
func (vaults *Vaults) ListOpened(_ *ListArguments, reply *ListReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	reply.Vaults = vaults.directory.ListOpened()
	return nil
}

// MetaReply - result of GetMeta
type MetaReply struct {
	Meta string `json:"meta"`
}

// GetMeta - read the meta of a vault
func (vaults *Vaults) GetMeta(arguments *NameArguments, reply *MetaReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	meta, err := vaults.directory.Meta(arguments.Name)
	if nil != err {
		return fault.Coded(err)
	}
	reply.Meta = meta
	return nil
}

// SetMetaArguments - arguments for SetMeta
type SetMetaArguments struct {
	Name string `json:"name"`
	Meta string `json:"meta"`
}

// SetMeta - replace the meta of a vault
func (vaults *Vaults) SetMeta(arguments *SetMetaArguments, reply *OkReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	if err := vaults.directory.SetMeta(arguments.Name, arguments.Meta); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}

// ChangePassword - re-key an open vault
func (vaults *Vaults) ChangePassword(arguments *PasswordArguments, reply *OkReply) error {
	if err := vaults.limit(); nil != err {
		return err
	}
	if nil == arguments {
		return fault.Coded(fault.InvalidParameters)
	}

	vaults.Log.Infof("ChangePassword: %q", arguments.Name)

	if err := vaults.directory.ChangePassword(arguments.Name, arguments.Password); nil != err {
		return fault.Coded(err)
	}
	reply.OK = true
	return nil
}
