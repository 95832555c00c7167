// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secretstore

import (
	"strings"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
)

// RootVault - the unnamed vault, always open
const RootVault = ""

// maximum bytes in a vault name
const maxVaultNameLength = 64

// KeyInfo - public details of a key held by the store
type KeyInfo struct {
	UUID    string
	Address address.Address
	Vault   string
}

//go:generate mockgen -destination=mocks/secretstore.go -package=mocks github.com/bitmark-inc/accountd/secretstore SecretStore

// SecretStore - key material and vault container operations
//
// vault "" is the root vault which cannot be created, opened or
// closed; every other vault name must pass CheckVaultName
type SecretStore interface {
	CreateVault(name string, password string) error
	OpenVault(name string, password string) error
	CloseVault(name string) error
	ChangeVaultPassword(name string, newPassword string) error
	Vaults() ([]string, error)
	VaultMeta(name string) (string, error)
	SetVaultMeta(name string, meta string) error

	NewAccount(vault string, password string) (KeyInfo, error)
	Accounts(vault string) ([]KeyInfo, error)
	RemoveAccount(vault string, addr address.Address, password string) error
	MoveAccount(addr address.Address, from string, to string) error
	TestPassword(vault string, addr address.Address, password string) (bool, error)
	ChangeAccountPassword(vault string, addr address.Address, oldPassword string, newPassword string) error
}

// CheckVaultName - a vault name is used as a directory name
func CheckVaultName(name string) error {
	switch name {
	case "", ".", "..":
		return fault.InvalidVaultName
	}
	if len(name) > maxVaultNameLength {
		return fault.InvalidVaultName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fault.InvalidVaultName
	}
	return nil
}
