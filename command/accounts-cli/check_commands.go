// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
)

var (
	ErrInvalidAddress     = fault.InvalidError("invalid address")
	ErrInvalidFingerprint = fault.InvalidError("fingerprint must be 64 hex digits")
	ErrPasswordMismatch   = fault.InvalidError("passwords do not match")
	ErrRequiredAddress    = fault.InvalidError("address is required")
	ErrRequiredConnect    = fault.InvalidError("connect is required")
	ErrRequiredDapp       = fault.InvalidError("dapp name is required")
	ErrRequiredVault      = fault.InvalidError("vault name is required")
)

// address is required
func checkAddress(text string) (address.Address, error) {
	if "" == text {
		return address.Address{}, ErrRequiredAddress
	}
	a, err := address.FromHex(text)
	if nil != err {
		return address.Address{}, ErrInvalidAddress
	}
	return a, nil
}

// zero or more addresses, duplicates are kept for the server to reject
func checkAddressList(list []string) ([]address.Address, error) {
	addresses := make([]address.Address, 0, len(list))
	for _, text := range list {
		a, err := checkAddress(text)
		if nil != err {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, nil
}

// vault name is required, the server validates its form
func checkVault(name string) (string, error) {
	if "" == name {
		return "", ErrRequiredVault
	}
	return name, nil
}

// dapp name is required
func checkDapp(name string) (string, error) {
	if "" == name {
		return "", ErrRequiredDapp
	}
	return name, nil
}
