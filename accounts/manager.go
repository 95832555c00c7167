// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accounts

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/dapps"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/registry"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
	"github.com/bitmark-inc/accountd/vault"
)

// Manager - the vault directory, account registry and dapp
// permissions of one process
type Manager struct {
	log *logger.L

	Vaults   *vault.Directory
	Registry *registry.Registry
	Dapps    *dapps.Manager
}

// New - build all components over a secret store and a database
func New(log *logger.L, store secretstore.SecretStore, db *storage.Database) (*Manager, error) {
	if nil == log || nil == store || nil == db {
		return nil, fault.InvalidParameters
	}

	vaults, err := vault.New(logger.New("vault"), store)
	if nil != err {
		return nil, err
	}

	r, err := registry.New(logger.New("registry"), store, vaults, &db.Pool)
	if nil != err {
		return nil, err
	}

	d, err := dapps.New(logger.New("dapps"), &db.Pool)
	if nil != err {
		return nil, err
	}

	log.Infof("vaults: %d", len(vaults.List()))

	return &Manager{
		log:      log,
		Vaults:   vaults,
		Registry: r,
		Dapps:    d,
	}, nil
}

// DappAccounts - addresses a dapp may see, in byte order
//
// an explicit grant wins over the new dapps whitelist, with neither
// every visible key-backed account is returned; addresses that are
// not currently visible are always dropped
func (m *Manager) DappAccounts(dapp string) []address.Address {
	visible := m.Registry.AllInfo()

	var candidates []address.Address
	if m.Dapps.HasDappAddresses(dapp) {
		candidates = m.Dapps.DappAddresses(dapp)
	} else if whitelist, ok := m.Dapps.NewDappsWhitelist(); ok {
		candidates = whitelist
	} else {
		return m.Registry.Accounts()
	}

	shown := address.NewSet()
	for a := range visible {
		shown.Add(a)
	}
	return address.NewSet(candidates...).Intersect(shown).Sorted()
}
