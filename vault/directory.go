// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"sort"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/secretstore"
)

// one named vault
//
// the entry mutex serialises operations on the vault, open and meta
// are also guarded by the directory lock so readers never wait for a
// password operation in progress
type entry struct {
	sync.Mutex
	open bool
	meta string
}

// Directory - the known vaults and their open state
type Directory struct {
	sync.RWMutex

	log     *logger.L
	store   secretstore.SecretStore
	vaults  map[string]*entry
	pending map[string]struct{}
}

// New - create a directory populated from the store, all vaults closed
func New(log *logger.L, store secretstore.SecretStore) (*Directory, error) {
	if nil == log || nil == store {
		return nil, fault.InvalidParameters
	}

	d := &Directory{
		log:     log,
		store:   store,
		vaults:  make(map[string]*entry),
		pending: make(map[string]struct{}),
	}

	err := d.Refresh()
	if nil != err {
		return nil, err
	}
	return d, nil
}

// Create - make a new vault, it is left open with empty meta
func (d *Directory) Create(name string, password string) error {
	err := secretstore.CheckVaultName(name)
	if nil != err {
		return err
	}

	d.Lock()
	_, exists := d.vaults[name]
	_, creating := d.pending[name]
	if exists || creating {
		d.Unlock()
		return fault.VaultAlreadyExists
	}
	d.pending[name] = struct{}{}
	d.Unlock()

	err = d.store.CreateVault(name, password)

	d.Lock()
	defer d.Unlock()
	delete(d.pending, name)
	if nil != err {
		d.log.Warnf("create vault: %q  error: %s", name, err)
		return err
	}
	d.vaults[name] = &entry{
		open: true,
	}

	d.log.Infof("create vault: %q", name)
	return nil
}

// Open - unlock a vault, already open is success
func (d *Directory) Open(name string, password string) error {
	e, err := d.lock(name)
	if nil != err {
		return err
	}
	defer e.Unlock()

	if e.open {
		return nil
	}

	err = d.store.OpenVault(name, password)
	if nil != err {
		d.log.Warnf("open vault: %q  error: %s", name, err)
		return err
	}

	d.Lock()
	e.open = true
	d.Unlock()

	d.log.Infof("open vault: %q", name)
	return nil
}

// Close - lock a vault, already closed is success
func (d *Directory) Close(name string) error {
	e, err := d.lock(name)
	if nil != err {
		return err
	}
	defer e.Unlock()

	if !e.open {
		return nil
	}

	err = d.store.CloseVault(name)
	if nil != err {
		d.log.Errorf("close vault: %q  error: %s", name, err)
		return err
	}

	d.Lock()
	e.open = false
	d.Unlock()

	d.log.Infof("close vault: %q", name)
	return nil
}

// List - all known vault names
func (d *Directory) List() []string {
	d.RLock()
	defer d.RUnlock()

	names := make([]string, 0, len(d.vaults))
	for name := range d.vaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListOpened - names of the open vaults
func (d *Directory) ListOpened() []string {
	d.RLock()
	defer d.RUnlock()

	names := make([]string, 0, len(d.vaults))
	for name, e := range d.vaults {
		if e.open {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsOpen - the root vault is always open
func (d *Directory) IsOpen(name string) bool {
	if secretstore.RootVault == name {
		return true
	}

	d.RLock()
	defer d.RUnlock()
	e, ok := d.vaults[name]
	return ok && e.open
}

// Exists - check if a name is known, the root vault always exists
func (d *Directory) Exists(name string) bool {
	if secretstore.RootVault == name {
		return true
	}

	d.RLock()
	defer d.RUnlock()
	_, ok := d.vaults[name]
	return ok
}

// Meta - the meta blob of a vault, open or closed
func (d *Directory) Meta(name string) (string, error) {
	d.RLock()
	defer d.RUnlock()

	e, ok := d.vaults[name]
	if !ok {
		return "", fault.VaultNotFound
	}
	return e.meta, nil
}

// SetMeta - replace the meta blob of a vault, open or closed
func (d *Directory) SetMeta(name string, meta string) error {
	e, err := d.lock(name)
	if nil != err {
		return err
	}
	defer e.Unlock()

	err = d.store.SetVaultMeta(name, meta)
	if nil != err {
		return err
	}

	d.Lock()
	e.meta = meta
	d.Unlock()
	return nil
}

// ChangePassword - the vault must be open
func (d *Directory) ChangePassword(name string, newPassword string) error {
	e, err := d.lock(name)
	if nil != err {
		return err
	}
	defer e.Unlock()

	if !e.open {
		return fault.VaultLocked
	}

	err = d.store.ChangeVaultPassword(name, newPassword)
	if nil != err {
		d.log.Warnf("change password of vault: %q  error: %s", name, err)
		return err
	}

	d.log.Infof("change password of vault: %q", name)
	return nil
}

// Refresh - add vaults the store knows about but the directory does not
//
// vaults are never removed
func (d *Directory) Refresh() error {
	names, err := d.store.Vaults()
	if nil != err {
		return err
	}

	for _, name := range names {
		if d.Exists(name) {
			continue
		}
		meta, err := d.store.VaultMeta(name)
		if nil != err {
			return err
		}

		d.Lock()
		_, exists := d.vaults[name]
		_, creating := d.pending[name]
		if !exists && !creating {
			d.vaults[name] = &entry{
				meta: meta,
			}
			d.log.Infof("found vault: %q", name)
		}
		d.Unlock()
	}
	return nil
}

// find and lock a vault entry
func (d *Directory) lock(name string) (*entry, error) {
	d.RLock()
	e, ok := d.vaults[name]
	d.RUnlock()

	if !ok {
		return nil, fault.VaultNotFound
	}
	e.Lock()
	return e, nil
}
