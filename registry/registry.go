// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"sort"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/secretstore"
	"github.com/bitmark-inc/accountd/storage"
	"github.com/bitmark-inc/accountd/vault"
)

// AccountInfo - public details of one account
type AccountInfo struct {
	UUID string `json:"uuid,omitempty"`
	Name string `json:"name"`
	Meta string `json:"meta"`
}

// bookkeeping for one address
type record struct {
	Name  string `json:"name"`
	Meta  string `json:"meta"`
	Vault string `json:"vault,omitempty"`
}

// a lock scope over a group of records
type scope struct {
	sync.RWMutex
	records map[address.Address]*record
}

func newScope() *scope {
	return &scope{
		records: make(map[address.Address]*record),
	}
}

// Registry - known accounts, both key-backed and address book
//
// key-backed bookkeeping is held in one scope per vault, the
// registry lock only guards the scope map and the address to vault
// index and is never held while waiting for a scope
type Registry struct {
	sync.RWMutex

	log    *logger.L
	store  secretstore.SecretStore
	vaults *vault.Directory
	pools  *storage.Pools

	scopes map[string]*scope
	index  map[address.Address]string
	book   *scope
}

// New - create a registry and load stored bookkeeping
func New(log *logger.L, store secretstore.SecretStore, vaults *vault.Directory, pools *storage.Pools) (*Registry, error) {
	if nil == log || nil == store || nil == vaults || nil == pools {
		return nil, fault.InvalidParameters
	}

	r := &Registry{
		log:    log,
		store:  store,
		vaults: vaults,
		pools:  pools,
		scopes: make(map[string]*scope),
		index:  make(map[address.Address]string),
		book:   newScope(),
	}

	err := r.load()
	if nil != err {
		return nil, err
	}
	return r, nil
}

// restore bookkeeping from the database
func (r *Registry) load() error {
	err := r.pools.AddressBook.NewFetchCursor().Map(func(key []byte, value []byte) error {
		addr, rec, err := decodeRecord(key, value)
		if nil != err {
			return err
		}
		r.book.records[addr] = rec
		return nil
	})
	if nil != err {
		return err
	}

	err = r.pools.Accounts.NewFetchCursor().Map(func(key []byte, value []byte) error {
		addr, rec, err := decodeRecord(key, value)
		if nil != err {
			return err
		}
		s, ok := r.scopes[rec.Vault]
		if !ok {
			s = newScope()
			r.scopes[rec.Vault] = s
		}
		s.records[addr] = rec
		r.index[addr] = rec.Vault
		return nil
	})
	if nil != err {
		return err
	}

	err = r.reconcileRoot()
	if nil != err {
		return err
	}

	r.log.Infof("loaded address book: %d  key-backed: %d", len(r.book.records), len(r.index))
	return nil
}

// match root vault bookkeeping against its key files
//
// keys without bookkeeping are indexed, bookkeeping whose key file
// has gone is dropped
func (r *Registry) reconcileRoot() error {
	keys, err := r.store.Accounts(secretstore.RootVault)
	if nil != err {
		return err
	}

	present := make(map[address.Address]struct{}, len(keys))
	for _, key := range keys {
		present[key.Address] = struct{}{}
		if _, ok := r.index[key.Address]; !ok {
			r.index[key.Address] = secretstore.RootVault
		}
	}

	s, ok := r.scopes[secretstore.RootVault]
	if !ok {
		return nil
	}
	for addr := range s.records {
		if _, ok := present[addr]; ok {
			continue
		}
		r.log.Warnf("account: %s  key file missing: dropping bookkeeping", addr)
		delete(s.records, addr)
		delete(r.index, addr)
		r.pools.Accounts.Delete(addr.Bytes())
	}
	return nil
}

// CreateAccount - generate a key in a vault, "" is the root vault
func (r *Registry) CreateAccount(password string, vaultName string) (address.Address, error) {
	if !r.vaults.Exists(vaultName) {
		return address.Address{}, fault.VaultNotFound
	}
	if !r.vaults.IsOpen(vaultName) {
		return address.Address{}, fault.VaultLocked
	}

	info, err := r.store.NewAccount(vaultName, password)
	if nil != err {
		r.log.Warnf("create account in vault: %q  error: %s", vaultName, err)
		return address.Address{}, err
	}

	s := r.scope(vaultName)
	s.Lock()
	rec := &record{
		Meta:  DefaultMeta,
		Vault: vaultName,
	}
	s.records[info.Address] = rec
	r.pools.Accounts.PutJSON(info.Address.Bytes(), rec)

	r.Lock()
	r.index[info.Address] = vaultName
	r.Unlock()
	s.Unlock()

	r.log.Infof("create account: %s  vault: %q", info.Address, vaultName)
	return info.Address, nil
}

// RegisterAddress - create or replace the name and meta of an address
//
// key material of a key-backed address is kept
func (r *Registry) RegisterAddress(addr address.Address, name string, meta string) error {
	stripped := NewMeta(meta).Raw
	r.update(addr, func(rec *record) {
		rec.Name = name
		rec.Meta = stripped
	})
	return nil
}

// SetName - upsert the name of an address
func (r *Registry) SetName(addr address.Address, name string) error {
	r.update(addr, func(rec *record) {
		rec.Name = name
	})
	return nil
}

// SetMeta - upsert the meta of an address, any vault field is dropped
func (r *Registry) SetMeta(addr address.Address, meta string) error {
	stripped := NewMeta(meta).Raw
	r.update(addr, func(rec *record) {
		rec.Meta = stripped
	})
	return nil
}

// RemoveAddress - delete an address book entry
func (r *Registry) RemoveAddress(addr address.Address) error {
	if _, ok := r.locate(addr); ok {
		return fault.HasKeyMaterial
	}

	r.book.Lock()
	defer r.book.Unlock()

	if _, ok := r.book.records[addr]; ok {
		delete(r.book.records, addr)
		r.pools.AddressBook.Delete(addr.Bytes())
		r.log.Infof("remove address: %s", addr)
	}
	return nil
}

// KillAccount - delete key material and bookkeeping
func (r *Registry) KillAccount(addr address.Address, password string) error {
	vaultName, ok := r.locate(addr)
	if !ok {
		return fault.UnknownAccount
	}

	err := r.store.RemoveAccount(vaultName, addr, password)
	if fault.UnknownAccount == err && r.dropStale(addr, vaultName) {
		return nil
	}
	if nil != err {
		r.log.Warnf("kill account: %s  error: %s", addr, err)
		return err
	}

	r.forget(addr, vaultName)

	r.log.Infof("kill account: %s  vault: %q", addr, vaultName)
	return nil
}

// drop the bookkeeping of an account whose key file has gone
//
// false if the account moved or its key is held by another open vault
func (r *Registry) dropStale(addr address.Address, vaultName string) bool {
	r.RLock()
	current, indexed := r.index[addr]
	r.RUnlock()
	if !indexed || current != vaultName {
		return false
	}
	if _, held := r.visibleKey(addr); held {
		return false
	}

	r.forget(addr, vaultName)

	r.log.Warnf("kill account: %s  vault: %q  key file missing: dropped bookkeeping", addr, vaultName)
	return true
}

// remove the bookkeeping of a key-backed account
func (r *Registry) forget(addr address.Address, vaultName string) {
	s := r.scope(vaultName)
	s.Lock()
	defer s.Unlock()

	delete(s.records, addr)

	r.Lock()
	defer r.Unlock()
	if current, ok := r.index[addr]; ok && current != vaultName {
		return
	}
	delete(r.index, addr)
	r.pools.Accounts.Delete(addr.Bytes())
}

// ChangeVault - move a key-backed account, "" is the root vault
func (r *Registry) ChangeVault(addr address.Address, vaultName string) error {
	from, ok := r.locate(addr)
	if !ok {
		return fault.UnknownAccount
	}
	if !r.vaults.Exists(vaultName) {
		return fault.VaultNotFound
	}
	if !r.vaults.IsOpen(vaultName) {
		return fault.VaultLocked
	}
	if from == vaultName {
		return nil
	}

	err := r.store.MoveAccount(addr, from, vaultName)
	if nil != err {
		r.log.Warnf("move account: %s  to vault: %q  error: %s", addr, vaultName, err)
		return err
	}

	source := r.scope(from)
	destination := r.scope(vaultName)

	// scopes in lexicographic order
	first, second := source, destination
	if from > vaultName {
		first, second = second, first
	}
	first.Lock()
	second.Lock()

	rec, ok := source.records[addr]
	if !ok {
		rec = &record{
			Meta: DefaultMeta,
		}
	}
	delete(source.records, addr)
	rec.Vault = vaultName
	destination.records[addr] = rec
	r.pools.Accounts.PutJSON(addr.Bytes(), rec)

	r.Lock()
	r.index[addr] = vaultName
	r.Unlock()

	second.Unlock()
	first.Unlock()

	r.log.Infof("move account: %s  from vault: %q  to vault: %q", addr, from, vaultName)
	return nil
}

// Info - details of a visible account
func (r *Registry) Info(addr address.Address) (AccountInfo, error) {
	if key, ok := r.visibleKey(addr); ok {
		s := r.scope(key.Vault)
		s.RLock()
		defer s.RUnlock()
		return keyBackedInfo(key, s.records[addr]), nil
	}

	r.book.RLock()
	defer r.book.RUnlock()
	if rec, ok := r.book.records[addr]; ok {
		return bookInfo(rec), nil
	}
	return AccountInfo{}, fault.UnknownAccount
}

// AllInfo - every visible account
//
// address book entries always, key-backed accounts only when their
// vault is open
func (r *Registry) AllInfo() map[address.Address]AccountInfo {
	keys := r.visibleKeys()

	// scopes in a fixed order: root, named vaults, address book
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	scopes := make([]*scope, 0, len(names)+1)
	for _, name := range names {
		scopes = append(scopes, r.scope(name))
	}
	scopes = append(scopes, r.book)

	for _, s := range scopes {
		s.RLock()
	}
	defer func() {
		for i := len(scopes) - 1; i >= 0; i -= 1 {
			scopes[i].RUnlock()
		}
	}()

	result := make(map[address.Address]AccountInfo)
	for addr, rec := range r.book.records {
		result[addr] = bookInfo(rec)
	}
	for i, name := range names {
		s := scopes[i]
		for _, key := range keys[name] {
			result[key.Address] = keyBackedInfo(key, s.records[key.Address])
		}
	}
	return result
}

// Accounts - visible key-backed addresses in byte order
func (r *Registry) Accounts() []address.Address {
	keys := r.visibleKeys()
	result := make([]address.Address, 0)
	for _, list := range keys {
		for _, key := range list {
			result = append(result, key.Address)
		}
	}
	address.Sort(result)
	return result
}

// TestPassword - check the password of a key-backed account
func (r *Registry) TestPassword(addr address.Address, password string) (bool, error) {
	vaultName, ok := r.locate(addr)
	if !ok {
		return false, fault.UnknownAccount
	}
	return r.store.TestPassword(vaultName, addr, password)
}

// ChangePassword - change the password of a key-backed account
func (r *Registry) ChangePassword(addr address.Address, oldPassword string, newPassword string) error {
	vaultName, ok := r.locate(addr)
	if !ok {
		return fault.UnknownAccount
	}
	return r.store.ChangeAccountPassword(vaultName, addr, oldPassword, newPassword)
}

// apply a change to the bookkeeping of an address, creating an
// address book entry when nothing is known
//
// indexed accounts and existing address book entries are resolved
// without consulting the secret store
func (r *Registry) update(addr address.Address, f func(rec *record)) {
	if r.updateBook(addr, f, false) {
		return
	}

	for {
		vaultName, keyBacked := r.locate(addr)
		if !keyBacked {
			break
		}

		s := r.scope(vaultName)
		s.Lock()

		// the account may have moved while the scope was acquired
		r.RLock()
		current, indexed := r.index[addr]
		r.RUnlock()
		if indexed && current != vaultName {
			s.Unlock()
			continue
		}

		rec, ok := s.records[addr]
		if !ok {
			rec = &record{
				Meta:  DefaultMeta,
				Vault: vaultName,
			}
			s.records[addr] = rec
			r.Lock()
			r.index[addr] = vaultName
			r.Unlock()
		}
		f(rec)
		r.pools.Accounts.PutJSON(addr.Bytes(), rec)
		s.Unlock()
		return
	}

	r.updateBook(addr, f, true)
}

// apply a change to an address book entry of an address that is not
// indexed, a missing entry is only created when requested
func (r *Registry) updateBook(addr address.Address, f func(rec *record), create bool) bool {
	r.book.Lock()
	defer r.book.Unlock()

	r.RLock()
	_, indexed := r.index[addr]
	r.RUnlock()
	if indexed {
		return false
	}

	rec, ok := r.book.records[addr]
	if !ok {
		if !create {
			return false
		}
		rec = &record{
			Meta: DefaultMeta,
		}
		r.book.records[addr] = rec
	}
	f(rec)
	r.pools.AddressBook.PutJSON(addr.Bytes(), rec)
	return true
}

// find the vault holding the key of an address
//
// bookkeeping knows accounts in closed vaults, open vaults are also
// searched for keys created outside this registry
func (r *Registry) locate(addr address.Address) (string, bool) {
	r.RLock()
	vaultName, ok := r.index[addr]
	r.RUnlock()
	if ok {
		return vaultName, true
	}

	if key, ok := r.visibleKey(addr); ok {
		return key.Vault, true
	}
	return "", false
}

// search the open vaults for a key
func (r *Registry) visibleKey(addr address.Address) (secretstore.KeyInfo, bool) {
	for _, list := range r.visibleKeys() {
		for _, key := range list {
			if key.Address == addr {
				return key, true
			}
		}
	}
	return secretstore.KeyInfo{}, false
}

// keys of every open vault, the root vault included
//
// a vault that closes during the scan is skipped
func (r *Registry) visibleKeys() map[string][]secretstore.KeyInfo {
	opened := append([]string{secretstore.RootVault}, r.vaults.ListOpened()...)

	result := make(map[string][]secretstore.KeyInfo, len(opened))
	for _, name := range opened {
		keys, err := r.store.Accounts(name)
		if nil != err {
			if !fault.IsErrLocked(err) {
				r.log.Errorf("list accounts of vault: %q  error: %s", name, err)
			}
			continue
		}
		result[name] = keys
	}
	return result
}

// get the scope of a vault, creating it if necessary
func (r *Registry) scope(vaultName string) *scope {
	r.RLock()
	s, ok := r.scopes[vaultName]
	r.RUnlock()
	if ok {
		return s
	}

	r.Lock()
	defer r.Unlock()
	s, ok = r.scopes[vaultName]
	if !ok {
		s = newScope()
		r.scopes[vaultName] = s
	}
	return s
}

func keyBackedInfo(key secretstore.KeyInfo, rec *record) AccountInfo {
	info := AccountInfo{
		UUID: key.UUID,
		Meta: Meta{Raw: DefaultMeta, Vault: key.Vault}.Text(),
	}
	if nil != rec {
		info.Name = rec.Name
		info.Meta = Meta{Raw: rec.Meta, Vault: key.Vault}.Text()
	}
	return info
}

func bookInfo(rec *record) AccountInfo {
	return AccountInfo{
		Name: rec.Name,
		Meta: Meta{Raw: rec.Meta}.Text(),
	}
}
