// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secretstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
)

// suffix of a key file staged during a vault password change
const stagedFileSuffix = ".new"

// one vault directory
type vaultState struct {
	sync.Mutex
	name      string
	directory string
	meta      string
	removed   bool

	// only valid while open, key is nil for the root vault
	open bool
	key  *[keySize]byte
	keys map[address.Address]*keyDocument
}

// Disk - a SecretStore backed by a keystore directory
type Disk struct {
	sync.RWMutex

	log       *logger.L
	directory string
	kdf       KDF
	vaults    map[string]*vaultState
}

// New - open a keystore directory, creating it if necessary
//
// the root vault is loaded immediately, named vaults start closed
func New(log *logger.L, directory string, kdf KDF) (*Disk, error) {
	if nil == log {
		return nil, fault.InvalidParameters
	}
	if 0 == kdf.Time || 0 == kdf.Memory || 0 == kdf.Threads {
		return nil, fault.InvalidParameters
	}

	directory, err := filepath.Abs(directory)
	if nil != err {
		return nil, fault.Wrap("keystore path", err)
	}
	err = os.MkdirAll(directory, 0700)
	if nil != err {
		return nil, fault.Wrap("create keystore", err)
	}

	root := &vaultState{
		name:      RootVault,
		directory: directory,
		open:      true,
	}
	err = root.load(log)
	if nil != err {
		return nil, err
	}

	d := &Disk{
		log:       log,
		directory: directory,
		kdf:       kdf,
		vaults: map[string]*vaultState{
			RootVault: root,
		},
	}

	_, err = d.Vaults()
	if nil != err {
		return nil, err
	}

	log.Infof("keystore: %q  root accounts: %d", directory, len(root.keys))
	return d, nil
}

// CreateVault - make a new vault directory, the vault is left open
func (d *Disk) CreateVault(name string, password string) error {
	err := CheckVaultName(name)
	if nil != err {
		return err
	}

	d.Lock()
	if _, ok := d.vaults[name]; ok {
		d.Unlock()
		return fault.VaultAlreadyExists
	}
	directory := filepath.Join(d.directory, name)
	if _, err := os.Stat(directory); nil == err {
		d.Unlock()
		return fault.VaultAlreadyExists
	}

	v := &vaultState{
		name:      name,
		directory: directory,
	}
	v.Lock()
	defer v.Unlock()
	d.vaults[name] = v
	d.Unlock()

	err = d.createVault(v, password)
	if nil != err {
		d.log.Warnf("create vault: %q  error: %s", name, err)
		v.removed = true
		d.Lock()
		delete(d.vaults, name)
		d.Unlock()
		return err
	}

	d.log.Infof("created vault: %q", name)
	return nil
}

func (d *Disk) createVault(v *vaultState, password string) error {
	salt, key, err := d.kdf.hashPassword(password)
	if nil != err {
		return err
	}
	check, err := encryptData([]byte(checkText), key)
	if nil != err {
		return err
	}

	err = os.Mkdir(v.directory, 0700)
	if nil != err {
		return fault.Wrap("create vault", err)
	}

	doc := &vaultDocument{
		Version: documentVersion,
		Salt:    salt,
		Check:   check,
	}
	err = writeVaultDocument(v.directory, doc)
	if nil != err {
		_ = os.RemoveAll(v.directory)
		return err
	}

	v.key = key
	v.keys = make(map[address.Address]*keyDocument)
	v.open = true
	return nil
}

// OpenVault - unlock a vault and load its keys
func (d *Disk) OpenVault(name string, password string) error {
	if RootVault == name {
		return nil
	}
	v, err := d.lockVault(name)
	if nil != err {
		return err
	}
	defer v.Unlock()

	if v.open {
		return nil
	}

	doc, err := readVaultDocument(v.directory)
	if nil != err {
		return err
	}

	key := d.kdf.generateKey(password, doc.Salt)
	check, err := decryptData(doc.Check, key)
	if nil != err {
		return err
	}
	if checkText != string(check) {
		return fault.KeyFileCorrupt
	}

	v.key = key
	err = v.load(d.log)
	if nil != err {
		v.key = nil
		v.keys = nil
		return err
	}
	v.meta = doc.Meta
	v.open = true

	d.log.Infof("opened vault: %q  accounts: %d", name, len(v.keys))
	return nil
}

// CloseVault - forget a vault's key, its files are untouched
func (d *Disk) CloseVault(name string) error {
	if RootVault == name {
		return fault.InvalidVaultName
	}
	v, err := d.lockVault(name)
	if nil != err {
		return err
	}
	defer v.Unlock()

	if v.open {
		v.open = false
		v.key = nil
		v.keys = nil
		d.log.Infof("closed vault: %q", name)
	}
	return nil
}

// ChangeVaultPassword - reseal every key file under a new vault key
func (d *Disk) ChangeVaultPassword(name string, newPassword string) error {
	if RootVault == name {
		return fault.InvalidVaultName
	}
	if _, err := d.getVault(name); nil != err {
		return err
	}

	salt, key, err := d.kdf.hashPassword(newPassword)
	if nil != err {
		return err
	}
	check, err := encryptData([]byte(checkText), key)
	if nil != err {
		return err
	}

	v, err := d.lockVault(name)
	if nil != err {
		return err
	}
	defer v.Unlock()

	if !v.open {
		return fault.VaultLocked
	}

	doc, err := readVaultDocument(v.directory)
	if nil != err {
		return err
	}

	// stage all key files first so a failure leaves the old set intact
	staged := make([]string, 0, len(v.keys))
	unstage := func() {
		for _, filename := range staged {
			_ = os.Remove(filename + stagedFileSuffix)
		}
	}
	for _, keyDoc := range v.keys {
		buffer, err := encodeKeyDocument(keyDoc, key)
		if nil != err {
			unstage()
			return err
		}
		filename := v.filename(keyDoc.UUID)
		err = writeFile(filename+stagedFileSuffix, buffer)
		if nil != err {
			unstage()
			return err
		}
		staged = append(staged, filename)
	}

	doc.Salt = salt
	doc.Check = check
	err = writeVaultDocument(v.directory, doc)
	if nil != err {
		unstage()
		return err
	}

	for _, filename := range staged {
		err := os.Rename(filename+stagedFileSuffix, filename)
		if nil != err {
			d.log.Criticalf("vault: %q  key file: %q  rename error: %s", name, filename, err)
			return fault.Wrap("rename key file", err)
		}
	}

	v.key = key
	d.log.Infof("changed password of vault: %q", name)
	return nil
}

// Vaults - names of all named vaults, rescanning the keystore
func (d *Disk) Vaults() ([]string, error) {
	entries, err := ioutil.ReadDir(d.directory)
	if nil != err {
		return nil, fault.Wrap("read keystore", err)
	}

	d.Lock()
	defer d.Unlock()

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || nil != CheckVaultName(name) {
			continue
		}
		if _, ok := d.vaults[name]; ok {
			continue
		}
		directory := filepath.Join(d.directory, name)
		doc, err := readVaultDocument(directory)
		if nil != err {
			d.log.Debugf("skip directory: %q  error: %s", directory, err)
			continue
		}
		d.vaults[name] = &vaultState{
			name:      name,
			directory: directory,
			meta:      doc.Meta,
		}
		d.log.Debugf("found vault: %q", name)
	}

	names := make([]string, 0, len(d.vaults))
	for name := range d.vaults {
		if RootVault != name {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// VaultMeta - the plaintext meta stored with a vault
func (d *Disk) VaultMeta(name string) (string, error) {
	if RootVault == name {
		return "", fault.InvalidVaultName
	}
	v, err := d.lockVault(name)
	if nil != err {
		return "", err
	}
	defer v.Unlock()

	return v.meta, nil
}

// SetVaultMeta - replace the meta stored with a vault
func (d *Disk) SetVaultMeta(name string, meta string) error {
	if RootVault == name {
		return fault.InvalidVaultName
	}
	v, err := d.lockVault(name)
	if nil != err {
		return err
	}
	defer v.Unlock()

	doc, err := readVaultDocument(v.directory)
	if nil != err {
		return err
	}
	doc.Meta = meta
	err = writeVaultDocument(v.directory, doc)
	if nil != err {
		return err
	}
	v.meta = meta
	return nil
}

// NewAccount - generate a key inside an open vault
//
// the seed is sealed before the vault is locked
func (d *Disk) NewAccount(vault string, password string) (KeyInfo, error) {
	v, err := d.lockOpenVault(vault)
	if nil != err {
		return KeyInfo{}, err
	}
	v.Unlock()

	doc, err := d.kdf.newKeyDocument(uuid.New().String(), password)
	if nil != err {
		return KeyInfo{}, err
	}

	v, err = d.lockOpenVault(vault)
	if nil != err {
		return KeyInfo{}, err
	}
	defer v.Unlock()

	buffer, err := encodeKeyDocument(doc, v.key)
	if nil != err {
		return KeyInfo{}, err
	}
	err = createFile(v.filename(doc.UUID), buffer)
	if nil != err {
		return KeyInfo{}, err
	}
	v.keys[doc.Address] = doc

	d.log.Infof("vault: %q  new account: %s", vault, doc.Address)
	return v.info(doc), nil
}

// Accounts - keys of an open vault in address order
func (d *Disk) Accounts(vault string) ([]KeyInfo, error) {
	v, err := d.lockOpenVault(vault)
	if nil != err {
		return nil, err
	}
	defer v.Unlock()

	list := make([]KeyInfo, 0, len(v.keys))
	for _, doc := range v.keys {
		list = append(list, v.info(doc))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Address.Less(list[j].Address)
	})
	return list, nil
}

// RemoveAccount - delete a key file after checking its password
func (d *Disk) RemoveAccount(vault string, addr address.Address, password string) error {
	v, doc, err := d.checkedKey(vault, addr, password)
	if nil != err {
		return err
	}
	defer v.Unlock()

	err = os.Remove(v.filename(doc.UUID))
	if nil != err && !os.IsNotExist(err) {
		return fault.Wrap("remove key file", err)
	}
	delete(v.keys, addr)

	d.log.Infof("vault: %q  removed account: %s", vault, addr)
	return nil
}

// MoveAccount - transfer a key file between two open vaults
func (d *Disk) MoveAccount(addr address.Address, from string, to string) error {
	source, err := d.getVault(from)
	if nil != err {
		return err
	}
	destination, err := d.getVault(to)
	if nil != err {
		return err
	}

	if source == destination {
		source.Lock()
		defer source.Unlock()
		if err := source.usable(); nil != err {
			return err
		}
		if _, ok := source.keys[addr]; !ok {
			return fault.UnknownAccount
		}
		return nil
	}

	// fixed order so two opposite moves cannot deadlock
	first, second := source, destination
	if first.name > second.name {
		first, second = second, first
	}
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	if err := source.usable(); nil != err {
		return err
	}
	if err := destination.usable(); nil != err {
		return err
	}

	doc, ok := source.keys[addr]
	if !ok {
		return fault.UnknownAccount
	}

	buffer, err := encodeKeyDocument(doc, destination.key)
	if nil != err {
		return err
	}
	err = createFile(destination.filename(doc.UUID), buffer)
	if nil != err {
		return err
	}
	err = os.Remove(source.filename(doc.UUID))
	if nil != err && !os.IsNotExist(err) {
		_ = os.Remove(destination.filename(doc.UUID))
		return fault.Wrap("remove key file", err)
	}

	delete(source.keys, addr)
	destination.keys[addr] = doc

	d.log.Infof("moved account: %s  from vault: %q  to vault: %q", addr, from, to)
	return nil
}

// TestPassword - check an account password
func (d *Disk) TestPassword(vault string, addr address.Address, password string) (bool, error) {
	doc, err := d.snapshot(vault, addr)
	if nil != err {
		return false, err
	}

	_, err = d.kdf.seed(doc, password)
	if fault.WrongPassword == err {
		return false, nil
	}
	if nil != err {
		return false, err
	}
	return true, nil
}

// ChangeAccountPassword - re-encrypt a seed under a new password
func (d *Disk) ChangeAccountPassword(vault string, addr address.Address, oldPassword string, newPassword string) error {
	for {
		doc, err := d.snapshot(vault, addr)
		if nil != err {
			return err
		}
		seed, err := d.kdf.seed(doc, oldPassword)
		if nil != err {
			return err
		}
		replacement := *doc
		err = d.kdf.setSeed(&replacement, seed, newPassword)
		if nil != err {
			return err
		}

		v, err := d.lockOpenVault(vault)
		if nil != err {
			return err
		}
		current, ok := v.keys[addr]
		if !ok {
			v.Unlock()
			return fault.UnknownAccount
		}
		if current != doc {
			v.Unlock()
			continue
		}

		err = v.replaceKey(&replacement)
		v.Unlock()
		if nil != err {
			return err
		}

		d.log.Infof("vault: %q  changed password of account: %s", vault, addr)
		return nil
	}
}

// write a resealed key document over its file, the vault is locked
func (v *vaultState) replaceKey(doc *keyDocument) error {
	buffer, err := encodeKeyDocument(doc, v.key)
	if nil != err {
		return err
	}
	err = writeFile(v.filename(doc.UUID), buffer)
	if nil != err {
		return err
	}
	v.keys[doc.Address] = doc
	return nil
}

// the current key document of an account, the vault is not held
//
// documents are never modified in place so they can be read unlocked
func (d *Disk) snapshot(vault string, addr address.Address) (*keyDocument, error) {
	v, err := d.lockOpenVault(vault)
	if nil != err {
		return nil, err
	}
	doc, ok := v.keys[addr]
	v.Unlock()

	if !ok {
		return nil, fault.UnknownAccount
	}
	return doc, nil
}

// check a password without holding the vault, then lock the vault
// and confirm the checked document is still current
//
// the vault is locked only on a nil error
func (d *Disk) checkedKey(vault string, addr address.Address, password string) (*vaultState, *keyDocument, error) {
	for {
		doc, err := d.snapshot(vault, addr)
		if nil != err {
			return nil, nil, err
		}
		_, err = d.kdf.seed(doc, password)
		if nil != err {
			return nil, nil, err
		}

		v, err := d.lockOpenVault(vault)
		if nil != err {
			return nil, nil, err
		}
		current, ok := v.keys[addr]
		if !ok {
			v.Unlock()
			return nil, nil, fault.UnknownAccount
		}
		if current == doc {
			return v, doc, nil
		}
		v.Unlock()
	}
}

// find a vault, the map lock is not held on return
func (d *Disk) getVault(name string) (*vaultState, error) {
	d.RLock()
	v, ok := d.vaults[name]
	d.RUnlock()
	if !ok {
		return nil, fault.VaultNotFound
	}
	return v, nil
}

// find and lock a vault
func (d *Disk) lockVault(name string) (*vaultState, error) {
	v, err := d.getVault(name)
	if nil != err {
		return nil, err
	}
	v.Lock()
	if v.removed {
		v.Unlock()
		return nil, fault.VaultNotFound
	}
	return v, nil
}

// find and lock a vault that must be open
func (d *Disk) lockOpenVault(name string) (*vaultState, error) {
	v, err := d.lockVault(name)
	if nil != err {
		return nil, err
	}
	if !v.open {
		v.Unlock()
		return nil, fault.VaultLocked
	}
	return v, nil
}

// check a locked vault can be used
func (v *vaultState) usable() error {
	if v.removed {
		return fault.VaultNotFound
	}
	if !v.open {
		return fault.VaultLocked
	}
	return nil
}

// load all key files of a vault, the key must already be set
func (v *vaultState) load(log *logger.L) error {
	files, err := keyFiles(v.directory)
	if nil != err {
		return err
	}

	keys := make(map[address.Address]*keyDocument, len(files))
	for _, filename := range files {
		buffer, err := ioutil.ReadFile(filename)
		if nil != err {
			return fault.Wrap("read key file", err)
		}
		doc, err := decodeKeyDocument(buffer, v.key)
		if nil != err {
			log.Errorf("vault: %q  key file: %q  error: %s", v.name, filename, err)
			return err
		}
		keys[doc.Address] = doc
	}
	v.keys = keys
	return nil
}

func (v *vaultState) filename(id string) string {
	return filepath.Join(v.directory, id+keyFileSuffix)
}

func (v *vaultState) info(doc *keyDocument) KeyInfo {
	return KeyInfo{
		UUID:    doc.UUID,
		Address: doc.Address,
		Vault:   v.name,
	}
}
