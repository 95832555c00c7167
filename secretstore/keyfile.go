// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secretstore

import (
	"crypto/rand"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
)

const (
	keyFileSuffix   = ".json"
	vaultFileName   = "vault.json"
	tempFileSuffix  = ".tmp"
	documentVersion = 1

	// plaintext sealed in vault.json to verify a vault password
	checkText = "accountd vault password check..."
)

// keyDocument - one account's key, the seed is encrypted under a key
// derived from the account password
type keyDocument struct {
	Version int             `json:"version"`
	UUID    string          `json:"uuid"`
	Address address.Address `json:"address"`
	Salt    Salt            `json:"salt"`
	Seed    string          `json:"seed"`
}

// sealedDocument - a keyDocument inside a named vault, encrypted again
// under the vault key so a closed vault reveals nothing
type sealedDocument struct {
	Version int    `json:"version"`
	Data    string `json:"data"`
}

// vaultDocument - vault.json
type vaultDocument struct {
	Version int    `json:"version"`
	Salt    Salt   `json:"salt"`
	Check   string `json:"check"`
	Meta    string `json:"meta"`
}

// newKeyDocument - generate a fresh ed25519 key
func (kdf KDF) newKeyDocument(uuid string, password string) (*keyDocument, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, fault.Wrap("generate key", err)
	}

	doc := &keyDocument{
		Version: documentVersion,
		UUID:    uuid,
		Address: address.FromPublicKey(publicKey),
	}
	err = kdf.setSeed(doc, privateKey.Seed(), password)
	if nil != err {
		return nil, err
	}
	return doc, nil
}

// setSeed - encrypt a seed under a new salt
func (kdf KDF) setSeed(doc *keyDocument, seed []byte, password string) error {
	salt, key, err := kdf.hashPassword(password)
	if nil != err {
		return err
	}
	encrypted, err := encryptData(seed, key)
	if nil != err {
		return err
	}
	doc.Salt = salt
	doc.Seed = encrypted
	return nil
}

// seed - decrypt the seed, WrongPassword if the password does not match
func (kdf KDF) seed(doc *keyDocument, password string) ([]byte, error) {
	key := kdf.generateKey(password, doc.Salt)
	seed, err := decryptData(doc.Seed, key)
	if nil != err {
		return nil, err
	}
	if ed25519.SeedSize != len(seed) {
		return nil, fault.KeyFileCorrupt
	}

	// the seed must regenerate the stored address
	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)
	if address.FromPublicKey(publicKey) != doc.Address {
		return nil, fault.KeyFileCorrupt
	}
	return seed, nil
}

// encode a key document, sealing it when a vault key is given
func encodeKeyDocument(doc *keyDocument, vaultKey *[keySize]byte) ([]byte, error) {
	buffer, err := json.Marshal(doc)
	if nil != err {
		return nil, fault.Wrap("encode key", err)
	}
	if nil == vaultKey {
		return buffer, nil
	}

	data, err := encryptData(buffer, vaultKey)
	if nil != err {
		return nil, err
	}
	sealed := sealedDocument{
		Version: documentVersion,
		Data:    data,
	}
	buffer, err = json.Marshal(sealed)
	if nil != err {
		return nil, fault.Wrap("encode sealed key", err)
	}
	return buffer, nil
}

// decode a key document, unsealing it when a vault key is given
func decodeKeyDocument(buffer []byte, vaultKey *[keySize]byte) (*keyDocument, error) {
	if nil != vaultKey {
		var sealed sealedDocument
		err := json.Unmarshal(buffer, &sealed)
		if nil != err {
			return nil, fault.KeyFileCorrupt
		}
		buffer, err = decryptData(sealed.Data, vaultKey)
		if nil != err {
			return nil, fault.KeyFileCorrupt
		}
	}

	doc := &keyDocument{}
	err := json.Unmarshal(buffer, doc)
	if nil != err || "" == doc.UUID {
		return nil, fault.KeyFileCorrupt
	}
	return doc, nil
}

// keyFiles - names of the key files in a directory
func keyFiles(directory string) ([]string, error) {
	entries, err := ioutil.ReadDir(directory)
	if nil != err {
		return nil, fault.Wrap("read directory", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || vaultFileName == name || !strings.HasSuffix(name, keyFileSuffix) {
			continue
		}
		names = append(names, filepath.Join(directory, name))
	}
	return names, nil
}

// readVaultDocument - load vault.json from a vault directory
func readVaultDocument(directory string) (*vaultDocument, error) {
	buffer, err := ioutil.ReadFile(filepath.Join(directory, vaultFileName))
	if nil != err {
		if os.IsNotExist(err) {
			return nil, fault.VaultNotFound
		}
		return nil, fault.Wrap("read vault", err)
	}
	doc := &vaultDocument{}
	err = json.Unmarshal(buffer, doc)
	if nil != err {
		return nil, fault.KeyFileCorrupt
	}
	return doc, nil
}

// writeVaultDocument - replace vault.json
func writeVaultDocument(directory string, doc *vaultDocument) error {
	buffer, err := json.MarshalIndent(doc, "", "  ")
	if nil != err {
		return fault.Wrap("encode vault", err)
	}
	return writeFile(filepath.Join(directory, vaultFileName), buffer)
}

// writeFile - write to a temporary name then rename into place so a
// reader never sees a partial file
func writeFile(filename string, buffer []byte) error {
	temp := filename + tempFileSuffix
	err := ioutil.WriteFile(temp, buffer, 0600)
	if nil != err {
		return fault.Wrap("write file", err)
	}
	err = os.Rename(temp, filename)
	if nil != err {
		_ = os.Remove(temp)
		return fault.Wrap("rename file", err)
	}
	return nil
}

// createFile - write a file that must not already exist
func createFile(filename string, buffer []byte) error {
	if _, err := os.Stat(filename); nil == err {
		return fault.KeyFileAlreadyExists
	}
	return writeFile(filename, buffer)
}
