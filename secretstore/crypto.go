// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package secretstore

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/bitmark-inc/accountd/fault"
)

const (
	saltSize  = 16
	keySize   = 32
	nonceSize = 24
)

// KDF - argon2id cost parameters
type KDF struct {
	Time    uint32 `gluamapper:"time" json:"time"`
	Memory  uint32 `gluamapper:"memory" json:"memory"`
	Threads uint8  `gluamapper:"threads" json:"threads"`
}

// DefaultKDF - interactive cost
var DefaultKDF = KDF{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
}

// Salt - random KDF input
type Salt [saltSize]byte

// makeSalt - fresh random salt
func makeSalt() (Salt, error) {
	var salt Salt
	if _, err := io.ReadFull(rand.Reader, salt[:]); nil != err {
		return salt, fault.Wrap("make salt", err)
	}
	return salt, nil
}

// Bytes - salt as a byte slice
func (salt Salt) Bytes() []byte {
	return salt[:]
}

// MarshalText - convert salt to hex text
func (salt Salt) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(saltSize))
	hex.Encode(buffer, salt[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a salt
func (salt *Salt) UnmarshalText(s []byte) error {
	buffer := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(buffer, s)
	if nil != err || saltSize != byteCount {
		return fault.KeyFileCorrupt
	}
	copy(salt[:], buffer)
	return nil
}

// generateKey - derive a secretbox key from a password
func (kdf KDF) generateKey(password string, salt Salt) *[keySize]byte {
	hash := argon2.IDKey([]byte(password), salt[:], kdf.Time, kdf.Memory, kdf.Threads, keySize)

	var secretKey [keySize]byte
	copy(secretKey[:], hash)
	return &secretKey
}

// hashPassword - new salt and its derived key
func (kdf KDF) hashPassword(password string) (Salt, *[keySize]byte, error) {
	salt, err := makeSalt()
	if nil != err {
		return salt, nil, err
	}
	return salt, kdf.generateKey(password, salt), nil
}

// encryptData - seal data and convert to hex, the nonce is prepended
func encryptData(data []byte, secretKey *[keySize]byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); nil != err {
		return "", fault.CryptoFailed
	}

	ciphertext := secretbox.Seal(nonce[:], data, &nonce, secretKey)
	return hex.EncodeToString(ciphertext), nil
}

// decryptData - open hex ciphertext produced by encryptData
//
// authentication failure is reported as WrongPassword since the key
// was derived from a password
func decryptData(ciphertext string, secretKey *[keySize]byte) ([]byte, error) {
	encrypted, err := hex.DecodeString(ciphertext)
	if nil != err || len(encrypted) <= nonceSize {
		return nil, fault.KeyFileCorrupt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], encrypted[:nonceSize])

	decrypted, ok := secretbox.Open(nil, encrypted[nonceSize:], &nonce, secretKey)
	if !ok {
		return nil, fault.WrongPassword
	}
	return decrypted, nil
}
