// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"bytes"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/accountd/fault"
)

// Length - number of bytes in an address
const Length = 20

// text prefix
const prefix = "0x"

// Address - fixed width account identifier
type Address [Length]byte

// FromPublicKey - last 20 bytes of the Keccak-256 of the public key
func FromPublicKey(publicKey ed25519.PublicKey) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(publicKey)
	digest := h.Sum(nil)

	var a Address
	copy(a[:], digest[len(digest)-Length:])
	return a
}

// FromBytes - copy a 20 byte slice into an address
func FromBytes(buffer []byte) (Address, error) {
	var a Address
	if Length != len(buffer) {
		return a, fault.InvalidParameters
	}
	copy(a[:], buffer)
	return a, nil
}

// FromHex - convert hex text (optional 0x prefix) into an address
func FromHex(s string) (Address, error) {
	var a Address

	if strings.HasPrefix(s, prefix) || strings.HasPrefix(s, "0X") {
		s = s[len(prefix):]
	}
	if 2*Length != len(s) {
		return a, fault.InvalidParameters
	}

	n, err := hex.Decode(a[:], []byte(s))
	if nil != err || Length != n {
		return Address{}, fault.InvalidParameters
	}
	return a, nil
}

// Bytes - address as a byte slice
func (a Address) Bytes() []byte {
	return a[:]
}

// String - 0x prefixed lowercase hex
func (a Address) String() string {
	return prefix + hex.EncodeToString(a[:])
}

// IsZero - check for the all zero address
func (a Address) IsZero() bool {
	return a == Address{}
}

// Compare - byte order comparison, result as bytes.Compare
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// Less - byte order
func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

// MarshalText - convert an address to its hex text form
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - convert hex text into an address
func (a *Address) UnmarshalText(s []byte) error {
	b, err := FromHex(string(s))
	if nil != err {
		return err
	}
	*a = b
	return nil
}
