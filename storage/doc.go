// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk bookkeeping store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix
// 2. ++           = concatenation of byte data
// 3. address      = 20 byte account address
// 4. dapp         = dapp id as UTF-8 bytes
// 5. values are JSON documents
//
// Address book:
//
//   A ++ address               - address book entry without key material
//                                data: {"name": ..., "meta": ...}
//
// Key-backed accounts:
//
//   K ++ address               - bookkeeping for an account held by the secret store
//                                data: {"name": ..., "meta": ..., "vault": ...}
//
// Dapps:
//
//   D ++ dapp                  - explicit address grant
//                                data: ["0x...", ...]
//   W ++ 0x00                  - new dapps whitelist (absent = unrestricted)
//                                data: ["0x...", ...]
//   R ++ dapp                  - recent use counter
//                                data: count
package storage
