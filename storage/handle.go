// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - access to one prefixed table
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *Database
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		logger.Panic("pool.Put nil database")
		return
	}
	prefixedKey := p.prefixKey(key)
	err := p.database.db.Put(prefixedKey, value, nil)
	logger.PanicIfError("pool.Put", err)

	stored := make([]byte, len(value))
	copy(stored, value)
	p.database.cache.Set(dbPut, string(prefixedKey), stored)
}

// PutN - store a big endian uint64
func (p *PoolHandle) PutN(key []byte, n uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	p.Put(key, buffer)
}

// PutJSON - store a value as JSON
func (p *PoolHandle) PutJSON(key []byte, value interface{}) {
	buffer, err := json.Marshal(value)
	logger.PanicIfError("pool.PutJSON", err)
	p.Put(key, buffer)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		logger.Panic("pool.Delete nil database")
		return
	}
	prefixedKey := p.prefixKey(key)
	err := p.database.db.Delete(prefixedKey, nil)
	logger.PanicIfError("pool.Delete", err)

	p.database.cache.Set(dbDelete, string(prefixedKey), nil)
}

// Get - read a value for a given key
//
// this returns a copy, nil if the key was not found
func (p *PoolHandle) Get(key []byte) []byte {
	p.database.RLock()
	defer p.database.RUnlock()
	if nil == p.database.db {
		return nil
	}

	prefixedKey := p.prefixKey(key)
	if value, present, cached := p.database.cache.Get(string(prefixedKey)); cached {
		if !present {
			return nil
		}
		result := make([]byte, len(value))
		copy(result, value)
		return result
	}

	value, err := p.database.db.Get(prefixedKey, nil)
	if leveldb.ErrNotFound == err {
		p.database.cache.Set(dbDelete, string(prefixedKey), nil)
		return nil
	}
	logger.PanicIfError("pool.Get", err)

	stored := make([]byte, len(value))
	copy(stored, value)
	p.database.cache.Set(dbPut, string(prefixedKey), stored)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("pool.GetN truncated record for: %x: %s", key, buffer)
	}
	n := binary.BigEndian.Uint64(buffer[:8])
	return n, true
}

// GetJSON - read and decode a JSON record
//
// returns false if record was not found
// panics if the record cannot be decoded
func (p *PoolHandle) GetJSON(key []byte, value interface{}) bool {
	buffer := p.Get(key)
	if nil == buffer {
		return false
	}
	err := json.Unmarshal(buffer, value)
	logger.PanicIfError("pool.GetJSON", err)
	return true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	return nil != p.Get(key)
}
