// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dapps

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/storage"
)

// key of the single whitelist record
var whitelistKey = []byte{0x00}

// records read per step when listing the use counters
const recentPageSize = 64

// Manager - dapp permission state
//
// explicit grants and the new dapps whitelist are independent, an
// absent grant differs from an empty one; all state is read through
// the database cache, the lock keeps a cache fill from racing a write
type Manager struct {
	sync.RWMutex

	log   *logger.L
	pools *storage.Pools
}

// New - create a manager and check stored state
func New(log *logger.L, pools *storage.Pools) (*Manager, error) {
	if nil == log || nil == pools {
		return nil, fault.InvalidParameters
	}

	m := &Manager{
		log:   log,
		pools: pools,
	}

	err := m.check()
	if nil != err {
		return nil, err
	}
	return m, nil
}

// decode every stored record once so corruption is found at startup
func (m *Manager) check() error {
	grants := 0
	err := m.pools.DappAddresses.NewFetchCursor().Map(func(key []byte, value []byte) error {
		var list []address.Address
		err := json.Unmarshal(value, &list)
		if nil != err {
			return fault.Wrap("decode dapp addresses", err)
		}
		grants += 1
		return nil
	})
	if nil != err {
		return err
	}

	_, restricted := m.NewDappsWhitelist()

	recent, err := m.recentDapps()
	if nil != err {
		return err
	}

	m.log.Infof("loaded dapps: %d  recent: %d  whitelist: %t", grants, len(recent), restricted)
	return nil
}

// SetDappAddresses - replace the explicit grant of a dapp
func (m *Manager) SetDappAddresses(dapp string, addresses []address.Address) {
	list := address.Unique(addresses)

	m.Lock()
	defer m.Unlock()

	m.pools.DappAddresses.PutJSON([]byte(dapp), list)
	m.log.Debugf("dapp: %q  addresses: %d", dapp, len(list))
}

// DappAddresses - the explicit grant of a dapp, empty if none
func (m *Manager) DappAddresses(dapp string) []address.Address {
	m.RLock()
	defer m.RUnlock()

	var list []address.Address
	if !m.pools.DappAddresses.GetJSON([]byte(dapp), &list) {
		return []address.Address{}
	}
	return address.Unique(list)
}

// HasDappAddresses - check if a dapp has an explicit grant
func (m *Manager) HasDappAddresses(dapp string) bool {
	m.RLock()
	defer m.RUnlock()

	return m.pools.DappAddresses.Has([]byte(dapp))
}

// SetNewDappsWhitelist - nil removes the restriction, an empty list
// hides everything
func (m *Manager) SetNewDappsWhitelist(addresses *[]address.Address) {
	m.Lock()
	defer m.Unlock()

	if nil == addresses {
		m.pools.Whitelist.Delete(whitelistKey)
		m.log.Debug("whitelist: unrestricted")
		return
	}

	list := address.Unique(*addresses)
	m.pools.Whitelist.PutJSON(whitelistKey, list)
	m.log.Debugf("whitelist: %d addresses", len(list))
}

// NewDappsWhitelist - the whitelist, false when unrestricted
func (m *Manager) NewDappsWhitelist() ([]address.Address, bool) {
	m.RLock()
	defer m.RUnlock()

	var list []address.Address
	if !m.pools.Whitelist.GetJSON(whitelistKey, &list) {
		return nil, false
	}
	return address.Unique(list), true
}

// NoteDappUsed - count one use of a dapp
func (m *Manager) NoteDappUsed(dapp string) {
	m.Lock()
	defer m.Unlock()

	n, _ := m.pools.RecentDapps.GetN([]byte(dapp))
	m.pools.RecentDapps.PutN([]byte(dapp), n+1)
}

// RecentDapps - snapshot of the use counters
func (m *Manager) RecentDapps() map[string]uint64 {
	m.RLock()
	defer m.RUnlock()

	result, err := m.recentDapps()
	if nil != err {
		m.log.Errorf("read recent dapps error: %s", err)
	}
	return result
}

func (m *Manager) recentDapps() (map[string]uint64, error) {
	result := make(map[string]uint64)
	cursor := m.pools.RecentDapps.NewFetchCursor()
	for {
		elements, err := cursor.Fetch(recentPageSize)
		if nil != err {
			return result, err
		}
		if 0 == len(elements) {
			return result, nil
		}
		for _, e := range elements {
			if len(e.Value) < 8 {
				return result, fault.KeyFileCorrupt
			}
			result[string(e.Key)] = binary.BigEndian.Uint64(e.Value[:8])
		}
	}
}
