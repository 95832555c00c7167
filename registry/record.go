// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/json"

	"github.com/bitmark-inc/accountd/address"
	"github.com/bitmark-inc/accountd/fault"
)

// decode a stored key/value pair
func decodeRecord(key []byte, value []byte) (address.Address, *record, error) {
	addr, err := address.FromBytes(key)
	if nil != err {
		return addr, nil, fault.Wrap("decode record key", err)
	}
	rec := &record{}
	err = json.Unmarshal(value, rec)
	if nil != err {
		return addr, nil, fault.Wrap("decode record", err)
	}
	return addr, rec, nil
}
