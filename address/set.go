// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"sort"
)

// Set - a set of addresses enumerated in byte order
type Set map[Address]struct{}

// NewSet - create a set from a list, duplicates are dropped
func NewSet(addresses ...Address) Set {
	s := make(Set, len(addresses))
	for _, a := range addresses {
		s[a] = struct{}{}
	}
	return s
}

// Add - insert an address
func (s Set) Add(a Address) {
	s[a] = struct{}{}
}

// Has - check membership
func (s Set) Has(a Address) bool {
	_, ok := s[a]
	return ok
}

// Sorted - the members in byte order
func (s Set) Sorted() []Address {
	list := make([]Address, 0, len(s))
	for a := range s {
		list = append(list, a)
	}
	Sort(list)
	return list
}

// Intersect - members of s that are also in t
func (s Set) Intersect(t Set) Set {
	result := make(Set)
	for a := range s {
		if t.Has(a) {
			result[a] = struct{}{}
		}
	}
	return result
}

// Sort - order a list of addresses in place
func Sort(list []Address) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Less(list[j])
	})
}

// Unique - sorted copy of a list without duplicates
func Unique(list []Address) []Address {
	return NewSet(list...).Sorted()
}
