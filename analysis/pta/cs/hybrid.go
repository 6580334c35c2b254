// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cs

// hybridMap maps the secondary keys of one primary key to their nodes.
//
// Most primary keys only ever see one secondary key (most variables are analyzed in a single context), so the map
// stores its first entry inline and only allocates a Go map when a second distinct key is inserted. The entries
// are never removed.
type hybridMap[K comparable, V any] struct {
	key   K
	value V
	// single is true when the inline entry is set and table is nil
	single bool
	table  map[K]V
}

func (h *hybridMap[K, V]) get(k K) (V, bool) {
	if h.table != nil {
		v, ok := h.table[k]
		return v, ok
	}
	if h.single && h.key == k {
		return h.value, true
	}
	var zero V
	return zero, false
}

// getOrCreate returns the value of k, calling create to build it if k is not in the map. promoted is true when
// the insertion moved the map from its inline entry to a table.
func (h *hybridMap[K, V]) getOrCreate(k K, create func() V) (v V, promoted bool) {
	if v, ok := h.get(k); ok {
		return v, false
	}
	v = create()
	switch {
	case h.table != nil:
		h.table[k] = v
	case !h.single:
		h.key, h.value, h.single = k, v, true
	default:
		h.table = make(map[K]V, 2)
		h.table[h.key] = h.value
		h.table[k] = v
		var zeroK K
		var zeroV V
		h.key, h.value, h.single = zeroK, zeroV, false
		promoted = true
	}
	return v, promoted
}

func (h *hybridMap[K, V]) len() int {
	if h.table != nil {
		return len(h.table)
	}
	if h.single {
		return 1
	}
	return 0
}

func (h *hybridMap[K, V]) promoted() bool {
	return h.table != nil
}

// forEach calls f on each entry until f returns false. The order of the entries is unspecified.
func (h *hybridMap[K, V]) forEach(f func(K, V) bool) {
	if h.table != nil {
		for k, v := range h.table {
			if !f(k, v) {
				return
			}
		}
		return
	}
	if h.single {
		f(h.key, h.value)
	}
}

// getOrCreateCS returns the node for (k1, k2) in m, creating the secondary map of k1 and the node as needed.
func getOrCreateCS[K1, K2 comparable, V any](m map[K1]*hybridMap[K2, V], k1 K1, k2 K2,
	create func() V) (V, bool) {
	h, ok := m[k1]
	if !ok {
		h = &hybridMap[K2, V]{}
		m[k1] = h
	}
	return h.getOrCreate(k2, create)
}

func lookupCS[K1, K2 comparable, V any](m map[K1]*hybridMap[K2, V], k1 K1, k2 K2) (V, bool) {
	if h, ok := m[k1]; ok {
		return h.get(k2)
	}
	var zero V
	return zero, false
}
