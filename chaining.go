// Copyright 2026 The Probemap Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package probemap

import (
	"fmt"
	"strings"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Chaining is a map that resolves collisions by separate chaining: every
// array index holds a bucket of entries in insertion order. A bucket stays
// nil until the first key hashes to its index, and is reset to nil when its
// last entry is deleted, so empty indices cost no allocation. Deletion is
// local to a bucket and needs no tombstones.
type Chaining[K comparable, V any] struct {
	table
	hash    func(key K) uint64
	buckets [][]entry[K, V]
}

// NewChaining constructs an empty chaining map. If initialCapacity is not
// positive a small default is used. The maximum load factor defaults to 1.0
// and may be configured past it, at the cost of longer buckets.
func NewChaining[K comparable, V any](initialCapacity int, opts ...Option[K]) *Chaining[K, V] {
	cfg := newConfig(defaultChainingMaxLoad, opts)
	if initialCapacity <= 0 {
		initialCapacity = defaultInitialCapacity
	}
	return &Chaining[K, V]{
		table: table{
			capacity: initialCapacity,
			maxLoad:  cfg.maxLoad,
			growth:   cfg.growth,
		},
		hash:    cfg.hash,
		buckets: make([][]entry[K, V], initialCapacity),
	}
}

// home returns the bucket index for key.
func (m *Chaining[K, V]) home(key K) int {
	return int(m.hash(key) % uint64(m.capacity))
}

// Put inserts an entry into the map, overwriting the value in place if an
// entry with the same key already exists in the bucket. It never fails; the
// error return satisfies Map.
func (m *Chaining[K, V]) Put(key K, value V) error {
	i := m.home(key)
	b := m.buckets[i]
	for j := range b {
		if b[j].key == key {
			b[j].value = value
			return nil
		}
	}
	m.buckets[i] = append(b, entry[K, V]{key: key, value: value})
	m.elems++
	if m.overloaded() {
		m.grow()
	}
	return nil
}

// Get retrieves the value for key, failing with ErrKeyNotFound if key is
// absent.
func (m *Chaining[K, V]) Get(key K) (V, error) {
	b := m.buckets[m.home(key)]
	for j := range b {
		if b[j].key == key {
			return b[j].value, nil
		}
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Delete removes key's entry from its bucket, failing with ErrKeyNotFound if
// key is absent. Deleting the last entry resets the bucket to nil rather
// than retaining an allocated but empty slice.
func (m *Chaining[K, V]) Delete(key K) error {
	i := m.home(key)
	b := m.buckets[i]
	for j := range b {
		if b[j].key != key {
			continue
		}
		if len(b) == 1 {
			m.buckets[i] = nil
		} else {
			m.buckets[i] = append(b[:j], b[j+1:]...)
		}
		m.elems--
		return nil
	}
	return ErrKeyNotFound
}

// All calls yield for each entry in the map until yield returns false. The
// map must not be mutated during iteration.
func (m *Chaining[K, V]) All(yield func(key K, value V) bool) {
	for i := range m.buckets {
		for j := range m.buckets[i] {
			if !yield(m.buckets[i][j].key, m.buckets[i][j].value) {
				return
			}
		}
	}
}

// grow allocates a bucket array of capacity*growth and reinserts every
// entry. As with open addressing, a single growth step suffices.
func (m *Chaining[K, V]) grow() {
	next := Chaining[K, V]{
		table: table{
			capacity: m.capacity * m.growth,
			maxLoad:  m.maxLoad,
			growth:   m.growth,
		},
		hash:    m.hash,
		buckets: make([][]entry[K, V], m.capacity*m.growth),
	}
	if debug {
		fmt.Printf("grow: capacity=%d->%d elems=%d\n", m.capacity, next.capacity, m.elems)
	}
	for i := range m.buckets {
		for j := range m.buckets[i] {
			e := m.buckets[i][j]
			k := next.home(e.key)
			next.buckets[k] = append(next.buckets[k], e)
		}
	}
	next.elems = m.elems
	*m = next
}

func (m *Chaining[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "strategy=%s capacity=%d elems=%d\n", Chained, m.capacity, m.elems)
	for i := range m.buckets {
		if m.buckets[i] == nil {
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for j := range m.buckets[i] {
			fmt.Fprintf(&buf, " %v=%v", m.buckets[i][j].key, m.buckets[i][j].value)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
