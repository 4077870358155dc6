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

	"github.com/cockroachdb/errors"
)

// slotState tags one position of the open-addressing backing array. The
// three states are exhaustive: a slot is either never-occupied (or cleared
// by a grow), holding a live entry, or a marker left by a deletion.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotFull
	slotTombstone
)

type slot[K comparable, V any] struct {
	state slotState
	key   K
	value V
}

// OpenAddr is a map that resolves collisions by open addressing: every array
// index holds a single slot, and colliding keys are shifted along a probe
// sequence. The probe strategy is fixed at construction to either linear or
// quadratic probing; everything else is shared between the two.
//
// Deleted entries leave tombstones behind so that probe sequences passing
// through them stay intact. Tombstones are reclaimed by later inserts and
// purged wholesale when the table grows.
type OpenAddr[K comparable, V any] struct {
	table
	strategy Strategy
	hash     func(key K) uint64
	slots    []slot[K, V]
}

// NewLinear constructs an empty map using linear probing. If initialCapacity
// is not positive a small default is used. The maximum load factor defaults
// to 0.6 and must be kept below 1.0.
func NewLinear[K comparable, V any](initialCapacity int, opts ...Option[K]) *OpenAddr[K, V] {
	return newOpenAddr[K, V](LinearProbing, initialCapacity, opts)
}

// NewQuadratic constructs an empty map using quadratic (triangular-number)
// probing. If initialCapacity is not positive a small default is used. The
// maximum load factor defaults to 0.6 and must be kept below 1.0.
//
// Quadratic probe sequences are only guaranteed to reach every slot when the
// capacity is a power of two, so initial capacities that preserve that shape
// under the growth factor are the safe choice.
func NewQuadratic[K comparable, V any](initialCapacity int, opts ...Option[K]) *OpenAddr[K, V] {
	return newOpenAddr[K, V](QuadraticProbing, initialCapacity, opts)
}

func newOpenAddr[K comparable, V any](strategy Strategy, initialCapacity int, opts []Option[K]) *OpenAddr[K, V] {
	cfg := newConfig(defaultOpenAddrMaxLoad, opts)
	if initialCapacity <= 0 {
		initialCapacity = defaultInitialCapacity
	}
	return &OpenAddr[K, V]{
		table: table{
			capacity: initialCapacity,
			maxLoad:  cfg.maxLoad,
			growth:   cfg.growth,
		},
		strategy: strategy,
		hash:     cfg.hash,
		slots:    make([]slot[K, V], initialCapacity),
	}
}

// home returns the first candidate index for key.
func (m *OpenAddr[K, V]) home(key K) int {
	return int(m.hash(key) % uint64(m.capacity))
}

// Put inserts an entry into the map, overwriting the value in place if an
// entry with the same key already exists. Overwrites do not change Len and
// never trigger growth.
func (m *OpenAddr[K, V]) Put(key K, value V) error {
	if err := m.put(key, value); err != nil {
		return err
	}
	// The growth check runs after the insert has landed, so the load factor
	// may momentarily exceed the configured maximum.
	if m.overloaded() {
		return m.grow()
	}
	return nil
}

// put walks the probe sequence from key's home index. The first tombstone
// seen is remembered as the preferred insertion point, but the walk must
// continue past it: an entry for key may live further along the sequence,
// shifted there by an earlier collision, and stopping at the tombstone would
// insert a duplicate. Only an empty slot (or sequence exhaustion) proves the
// key absent.
func (m *OpenAddr[K, V]) put(key K, value V) error {
	seq := makeProbeSeq(m.strategy, m.home(key), m.capacity)
	if debug {
		fmt.Printf("put(%v): %s\n", key, seq)
	}

	reuse := -1
	for n := 0; n < m.capacity; n++ {
		s := &m.slots[seq.offset]
		switch s.state {
		case slotFull:
			if s.key == key {
				s.value = value
				return nil
			}
		case slotTombstone:
			if reuse < 0 {
				reuse = seq.offset
			}
		case slotEmpty:
			i := seq.offset
			if reuse >= 0 {
				i = reuse
				m.tombstones--
			}
			m.slots[i] = slot[K, V]{state: slotFull, key: key, value: value}
			m.elems++
			return nil
		}
		seq = seq.next()
	}

	// The sequence is exhausted, so the key is provably not in the table.
	// A remembered tombstone is still a valid home for it.
	if reuse >= 0 {
		m.slots[reuse] = slot[K, V]{state: slotFull, key: key, value: value}
		m.tombstones--
		m.elems++
		return nil
	}
	return errors.Wrapf(ErrTableFull, "%s probe of %d slots", m.strategy, m.capacity)
}

// Get retrieves the value for key, failing with ErrKeyNotFound if key is
// absent. Tombstones are skipped; an empty slot terminates the search early
// because no insert ever probes past one.
func (m *OpenAddr[K, V]) Get(key K) (V, error) {
	seq := makeProbeSeq(m.strategy, m.home(key), m.capacity)
	for n := 0; n < m.capacity; n++ {
		s := &m.slots[seq.offset]
		switch s.state {
		case slotFull:
			if s.key == key {
				return s.value, nil
			}
		case slotEmpty:
			var zero V
			return zero, ErrKeyNotFound
		}
		seq = seq.next()
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Delete removes key's entry, replacing its slot with a tombstone, and fails
// with ErrKeyNotFound if key is absent.
func (m *OpenAddr[K, V]) Delete(key K) error {
	seq := makeProbeSeq(m.strategy, m.home(key), m.capacity)
	for n := 0; n < m.capacity; n++ {
		s := &m.slots[seq.offset]
		switch s.state {
		case slotFull:
			if s.key == key {
				// Zero the key and value so they do not pin referenced
				// memory for the lifetime of the tombstone.
				*s = slot[K, V]{state: slotTombstone}
				m.tombstones++
				m.elems--
				return nil
			}
		case slotEmpty:
			return ErrKeyNotFound
		}
		seq = seq.next()
	}
	return ErrKeyNotFound
}

// All calls yield for each entry in the map until yield returns false. The
// map must not be mutated during iteration.
func (m *OpenAddr[K, V]) All(yield func(key K, value V) bool) {
	for i := range m.slots {
		if m.slots[i].state != slotFull {
			continue
		}
		if !yield(m.slots[i].key, m.slots[i].value) {
			return
		}
	}
}

// grow allocates a backing array of capacity*growth and reinserts every live
// entry into it. Tombstones are purged rather than copied, resetting the
// tombstone count to zero. A single growth step always suffices: the new
// load factor is at most (old load)/growth, which is below maxLoad whenever
// maxLoad*growth > old load, so reinsertion cannot recursively trigger
// another grow.
func (m *OpenAddr[K, V]) grow() error {
	next := OpenAddr[K, V]{
		table: table{
			capacity: m.capacity * m.growth,
			maxLoad:  m.maxLoad,
			growth:   m.growth,
		},
		strategy: m.strategy,
		hash:     m.hash,
		slots:    make([]slot[K, V], m.capacity*m.growth),
	}
	if debug {
		fmt.Printf("grow: capacity=%d->%d elems=%d tombstones=%d\n",
			m.capacity, next.capacity, m.elems, m.tombstones)
	}
	for i := range m.slots {
		s := &m.slots[i]
		if s.state != slotFull {
			continue
		}
		if err := next.put(s.key, s.value); err != nil {
			return errors.Wrapf(err, "rehash to capacity %d", next.capacity)
		}
	}
	*m = next
	return nil
}

func (m *OpenAddr[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "strategy=%s capacity=%d elems=%d tombstones=%d\n",
		m.strategy, m.capacity, m.elems, m.tombstones)
	for i := range m.slots {
		switch m.slots[i].state {
		case slotEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case slotTombstone:
			fmt.Fprintf(&buf, "  %4d: tombstone\n", i)
		default:
			fmt.Fprintf(&buf, "  %4d: %v=%v\n", i, m.slots[i].key, m.slots[i].value)
		}
	}
	return buf.String()
}
