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

// Package probemap implements an associative map over a fixed-size backing
// array with three interchangeable collision-resolution strategies: separate
// chaining, linear probing, and quadratic probing.
//
// # Chaining
//
// A Chaining map keeps one bucket per array index. A bucket is a slice of
// key/value entries, nil until the first key hashes to its index. Deletion is
// local to a bucket, so no tombstones are needed and the load factor is
// simply elements/capacity. The load factor may exceed 1.0.
//
// # Open addressing
//
// An OpenAddr map keeps a single slot per array index. A slot is empty, full,
// or a tombstone left behind by a deletion. Collisions are resolved by
// walking a probe sequence starting at the key's home index (hash modulo
// capacity): linear probing visits home, home+1, home+2, ..., while quadratic
// probing advances by triangular numbers, visiting home, home+1, home+3,
// home+6, ....
//
// An empty slot terminates a probe: if the walk reaches one, the key is
// definitively absent. Tombstones keep probe sequences of other keys intact
// after deletions; a probe skips over them but must not stop at them, since
// the key being searched for may live further along the sequence. Tombstones
// count toward the load factor (a table clogged with tombstones probes as
// slowly as a full one) but not toward Len.
//
// All three variants grow by the configured growth factor when an insert
// pushes the load factor above the configured maximum. Growth reinserts only
// the live entries, discarding tombstones.
//
// Maps in this package are NOT goroutine-safe.
package probemap

import "github.com/cockroachdb/errors"

const (
	debug = false

	defaultInitialCapacity = 8
	defaultGrowthFactor    = 2

	// Constructor defaults for the maximum load factor. Chaining buckets
	// absorb collisions, so chaining tolerates a full table; open addressing
	// must keep empty slots around to terminate probes.
	defaultChainingMaxLoad = 1.0
	defaultOpenAddrMaxLoad = 0.6
)

// Strategy selects how a map resolves hash collisions.
type Strategy uint8

const (
	Chained Strategy = iota
	LinearProbing
	QuadraticProbing
)

func (s Strategy) String() string {
	switch s {
	case Chained:
		return "chaining"
	case LinearProbing:
		return "linear"
	case QuadraticProbing:
		return "quadratic"
	}
	return "unknown"
}

// ParseStrategy converts a strategy name, as produced by Strategy.String,
// back into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "chaining":
		return Chained, nil
	case "linear":
		return LinearProbing, nil
	case "quadratic":
		return QuadraticProbing, nil
	}
	return 0, errors.Newf("unknown strategy %q", name)
}

// Map is an unordered map from keys to values with Put, Get, Delete, and All
// operations. Get and Delete fail with ErrKeyNotFound for absent keys. Put
// fails with ErrTableFull only in the open-addressing variants, and only
// when misconfiguration (a maximum load factor at or above 1.0, or a
// quadratic probe sequence that misses every free slot) lets the table fill
// up.
type Map[K comparable, V any] interface {
	Put(key K, value V) error
	Get(key K) (V, error)
	Delete(key K) error
	// Len returns the number of live entries in the map.
	Len() int
	// Cap returns the current capacity of the backing array.
	Cap() int
	// LoadFactor returns the used fraction of the backing array. Open
	// addressing counts tombstones as used; chaining counts entries only.
	LoadFactor() float64
	// All calls yield for each key and value present in the map until yield
	// returns false. Iteration order is unspecified and may change after any
	// mutation.
	All(yield func(key K, value V) bool)
}

// New constructs an empty map using the given collision-resolution strategy.
// The concrete constructors (NewChaining, NewLinear, NewQuadratic) are
// preferable when the strategy is known at compile time.
func New[K comparable, V any](s Strategy, initialCapacity int, opts ...Option[K]) (Map[K, V], error) {
	switch s {
	case Chained:
		return NewChaining[K, V](initialCapacity, opts...), nil
	case LinearProbing:
		return NewLinear[K, V](initialCapacity, opts...), nil
	case QuadraticProbing:
		return NewQuadratic[K, V](initialCapacity, opts...), nil
	}
	return nil, errors.Newf("unknown strategy %d", s)
}

// table holds the bookkeeping shared by every variant: the capacity of the
// backing array and the counters that feed the load-factor computation. The
// growth check runs strictly after an insert completes, so a single insert
// can momentarily push the load factor above maxLoad before the table grows.
type table struct {
	capacity   int
	elems      int
	tombstones int
	maxLoad    float64
	growth     int
}

func (t *table) Len() int { return t.elems }

func (t *table) Cap() int { return t.capacity }

func (t *table) LoadFactor() float64 {
	return float64(t.elems+t.tombstones) / float64(t.capacity)
}

// overloaded reports whether the table must grow before the next insert.
func (t *table) overloaded() bool {
	return t.LoadFactor() > t.maxLoad
}
