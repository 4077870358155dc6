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
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// identHash makes slot placement deterministic in tests: a key's home index
// is simply key mod capacity.
func identHash(k int) uint64 { return uint64(k) }

func identOpt() Option[int] { return WithHasher(identHash) }

// collect returns the map's elements as a builtin map.
func collect[K comparable, V any](m Map[K, V]) map[K]V {
	r := make(map[K]V)
	m.All(func(k K, v V) bool {
		r[k] = v
		return true
	})
	return r
}

// layout renders the backing array for assertions: "_" for an empty slot,
// "x" for a tombstone, "k=v" for a full slot.
func (m *OpenAddr[K, V]) layout() []string {
	out := make([]string, len(m.slots))
	for i := range m.slots {
		switch m.slots[i].state {
		case slotEmpty:
			out[i] = "_"
		case slotTombstone:
			out[i] = "x"
		default:
			out[i] = fmt.Sprintf("%v=%v", m.slots[i].key, m.slots[i].value)
		}
	}
	return out
}

func TestLinearInsert(t *testing.T) {
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](0.8))

	require.NoError(t, m.Put(2, 100))
	require.Equal(t, []string{"_", "_", "2=100", "_"}, m.layout())
	require.Equal(t, 1, m.Len())

	require.NoError(t, m.Put(3, 101))
	require.Equal(t, []string{"_", "_", "2=100", "3=101"}, m.layout())
	require.Equal(t, 2, m.Len())

	// 6 mod 4 = 2 collides and probes 2, 3, 0.
	require.NoError(t, m.Put(6, 102))
	require.Equal(t, []string{"6=102", "_", "2=100", "3=101"}, m.layout())
	require.Equal(t, 3, m.Len())

	// Overwrites land in place and do not change Len.
	require.NoError(t, m.Put(2, 90))
	require.Equal(t, []string{"6=102", "_", "2=90", "3=101"}, m.layout())
	require.Equal(t, 3, m.Len())
	require.NoError(t, m.Put(6, 201))
	require.Equal(t, []string{"6=201", "_", "2=90", "3=101"}, m.layout())
	require.Equal(t, 3, m.Len())

	// The fourth distinct key pushes the load factor to 1.0 > 0.8 and the
	// table doubles, rehoming every key mod 8.
	require.NoError(t, m.Put(5, 75))
	require.Equal(t, 8, m.Cap())
	require.Equal(t, []string{"_", "_", "2=90", "3=101", "_", "5=75", "6=201", "_"}, m.layout())
	require.Equal(t, 4, m.Len())
}

func TestLinearLookup(t *testing.T) {
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](0.8))

	for k, v := range map[int]int{2: 100, 3: 101, 6: 102} {
		require.NoError(t, m.Put(k, v))
	}
	for k, v := range map[int]int{2: 100, 3: 101, 6: 102} {
		got, err := m.Get(k)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	_, err := m.Get(0)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLinearDelete(t *testing.T) {
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](0.8))

	require.NoError(t, m.Put(2, 100))
	require.NoError(t, m.Put(3, 101))
	require.NoError(t, m.Put(6, 102))
	require.Equal(t, []string{"6=102", "_", "2=100", "3=101"}, m.layout())

	require.NoError(t, m.Delete(2))
	require.Equal(t, []string{"6=102", "_", "x", "3=101"}, m.layout())
	require.Equal(t, 2, m.Len())
	require.Equal(t, 1, m.tombstones)

	require.NoError(t, m.Delete(3))
	require.Equal(t, []string{"6=102", "_", "x", "x"}, m.layout())
	require.Equal(t, 1, m.Len())
	require.Equal(t, 2, m.tombstones)

	// A lookup probes over the tombstones without stopping at them.
	_, err := m.Get(10)
	require.ErrorIs(t, err, ErrKeyNotFound)
	v, err := m.Get(6)
	require.NoError(t, err)
	require.Equal(t, 102, v)

	// An insert reclaims the first tombstone on its probe sequence.
	require.NoError(t, m.Put(14, 103))
	require.Equal(t, []string{"6=102", "_", "14=103", "x"}, m.layout())
	require.Equal(t, 2, m.Len())
	require.Equal(t, 1, m.tombstones)

	require.NoError(t, m.Put(18, 104))
	require.Equal(t, []string{"6=102", "_", "14=103", "18=104"}, m.layout())
	require.Equal(t, 3, m.Len())
	require.Equal(t, 0, m.tombstones)

	require.ErrorIs(t, m.Delete(0), ErrKeyNotFound)
}

func TestLinearTombstoneShadowing(t *testing.T) {
	// The update of a key must find its shifted slot even when a tombstone
	// lies earlier in its probe sequence. Stopping at the tombstone would
	// insert a duplicate.
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](0.8))

	require.NoError(t, m.Put(1, 100))
	require.NoError(t, m.Put(5, 101)) // home 1, shifted to 2
	require.NoError(t, m.Put(9, 102)) // home 1, shifted to 3
	require.Equal(t, []string{"_", "1=100", "5=101", "9=102"}, m.layout())

	require.NoError(t, m.Delete(5))
	require.Equal(t, []string{"_", "1=100", "x", "9=102"}, m.layout())

	require.NoError(t, m.Put(9, 202))
	require.Equal(t, []string{"_", "1=100", "x", "9=202"}, m.layout())
	require.Equal(t, 2, m.Len())

	// A genuinely new key does take the tombstone slot.
	require.NoError(t, m.Put(13, 103))
	require.Equal(t, []string{"_", "1=100", "13=103", "9=202"}, m.layout())
	require.Equal(t, 3, m.Len())
}

func TestQuadraticInsert(t *testing.T) {
	m := NewQuadratic[int, int](8, identOpt(), WithMaxLoadFactor[int](0.49))

	require.NoError(t, m.Put(6, 100))
	require.Equal(t, []string{"_", "_", "_", "_", "_", "_", "6=100", "_"}, m.layout())
	require.NoError(t, m.Put(7, 101))
	require.Equal(t, []string{"_", "_", "_", "_", "_", "_", "6=100", "7=101"}, m.layout())

	// 14 mod 8 = 6 collides; the triangular walk probes 6, 7, then 1.
	require.NoError(t, m.Put(14, 102))
	require.Equal(t, []string{"_", "14=102", "_", "_", "_", "_", "6=100", "7=101"}, m.layout())
	require.Equal(t, 3, m.Len())

	require.NoError(t, m.Put(6, 90))
	require.NoError(t, m.Put(14, 201))
	require.Equal(t, []string{"_", "14=201", "_", "_", "_", "_", "6=90", "7=101"}, m.layout())
	require.Equal(t, 3, m.Len())

	// The fourth key pushes the load factor past 0.49 and the table doubles.
	require.NoError(t, m.Put(5, 75))
	require.Equal(t, 16, m.Cap())
	require.Equal(t, 4, m.Len())
	for k, v := range map[int]int{6: 90, 7: 101, 14: 201, 5: 75} {
		got, err := m.Get(k)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestQuadraticDelete(t *testing.T) {
	m := NewQuadratic[int, int](8, identOpt(), WithMaxLoadFactor[int](0.49))

	require.NoError(t, m.Put(6, 100))
	require.NoError(t, m.Put(7, 101))
	require.NoError(t, m.Put(14, 102))

	require.NoError(t, m.Delete(6))
	require.Equal(t, []string{"_", "14=102", "_", "_", "_", "_", "x", "7=101"}, m.layout())
	require.Equal(t, 2, m.Len())
	require.Equal(t, 1, m.tombstones)

	require.NoError(t, m.Delete(7))
	require.Equal(t, []string{"_", "14=102", "_", "_", "_", "_", "x", "x"}, m.layout())
	require.Equal(t, 1, m.Len())
	require.Equal(t, 2, m.tombstones)

	// 14's probe passes both tombstones.
	v, err := m.Get(14)
	require.NoError(t, err)
	require.Equal(t, 102, v)

	_, err = m.Get(22)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestOpenAddrLoadFactorCountsTombstones(t *testing.T) {
	m := NewLinear[int, int](8, identOpt(), WithMaxLoadFactor[int](0.9))
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Put(i, i))
	}
	require.InEpsilon(t, 0.5, m.LoadFactor(), 1e-9)

	require.NoError(t, m.Delete(0))
	require.NoError(t, m.Delete(1))
	// Two tombstones still occupy the array.
	require.Equal(t, 2, m.Len())
	require.InEpsilon(t, 0.5, m.LoadFactor(), 1e-9)
}

func TestOpenAddrGrowPurgesTombstones(t *testing.T) {
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](0.8))
	require.NoError(t, m.Put(0, 0))
	require.NoError(t, m.Put(1, 1))
	require.NoError(t, m.Put(2, 2))
	require.NoError(t, m.Delete(0))
	require.Equal(t, 1, m.tombstones)
	require.InEpsilon(t, 0.75, m.LoadFactor(), 1e-9)

	// The tombstone counts toward the growth trigger: inserting 3 lands in
	// the empty slot at index 3, the load factor hits (2+1+1)/4 = 1.0, and
	// the table doubles. Without the tombstone it would have stayed at 0.75.
	require.NoError(t, m.Put(3, 3))
	require.Equal(t, 8, m.Cap())
	require.Equal(t, 0, m.tombstones)
	require.Equal(t, map[int]int{1: 1, 2: 2, 3: 3}, collect[int, int](m))
}

func TestTableFull(t *testing.T) {
	// A maximum load factor of 1.0 is a configuration error for open
	// addressing: the table fills completely and the fifth insert has no
	// empty slot to stop at.
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](1.0))
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Put(i, i))
	}
	require.Equal(t, 4, m.Cap())

	err := m.Put(4, 4)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTableFull))

	// Lookups and updates of resident keys still work on the full table.
	v, err := m.Get(3)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.NoError(t, m.Put(3, 33))
	require.Equal(t, 4, m.Len())
}

func TestTableFullReclaimsTombstone(t *testing.T) {
	// Even with every probe exhausted, a tombstone on the sequence is a
	// valid home for a new key.
	m := NewLinear[int, int](4, identOpt(), WithMaxLoadFactor[int](1.0))
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Put(i, i))
	}
	require.NoError(t, m.Delete(1))
	require.NoError(t, m.Put(5, 55)) // home 1, table otherwise full
	v, err := m.Get(5)
	require.NoError(t, err)
	require.Equal(t, 55, v)
	require.Equal(t, 0, m.tombstones)
}

func TestOpenAddrGrowthFactor(t *testing.T) {
	m := NewLinear[int, int](4, identOpt(),
		WithMaxLoadFactor[int](0.6), WithGrowthFactor[int](3))
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Put(i, i))
	}
	require.Equal(t, 12, m.Cap())
}

func TestOpenAddrBasic(t *testing.T) {
	test := func(t *testing.T, m Map[int, int]) {
		const count = 100
		e := make(map[int]int)

		for i := 0; i < count; i++ {
			_, err := m.Get(i)
			require.ErrorIs(t, err, ErrKeyNotFound)
		}

		for i := 0; i < count; i++ {
			require.NoError(t, m.Put(i, i+count))
			e[i] = i + count
			v, err := m.Get(i)
			require.NoError(t, err)
			require.Equal(t, i+count, v)
			require.Equal(t, i+1, m.Len())
			require.Equal(t, e, collect(m))
		}

		for i := 0; i < count; i++ {
			require.NoError(t, m.Put(i, i+2*count))
			e[i] = i + 2*count
			v, err := m.Get(i)
			require.NoError(t, err)
			require.Equal(t, i+2*count, v)
			require.Equal(t, count, m.Len())
			require.Equal(t, e, collect(m))
		}

		for i := 0; i < count; i++ {
			require.NoError(t, m.Delete(i))
			delete(e, i)
			require.Equal(t, count-i-1, m.Len())
			_, err := m.Get(i)
			require.ErrorIs(t, err, ErrKeyNotFound)
			require.Equal(t, e, collect(m))
		}
	}

	t.Run("linear", func(t *testing.T) {
		test(t, NewLinear[int, int](8))
	})
	t.Run("quadratic", func(t *testing.T) {
		test(t, NewQuadratic[int, int](8))
	})
	t.Run("degenerate", func(t *testing.T) {
		// Every key hashes to the same home index.
		for _, s := range []Strategy{LinearProbing, QuadraticProbing} {
			t.Run(s.String(), func(t *testing.T) {
				m, err := New[int, int](s, 8, WithHasher(func(int) uint64 { return 7 }))
				require.NoError(t, err)
				test(t, m)
			})
		}
	})
}

func TestOpenAddrRandom(t *testing.T) {
	test := func(t *testing.T, m Map[int, int]) {
		rng := rand.New(rand.NewSource(42))
		e := make(map[int]int)
		for i := 0; i < 10000; i++ {
			k := rng.Intn(500)
			switch r := rng.Float64(); {
			case r < 0.5:
				v := rng.Int()
				require.NoError(t, m.Put(k, v))
				e[k] = v
			case r < 0.75:
				err := m.Delete(k)
				if _, ok := e[k]; ok {
					require.NoError(t, err)
					delete(e, k)
				} else {
					require.ErrorIs(t, err, ErrKeyNotFound)
				}
			default:
				v, err := m.Get(k)
				if want, ok := e[k]; ok {
					require.NoError(t, err)
					require.Equal(t, want, v)
				} else {
					require.ErrorIs(t, err, ErrKeyNotFound)
				}
			}
			require.Equal(t, len(e), m.Len())
		}
		require.Equal(t, e, collect(m))
	}

	t.Run("linear", func(t *testing.T) {
		test(t, NewLinear[int, int](8, identOpt()))
	})
	t.Run("quadratic", func(t *testing.T) {
		test(t, NewQuadratic[int, int](8, identOpt()))
	})
	t.Run("defaultHasher", func(t *testing.T) {
		test(t, NewLinear[int, int](8))
	})
}

func TestAllEarlyStop(t *testing.T) {
	m := NewLinear[int, int](8, identOpt())
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Put(i, i))
	}
	var n int
	m.All(func(int, int) bool {
		n++
		return false
	})
	require.Equal(t, 1, n)
}
