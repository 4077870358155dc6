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

import "github.com/dolthub/maphash"

// Option provides an interface to configure a map while it is being created.
type Option[K comparable] interface {
	apply(c *config[K])
}

type config[K comparable] struct {
	maxLoad float64
	growth  int
	hash    func(key K) uint64
}

// newConfig applies the options over the variant's defaults. By default keys
// are hashed with the seeded hash function the Go runtime uses for map[K]V.
func newConfig[K comparable](defaultMaxLoad float64, opts []Option[K]) config[K] {
	c := config[K]{
		maxLoad: defaultMaxLoad,
		growth:  defaultGrowthFactor,
	}
	for _, op := range opts {
		op.apply(&c)
	}
	if c.hash == nil {
		h := maphash.NewHasher[K]()
		c.hash = h.Hash
	}
	return c
}

type maxLoadOption[K comparable] struct {
	maxLoad float64
}

func (op maxLoadOption[K]) apply(c *config[K]) {
	c.maxLoad = op.maxLoad
}

// WithMaxLoadFactor is an option to specify the load factor above which the
// table grows. Chaining maps may be configured past 1.0; open-addressing
// maps must stay below 1.0 or Put risks ErrTableFull.
func WithMaxLoadFactor[K comparable](maxLoad float64) Option[K] {
	return maxLoadOption[K]{maxLoad}
}

type growthOption[K comparable] struct {
	growth int
}

func (op growthOption[K]) apply(c *config[K]) {
	c.growth = op.growth
}

// WithGrowthFactor is an option to specify the multiplicative capacity
// growth applied when the maximum load factor is exceeded. The default is 2.
func WithGrowthFactor[K comparable](growth int) Option[K] {
	return growthOption[K]{growth}
}

type hasherOption[K comparable] struct {
	hash func(key K) uint64
}

func (op hasherOption[K]) apply(c *config[K]) {
	c.hash = op.hash
}

// WithHasher is an option to specify the hash function used to compute a
// key's home index.
func WithHasher[K comparable](hash func(key K) uint64) Option[K] {
	return hasherOption[K]{hash}
}
