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

import "fmt"

// probeSeq maintains the state for a probe sequence over a table of the
// given capacity. The sequence is infinite and restartable; callers consume
// at most capacity terms before concluding "not found" or "table full".
//
// Linear probing emits
//
//	p(i) := (start + i) mod capacity
//
// and therefore visits every index. Quadratic probing emits the triangular
// progression
//
//	p(i) := (start + i*(i+1)/2) mod capacity
//
// which breaks up the primary clustering of linear probing. The triangular
// progression visits every index when the capacity is a power of two, since
// i*(i+1)/2 is a bijection in Z/(2^m); for other capacities the first
// capacity terms may revisit indices, which is why open-addressing
// operations bound their walk at capacity probes rather than expecting full
// coverage. See https://en.wikipedia.org/wiki/Quadratic_probing.
type probeSeq struct {
	strategy Strategy
	capacity int
	offset   int
	index    int
}

func makeProbeSeq(strategy Strategy, start, capacity int) probeSeq {
	return probeSeq{
		strategy: strategy,
		capacity: capacity,
		offset:   start % capacity,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	switch s.strategy {
	case LinearProbing:
		s.offset = (s.offset + 1) % s.capacity
	case QuadraticProbing:
		// Adding index at step index accumulates the triangular numbers:
		// start, start+1, start+3, start+6, ....
		s.offset = (s.offset + s.index) % s.capacity
	default:
		panic(fmt.Sprintf("probe sequence for strategy %s", s.strategy))
	}
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("strategy=%s capacity=%d offset=%d index=%d",
		s.strategy, s.capacity, s.offset, s.index)
}
