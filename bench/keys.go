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

package bench

import "math/rand"

// Keys are permutations of this alphabet, which yields 10! = 3,628,800
// distinct 10-byte strings.
const keyAlphabet = "abcdefghij"

const maxKeys = 3_628_800

// genKeys returns n distinct string keys in random order, plus a delete
// order covering the distinct keys. With duplicates set, the key list is
// resampled with replacement, so roughly 1-1/e (63%) of it is distinct and
// the rest exercises overwrites.
func genKeys(n int, duplicates bool, rng *rand.Rand) (keys, deleteKeys []string) {
	keys = make([]string, 0, n)
	perm := []byte(keyAlphabet)
	for len(keys) < n {
		keys = append(keys, string(perm))
		if !nextPermutation(perm) {
			break
		}
	}
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	if duplicates {
		resampled := make([]string, len(keys))
		for i := range resampled {
			resampled[i] = keys[rng.Intn(len(keys))]
		}
		keys = resampled
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deleteKeys = append(deleteKeys, k)
	}
	rng.Shuffle(len(deleteKeys), func(i, j int) {
		deleteKeys[i], deleteKeys[j] = deleteKeys[j], deleteKeys[i]
	})
	return keys, deleteKeys
}

// nextPermutation advances p to its lexicographic successor, returning false
// once p is the final (descending) permutation.
func nextPermutation(p []byte) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// genValues returns one random value per key.
func genValues(n int, rng *rand.Rand) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.Float64()
	}
	return values
}

// expected returns the value each distinct key must report after all inserts
// complete: the value paired with the key's final occurrence.
func expected(keys []string, values []float64) map[string]float64 {
	e := make(map[string]float64, len(keys))
	for i, k := range keys {
		e[k] = values[i]
	}
	return e
}
