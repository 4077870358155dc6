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

import "github.com/cockroachdb/errors"

var (
	// ErrKeyNotFound is returned by Get and Delete when the key is absent.
	// It is always recoverable by the caller.
	ErrKeyNotFound = errors.New("probemap: key not found")

	// ErrTableFull is returned by an open-addressing Put that exhausts its
	// probe sequence without finding a matching or free slot. A correctly
	// configured table (maximum load factor below 1.0) never fills up, so
	// callers should treat it as a configuration error.
	ErrTableFull = errors.New("probemap: table full")
)
