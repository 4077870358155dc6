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

// Package memsize measures the in-memory footprint of an object graph.
//
// Plain sizeof is shallow: it counts a pointer, slice header, or map header
// without the data it refers to. Of traverses the graph instead, summing the
// storage behind pointers, slices, maps, strings, and interfaces, and counts
// each distinct allocation once so shared and cyclic structures are not
// inflated.
//
// The result is an estimate. Allocator rounding, map bucket overhead, and
// internal runtime structures are not modeled; the number is meant for
// comparing containers against each other, not for accounting against the
// process RSS.
package memsize

import (
	"reflect"
	"unsafe"
)

// Of returns the estimated number of bytes occupied by v and everything
// reachable from it.
func Of(v any) uint64 {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	seen := make(map[unsafe.Pointer]struct{})
	return uint64(rv.Type().Size()) + referents(rv, seen)
}

// referents returns the size of the data reachable from v, excluding the
// direct storage of v itself (already counted by the caller).
func referents(v reflect.Value, seen map[unsafe.Pointer]struct{}) uint64 {
	switch v.Kind() {
	case reflect.String:
		return uint64(v.Len())

	case reflect.Slice:
		if v.IsNil() || !visit(seen, v.UnsafePointer()) {
			return 0
		}
		n := uint64(v.Cap()) * uint64(v.Type().Elem().Size())
		for i := 0; i < v.Len(); i++ {
			n += referents(v.Index(i), seen)
		}
		return n

	case reflect.Array:
		var n uint64
		for i := 0; i < v.Len(); i++ {
			n += referents(v.Index(i), seen)
		}
		return n

	case reflect.Pointer:
		if v.IsNil() || !visit(seen, v.UnsafePointer()) {
			return 0
		}
		e := v.Elem()
		return uint64(e.Type().Size()) + referents(e, seen)

	case reflect.Map:
		if v.IsNil() || !visit(seen, v.UnsafePointer()) {
			return 0
		}
		var n uint64
		iter := v.MapRange()
		for iter.Next() {
			k, e := iter.Key(), iter.Value()
			n += uint64(k.Type().Size()) + referents(k, seen)
			n += uint64(e.Type().Size()) + referents(e, seen)
		}
		return n

	case reflect.Struct:
		var n uint64
		for i := 0; i < v.NumField(); i++ {
			n += referents(v.Field(i), seen)
		}
		return n

	case reflect.Interface:
		if v.IsNil() {
			return 0
		}
		e := v.Elem()
		return uint64(e.Type().Size()) + referents(e, seen)
	}

	// Channels, funcs, and unsafe pointers are opaque; count their headers
	// only.
	return 0
}

func visit(seen map[unsafe.Pointer]struct{}, p unsafe.Pointer) bool {
	if p == nil {
		return false
	}
	if _, ok := seen[p]; ok {
		return false
	}
	seen[p] = struct{}{}
	return true
}
