package objgraph

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"unsafe"
)

// Object is a plain untyped record. Its identity is the identity of the
// underlying map.
type Object map[string]any

type nanKey struct{}

type sliceKey struct {
	typ reflect.Type
	ptr unsafe.Pointer
	len int
}

// hashKey returns a value usable as a Go map key for any supported graph
// value. Maps are indexed by identity, slices by their header, and every NaN
// maps to one key. Other non-comparable values panic.
func hashKey(key any) any {
	if key == nil {
		return nil
	}

	rv := reflect.ValueOf(key)

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Map:
		if id, ok := identityOf(key); ok {
			return id
		}

		return identity{typ: rv.Type(), ptr: nil}
	case reflect.Slice:
		return sliceKey{typ: rv.Type(), ptr: rv.UnsafePointer(), len: rv.Len()}
	case reflect.Float32, reflect.Float64:
		if math.IsNaN(rv.Float()) {
			return nanKey{}
		}
	}

	if !rv.Type().Comparable() {
		panic(fmt.Sprintf("objgraph: unhashable key of type %T", key))
	}

	return key
}

// Map is an insertion-ordered key/value container. Keys are compared by
// identity for reference values and by value for primitives; all NaN keys
// are equal. Keys of non-comparable types other than maps and slices panic.
type Map struct {
	keys   []any
	values []any
	index  map[any]int
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{index: map[any]int{}}
}

// Set stores value under key. An existing key keeps its position.
func (m *Map) Set(key, value any) {
	if m.index == nil {
		m.index = map[any]int{}
	}

	hashed := hashKey(key)
	if pos, ok := m.index[hashed]; ok {
		m.values[pos] = value

		return
	}

	m.index[hashed] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	pos, ok := m.index[hashKey(key)]
	if !ok {
		return nil, false
	}

	return m.values[pos], true
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key any) bool {
	hashed := hashKey(key)

	pos, ok := m.index[hashed]
	if !ok {
		return false
	}

	delete(m.index, hashed)
	m.keys = slices.Delete(m.keys, pos, pos+1)
	m.values = slices.Delete(m.values, pos, pos+1)

	for i := pos; i < len(m.keys); i++ {
		m.index[hashKey(m.keys[i])] = i
	}

	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	return slices.Clone(m.keys)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key, value any) bool) {
	for i, key := range m.keys {
		if !fn(key, m.values[i]) {
			return
		}
	}
}

// Set is an insertion-ordered collection of distinct members. Members are
// compared like [Map] keys.
type Set struct {
	members []any
	index   map[any]int
}

// NewSet creates a Set holding members in order, skipping duplicates.
func NewSet(members ...any) *Set {
	out := &Set{index: map[any]int{}}
	for _, member := range members {
		out.Add(member)
	}

	return out
}

// Add inserts member and reports whether it was not present yet.
func (s *Set) Add(member any) bool {
	if s.index == nil {
		s.index = map[any]int{}
	}

	hashed := hashKey(member)
	if _, ok := s.index[hashed]; ok {
		return false
	}

	s.index[hashed] = len(s.members)
	s.members = append(s.members, member)

	return true
}

// Has reports whether member is present.
func (s *Set) Has(member any) bool {
	_, ok := s.index[hashKey(member)]

	return ok
}

// Delete removes member and reports whether it was present.
func (s *Set) Delete(member any) bool {
	hashed := hashKey(member)

	pos, ok := s.index[hashed]
	if !ok {
		return false
	}

	delete(s.index, hashed)
	s.members = slices.Delete(s.members, pos, pos+1)

	for i := pos; i < len(s.members); i++ {
		s.index[hashKey(s.members[i])] = i
	}

	return true
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	return slices.Clone(s.members)
}
