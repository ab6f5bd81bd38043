package ipalloc

import (
	"fmt"
	"sort"
)

// A BiMap is a one-to-one mapping between keys and values.
// Insertions that would break bijectivity are rejected.
type BiMap[K comparable, V comparable] struct {
	forward map[K]V
	reverse map[V]K
}

func NewBiMap[K comparable, V comparable]() *BiMap[K, V] {
	return &BiMap[K, V]{
		forward: map[K]V{},
		reverse: map[V]K{},
	}
}

func (m *BiMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.forward[key]
	return v, ok
}

func (m *BiMap[K, V]) GetByValue(value V) (K, bool) {
	k, ok := m.reverse[value]
	return k, ok
}

func (m *BiMap[K, V]) HasValue(value V) bool {
	_, ok := m.reverse[value]
	return ok
}

// Set binds key and value. Re-binding an identical pair is a no-op.
func (m *BiMap[K, V]) Set(key K, value V) error {
	if v, ok := m.forward[key]; ok && v != value {
		return fmt.Errorf("key %v is already bound to %v", key, v)
	}
	if k, ok := m.reverse[value]; ok && k != key {
		return fmt.Errorf("value %v is already bound to %v", value, k)
	}
	m.forward[key] = value
	m.reverse[value] = key
	return nil
}

// Clone returns an independent copy of m.
func (m *BiMap[K, V]) Clone() *BiMap[K, V] {
	c := NewBiMap[K, V]()
	for k, v := range m.forward {
		c.forward[k] = v
		c.reverse[v] = k
	}
	return c
}

func (m *BiMap[K, V]) Len() int {
	return len(m.forward)
}

// Keys returns all keys ordered by less on their values.
func (m *BiMap[K, V]) Keys(less func(a, b V) bool) []K {
	keys := make([]K, 0, len(m.forward))
	for k := range m.forward {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(m.forward[keys[i]], m.forward[keys[j]]) })
	return keys
}
