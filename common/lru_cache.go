// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"container/list"
	"unsafe"
)

// LruCache retains the most recently used key-value pairs up to a fixed
// capacity. It is not thread safe.
type LruCache[K comparable, V any] struct {
	entries  map[K]*list.Element
	order    *list.List // front is the most recently used entry
	capacity int
}

type lruEntry[K comparable, V any] struct {
	key K
	val V
}

// NewLruCache creates a cache retaining up to capacity entries. The capacity
// has to be positive.
func NewLruCache[K comparable, V any](capacity int) *LruCache[K, V] {
	if capacity <= 0 {
		panic("cache capacity must be positive")
	}
	return &LruCache[K, V]{
		entries:  make(map[K]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the value cached for the key and marks it as used.
func (c *LruCache[K, V]) Get(key K) (V, bool) {
	element, exists := c.entries[key]
	if !exists {
		var empty V
		return empty, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*lruEntry[K, V]).val, true
}

// Set associates the value with the key and marks it as used. If the cache
// is full, the least recently used entry is evicted and returned.
func (c *LruCache[K, V]) Set(key K, val V) (evictedKey K, evictedValue V, evicted bool) {
	if element, exists := c.entries[key]; exists {
		element.Value.(*lruEntry[K, V]).val = val
		c.order.MoveToFront(element)
		return
	}
	if len(c.entries) >= c.capacity {
		last := c.order.Back()
		victim := last.Value.(*lruEntry[K, V])
		evictedKey, evictedValue, evicted = victim.key, victim.val, true
		delete(c.entries, victim.key)
		c.order.Remove(last)
	}
	c.entries[key] = c.order.PushFront(&lruEntry[K, V]{key: key, val: val})
	return
}

// Remove deletes the key from the cache and returns the removed value.
func (c *LruCache[K, V]) Remove(key K) (original V, exists bool) {
	element, exists := c.entries[key]
	if !exists {
		return original, false
	}
	delete(c.entries, key)
	c.order.Remove(element)
	return element.Value.(*lruEntry[K, V]).val, true
}

// Len provides the number of cached entries.
func (c *LruCache[K, V]) Len() int {
	return len(c.entries)
}

// GetDynamicMemoryFootprint provides the size of the cache in memory in bytes for values,
// which reference dynamic amount of memory - like slices.
func (c *LruCache[K, V]) GetDynamicMemoryFootprint(valueSizeProvider func(V) uintptr) *MemoryFootprint {
	size := unsafe.Sizeof(*c)
	for _, element := range c.entries {
		size += unsafe.Sizeof(list.Element{}) + unsafe.Sizeof(lruEntry[K, V]{})
		size += valueSizeProvider(element.Value.(*lruEntry[K, V]).val)
	}
	return NewMemoryFootprint(size)
}
