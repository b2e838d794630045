package parser

import (
	"github.com/scanless/scanless/core/result"
	"github.com/scanless/scanless/core/text"
)

// Outcome is the memoized state of one (position, non-terminal) pair.
type Outcome int

const (
	Unknown Outcome = iota
	Fail
	Success
)

// CacheItem is one memo entry. The engine reads and writes Outcome, and on
// success stores the produced result and the position parsing continued
// from. The item must stay valid for the duration of the in-flight call
// that owns it.
type CacheItem struct {
	Outcome Outcome
	Result  result.Value
	NextPos text.Position
}

// Cache memoizes parse outcomes per (byte offset, non-terminal). Returning
// nil from Hit skips memoization for that query.
type Cache interface {
	Hit(offset int, nt string) *CacheItem
}

// PackratCache is the brute-force reference cache: one bucket per byte
// offset of the input, keyed by non-terminal name. Items are created with
// outcome Unknown on first query.
type PackratCache struct {
	slots []map[string]*CacheItem
}

// NewPackratCache returns a cache for an input of the given length.
func NewPackratCache(inputLen int) *PackratCache {
	return &PackratCache{slots: make([]map[string]*CacheItem, inputLen+1)}
}

// Hit implements Cache.
func (c *PackratCache) Hit(offset int, nt string) *CacheItem {
	if offset >= len(c.slots) {
		offset = len(c.slots) - 1
	}
	m := c.slots[offset]
	if m == nil {
		m = make(map[string]*CacheItem)
		c.slots[offset] = m
	}
	item := m[nt]
	if item == nil {
		item = &CacheItem{}
		m[nt] = item
	}
	return item
}

// Teardown releases every stored result, restoring reference balance for
// payloads that only the cache still holds.
func (c *PackratCache) Teardown() {
	for _, m := range c.slots {
		for _, item := range m {
			item.Result.Release()
		}
	}
}
