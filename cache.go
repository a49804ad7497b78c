// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import lru "github.com/hashicorp/golang-lru/v2"

// cacheKey identifies one memoized BDD operation: an operator applied
// to up to three node/edge operands (Ite needs all three; Apply and
// Exist use two, leaving the third zero; Not is never cached).
type cacheKey struct {
	op          Operator
	a, b, c     Edge
}

// Cache memoizes BDD operation results, keyed by (operator, operands).
// It is cleared unconditionally at the start of every reordering pass
// (stale entries would otherwise reference pre-swap node identities).
type Cache struct {
	lru *lru.Cache[cacheKey, Edge]
}

// NewCache allocates an operation cache holding up to size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	l, err := lru.New[cacheKey, Edge](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Get returns the memoized result for (op, a, b, c), if any.
func (c *Cache) Get(op Operator, a, b, c2 Edge) (Edge, bool) {
	return c.lru.Get(cacheKey{op: op, a: a, b: b, c: c2})
}

// Put memoizes (op, a, b, c) -> result.
func (c *Cache) Put(op Operator, a, b, c2 Edge, result Edge) {
	c.lru.Add(cacheKey{op: op, a: a, b: b, c: c2}, result)
}

// Clear empties the cache; called at the start of every reordering
// pass, since a VSwap changes node identities the cache cannot see.
func (c *Cache) Clear() { c.lru.Purge() }

// Len reports the number of entries currently memoized.
func (c *Cache) Len() int { return c.lru.Len() }
