package storage

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheKind separates the key spaces of cached values. The primitive
// kinds (scalar, axis, vector, matrix) double as dependency
// identities: a write to a primitive property invalidates exactly the
// entries that recorded it as a dependency.
type CacheKind uint8

const (
	CacheKindUnknown CacheKind = iota
	CacheKindScalar
	CacheKindAxis
	CacheKindVector
	CacheKindMatrix
	CacheKindRelayout
	CacheKindQuery
)

// CacheKey is the structured identity of a cached value.
type CacheKey struct {
	Kind CacheKind
	// Axis is the axis of a vector entry, or the rows axis of a
	// matrix/relayout entry.
	Axis string
	// ColumnsAxis is set for matrix and relayout entries.
	ColumnsAxis string
	// Name is the scalar/axis/property name, or the canonical query
	// string of a query-result entry.
	Name string
}

// ScalarKey identifies a scalar property.
func ScalarKey(name string) CacheKey { return CacheKey{Kind: CacheKindScalar, Name: name} }

// AxisKey identifies an axis's entry names.
func AxisKey(axis string) CacheKey { return CacheKey{Kind: CacheKindAxis, Name: axis} }

// VectorKey identifies a vector property.
func VectorKey(axis, name string) CacheKey {
	return CacheKey{Kind: CacheKindVector, Axis: axis, Name: name}
}

// MatrixKey identifies a matrix property under an exact axis order.
func MatrixKey(rowsAxis, columnsAxis, name string) CacheKey {
	return CacheKey{Kind: CacheKindMatrix, Axis: rowsAxis, ColumnsAxis: columnsAxis, Name: name}
}

// RelayoutKey identifies the derived flipped-layout copy of a matrix.
func RelayoutKey(rowsAxis, columnsAxis, name string) CacheKey {
	return CacheKey{Kind: CacheKindRelayout, Axis: rowsAxis, ColumnsAxis: columnsAxis, Name: name}
}

// QueryKey identifies a cached query result by its canonical string.
func QueryKey(query string) CacheKey { return CacheKey{Kind: CacheKindQuery, Name: query} }

// String renders the key for logs and for singleflight grouping.
func (k CacheKey) String() string {
	switch k.Kind {
	case CacheKindScalar:
		return "scalar:" + k.Name
	case CacheKindAxis:
		return "axis:" + k.Name
	case CacheKindVector:
		return fmt.Sprintf("vector:%s:%s", k.Axis, k.Name)
	case CacheKindMatrix:
		return fmt.Sprintf("matrix:%s:%s:%s", k.Axis, k.ColumnsAxis, k.Name)
	case CacheKindRelayout:
		return fmt.Sprintf("relayout:%s:%s:%s", k.Axis, k.ColumnsAxis, k.Name)
	case CacheKindQuery:
		return "query:" + k.Name
	}
	return "unknown:" + k.Name
}

// Retention groups cache entries by how expensive they are to lose.
type Retention uint8

const (
	// RetainMemory marks derived in-memory-only results.
	RetainMemory Retention = iota
	// RetainMapped marks entries backed by memory-mapped storage that
	// can be dropped and recomputed cheaply. EmptyCache can spare them.
	RetainMapped
)

type cacheEntry struct {
	value     any
	deps      []CacheKey
	retention Retention
}

// depCache is the dependency-tracked derived-value cache. Protected by
// its own mutex; it is consulted while the dataset lock is held but
// does not rely on it.
type depCache struct {
	mu      sync.Mutex
	entries map[CacheKey]*cacheEntry
	// dependents maps a primitive property identity to the entries
	// that recorded it as a dependency.
	dependents map[CacheKey]map[CacheKey]struct{}
	group      singleflight.Group
}

func newDepCache() *depCache {
	return &depCache{
		entries:    make(map[CacheKey]*cacheEntry),
		dependents: make(map[CacheKey]map[CacheKey]struct{}),
	}
}

func (c *depCache) get(key CacheKey) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// getOrCompute returns the cached value for key, computing it at most
// once under concurrent access.
func (c *depCache) getOrCompute(key CacheKey, retention Retention, deps []CacheKey, compute func() (any, error)) (any, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.put(key, v, retention, deps)
		return v, nil
	})
	return v, err
}

func (c *depCache) put(key CacheKey, value any, retention Retention, deps []CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
	c.entries[key] = &cacheEntry{value: value, deps: deps, retention: retention}
	for _, dep := range deps {
		m, ok := c.dependents[dep]
		if !ok {
			m = make(map[CacheKey]struct{})
			c.dependents[dep] = m
		}
		m[key] = struct{}{}
	}
}

// invalidate removes the entry cached under prop (if any) and every
// entry that depends on prop, transitively.
func (c *depCache) invalidate(prop CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(prop)
}

func (c *depCache) invalidateLocked(prop CacheKey) {
	c.removeLocked(prop)
	deps := c.dependents[prop]
	delete(c.dependents, prop)
	for key := range deps {
		c.invalidateLocked(key)
	}
}

func (c *depCache) removeLocked(key CacheKey) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, dep := range e.deps {
		if m, ok := c.dependents[dep]; ok {
			delete(m, key)
			if len(m) == 0 {
				delete(c.dependents, dep)
			}
		}
	}
}

// empty drops all entries; with keepMapped it spares the entries whose
// backing store is memory-mapped.
func (c *depCache) empty(keepMapped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !keepMapped {
		c.entries = make(map[CacheKey]*cacheEntry)
		c.dependents = make(map[CacheKey]map[CacheKey]struct{})
		return
	}
	for key, e := range c.entries {
		if e.retention != RetainMapped {
			c.removeLocked(key)
		}
	}
}
