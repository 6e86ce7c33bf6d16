package onimpl

import (
	"sync"

	"traitnote/internal/diag"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

type cacheKey struct {
	trait typesys.DefID
	item  typesys.DefID
}

type cacheEntry struct {
	dir *Directive
	err error
}

// Cache memoizes DirectiveForItem per (trait, implementing item) for
// the lifetime of a session. Entries are append-only; both successes
// and failures are remembered, so diagnostics for a bad directive are
// emitted once, on first lookup.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// DirectiveForItem is the read-through lookup. Concurrent first lookups
// of the same key may both compute; one result wins and the outcome is
// identical either way since parsing is deterministic.
func (c *Cache) DirectiveForItem(sys typesys.System, trait, item typesys.DefID, in *source.Interner, rep diag.Reporter) (*Directive, error) {
	key := cacheKey{trait: trait, item: item}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e.dir, e.err
	}

	dir, err := DirectiveForItem(sys, trait, item, in, rep)

	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, ok := c.entries[key]; ok {
		return prior.dir, prior.err
	}
	c.entries[key] = cacheEntry{dir: dir, err: err}
	return dir, err
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
