package jsonfile

import (
	"context"
	"sync"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
)

// Cache is the durable URL -> word-count document.
type Cache struct {
	mu   sync.Mutex
	path string
}

// NewCache constructs a Cache persisted at path.
func NewCache(path string) (*Cache, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	return &Cache{path: path}, nil
}

// Snapshot returns the full cache contents. A missing document is an empty cache.
func (c *Cache) Snapshot(_ context.Context) (map[string]essays.WordCounts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make(map[string]essays.WordCounts)
	if err := readDocument(c.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MergeUpdate inserts or overwrites each URL key from entries, leaving all
// other keys untouched, then persists the document atomically.
func (c *Cache) MergeUpdate(_ context.Context, entries map[string]essays.WordCounts) error {
	if len(entries) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	existing := make(map[string]essays.WordCounts)
	if err := readDocument(c.path, &existing); err != nil {
		return err
	}
	for url, counts := range entries {
		existing[url] = counts
	}
	return writeDocument(c.path, existing)
}
