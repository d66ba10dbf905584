package corpus

import (
	"sync"
)

// Cache holds the parsed corpus in memory so repeated index merges do not
// re-read and re-parse the JSON file. Loading is lazy; a failed load leaves
// the cache empty and the next access retries, so a transient read failure is
// not sticky for the life of the process.
type Cache struct {
	path string

	mu      sync.Mutex
	entries []Entry
}

// NewCache creates a cache for the corpus file at path.
// The file is not touched until the first Entries call.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Entries returns the cached corpus, loading it on first access.
func (c *Cache) Entries() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 0 {
		return c.entries, nil
	}

	entries, err := Load(c.path)
	if err != nil {
		return nil, err
	}

	c.entries = entries
	return c.entries, nil
}

// Reload discards the cached corpus and re-reads the file.
func (c *Cache) Reload() ([]Entry, error) {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
	return c.Entries()
}

// Len returns the number of cached entries, 0 when not yet loaded.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Path returns the corpus file path this cache reads from.
func (c *Cache) Path() string {
	return c.path
}
