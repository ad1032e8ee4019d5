// Package assets loads block and biome definitions from layered sources.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrNotFound is returned when no source holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager resolves asset files from a stack of sources.
// Sources are searched in reverse order (last added = highest priority);
// the embedded defaults are always at the bottom.
type Manager struct {
	sources []fs.FS
	cache   *Cache
	mu      sync.RWMutex
}

// NewManager creates a manager backed by the embedded defaults.
func NewManager() *Manager {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return &Manager{
		sources: []fs.FS{sub},
		cache:   NewCache(),
	}
}

// AddDir adds a directory of override files.
func (m *Manager) AddDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening asset dir %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset dir %s: not a directory", path)
	}
	m.AddFS(os.DirFS(path))
	return nil
}

// AddFS adds a source on top of the existing ones.
func (m *Manager) AddFS(fsys fs.FS) {
	m.mu.Lock()
	m.sources = append(m.sources, fsys)
	m.mu.Unlock()
	m.cache.Clear()
}

// Load returns the contents of name from the highest-priority source that has it.
func (m *Manager) Load(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(m.sources[i], name)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear empties the cache and resets its counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
