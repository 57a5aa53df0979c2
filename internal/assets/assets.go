// Package assets locates and loads the bundled asset library that provides
// the point cloud node group and its helper object.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Library file and object names.
const (
	LibraryDir      = "assets"
	LibraryFileName = "generate_point_cloud.yaml"
	HelperObject    = "Generator"
)

// Asset errors.
var (
	ErrAssetMissing       = errors.New("asset library not found")
	ErrObjectNotInLibrary = errors.New("object not in asset library")
	ErrInvalidLibrary     = errors.New("invalid asset library")
)

// DefaultLibraryPath returns the library path next to the running binary.
func DefaultLibraryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), LibraryDir, LibraryFileName), nil
}

// Manager loads asset libraries and keeps them for the life of the process.
type Manager struct {
	cache *Cache
	mu    sync.Mutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// Load returns the library at path, parsing it on first use.
func (m *Manager) Load(path string) (*Library, error) {
	if lib, ok := m.cache.Get(path); ok {
		return lib, nil
	}

	// Serialize parsing so concurrent callers share one result.
	m.mu.Lock()
	defer m.mu.Unlock()
	if lib, ok := m.cache.Peek(path); ok {
		return lib, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading asset library: %w", err)
	}

	lib, err := ParseLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lib.Path = path
	m.cache.Set(path, lib)
	return lib, nil
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all cached libraries.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is an in-memory cache of parsed libraries keyed by path.
type Cache struct {
	data map[string]*Library
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Library),
	}
}

// Get retrieves an item from cache and counts the lookup.
func (c *Cache) Get(key string) (*Library, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lib, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return lib, ok
}

// Peek retrieves an item without touching the stats.
func (c *Cache) Peek(key string) (*Library, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lib, ok := c.data[key]
	return lib, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, lib *Library) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = lib
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*Library)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
