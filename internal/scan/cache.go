package scan

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gnolang/sg/internal/report"
	"github.com/gnolang/sg/lang"
)

const (
	cacheFileName   = "scan_cache.gob"
	defaultCacheAge = 24 * time.Hour
)

// CacheEntry holds the issues found in one version of a file.
type CacheEntry struct {
	Hash         string
	Language     string
	Issues       []report.Issue
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache remembers scan results per file, keyed by the content hash and the
// grammar the file was parsed with. Entries live in memory until Save.
type Cache struct {
	dir     string
	entries map[string]CacheEntry
	mutex   sync.RWMutex
	maxAge  time.Duration
}

// NewCache opens the cache stored in dir, creating dir when needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		dir:     dir,
		entries: make(map[string]CacheEntry),
		maxAge:  defaultCacheAge,
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return cache, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.dir, cacheFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to its directory.
func (c *Cache) Save() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	file, err := os.Create(filepath.Join(c.dir, cacheFileName))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Set records the issues of src parsed as l.
func (c *Cache) Set(path string, l lang.SgLang, src []byte, issues []report.Issue) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[path] = CacheEntry{
		Hash:         contentHash(src),
		Language:     l.Name(),
		Issues:       issues,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// Get returns the issues recorded for path if src and l still match.
func (c *Cache) Get(path string, l lang.SgLang, src []byte) ([]report.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[path]
	if !exists {
		return nil, false
	}
	if c.isEntryInvalid(entry, l, src) {
		delete(c.entries, path)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[path] = entry
	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(entry CacheEntry, l lang.SgLang, src []byte) bool {
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	return entry.Language != l.Name() || entry.Hash != contentHash(src)
}

func (c *Cache) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = d
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// InvalidateAll drops every entry and rewrites the cache file.
func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mutex.Unlock()

	return c.Save()
}

func contentHash(src []byte) string {
	return fmt.Sprintf("%x", md5.Sum(src))
}
