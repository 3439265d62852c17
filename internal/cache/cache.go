// Package cache provides the key-value backends behind the result store:
// a badger database for persistent use and an LRU file/memory cache.
package cache

import (
	"container/list"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// Cache is interfaces.Cache plus resource release.
type Cache interface {
	interfaces.Cache

	// Close releases any resources held by the cache.
	Close() error
}

// CacheItem is the stored envelope of a cached value.
type CacheItem struct {
	Data      json.RawMessage `json:"data"`
	StoredAt  int64           `json:"stored_at"`
	ExpiresAt int64           `json:"expires_at"` // unix nanoseconds, 0 never expires
}

func newCacheItem(data interface{}, ttl time.Duration) (*CacheItem, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}

	now := time.Now()
	item := &CacheItem{Data: jsonData, StoredAt: now.UnixNano()}
	if ttl > 0 {
		item.ExpiresAt = now.Add(ttl).UnixNano()
	}

	return item, nil
}

func (i *CacheItem) expired(now time.Time) bool {
	return i.ExpiresAt > 0 && now.UnixNano() >= i.ExpiresAt
}

var (
	loggerMu    sync.RWMutex
	cacheLogger interfaces.Logger = &interfaces.NoOpLogger{}
)

// SetLogger sets the logger used by every cache in this package.
func SetLogger(l interfaces.Logger) {
	if l == nil {
		l = &interfaces.NoOpLogger{}
	}
	loggerMu.Lock()
	cacheLogger = l
	loggerMu.Unlock()
}

func getCacheLogger() interfaces.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()

	return cacheLogger
}

// FileCache implements a simple file-based cache with LRU eviction.
type FileCache struct {
	dir       string
	mutex     sync.Mutex
	inMemory  map[string]*list.Element
	lruList   *list.List
	maxSize   int // 0 = unlimited
	persisted bool
}

type lruEntry struct {
	key  string
	item *CacheItem
}

// NewFileCache creates a new file-based cache with no size limit.
func NewFileCache(cacheDir string, persisted bool) (*FileCache, error) {
	return NewFileCacheWithSize(cacheDir, persisted, 0)
}

// NewFileCacheWithSize creates a file-based cache that evicts the least
// recently used item once it holds more than maxSize items.
func NewFileCacheWithSize(cacheDir string, persisted bool, maxSize int) (*FileCache, error) {
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &FileCache{
		dir:       cacheDir,
		inMemory:  make(map[string]*list.Element),
		lruList:   list.New(),
		maxSize:   maxSize,
		persisted: persisted,
	}

	if persisted {
		if err := cache.loadCacheFiles(); err != nil {
			getCacheLogger().Debug("Warning: Failed to load cache files: %v", err)
		}
	}

	return cache, nil
}

// NewMemoryCache creates an in-memory only cache.
func NewMemoryCache() *FileCache {
	return NewMemoryCacheWithSize(0)
}

// NewMemoryCacheWithSize creates an in-memory cache with a size limit.
func NewMemoryCacheWithSize(maxSize int) *FileCache {
	return &FileCache{
		inMemory: make(map[string]*list.Element),
		lruList:  list.New(),
		maxSize:  maxSize,
	}
}

// fileName maps a cache key to a file name inside the cache directory.
func fileName(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_").Replace(key) + ".json"
}

func (c *FileCache) loadCacheFiles() error {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := time.Now()
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		path := filepath.Join(c.dir, file.Name())
		data, err := os.ReadFile(path) // #nosec G304 -- path is inside the cache dir
		if err != nil {
			getCacheLogger().Debug("Warning: Failed to read cache file %s: %v", file.Name(), err)
			continue
		}

		var item CacheItem
		if err := json.Unmarshal(data, &item); err != nil {
			getCacheLogger().Debug("Warning: Failed to parse cache file %s: %v", file.Name(), err)
			continue
		}

		if item.expired(now) {
			if err := os.Remove(path); err != nil {
				getCacheLogger().Debug("Warning: Failed to remove expired cache file %s: %v", file.Name(), err)
			}
			continue
		}

		key := strings.TrimSuffix(file.Name(), ".json")
		c.inMemory[key] = c.lruList.PushFront(&lruEntry{key: key, item: &item})
	}

	return nil
}

// Get retrieves data from the cache and updates LRU order.
func (c *FileCache) Get(key string, dest interface{}) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, exists := c.inMemory[key]
	if !exists {
		getCacheLogger().Debug("Cache miss for: %s", key)
		return false, nil
	}

	entry := element.Value.(*lruEntry)
	if entry.item.expired(time.Now()) {
		c.lruList.Remove(element)
		delete(c.inMemory, key)
		getCacheLogger().Debug("Cache item expired: %s", key)

		if err := c.removeFile(key); err != nil {
			return false, fmt.Errorf("failed to remove expired cache file: %w", err)
		}
		return false, nil
	}

	c.lruList.MoveToFront(element)

	if err := json.Unmarshal(entry.item.Data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	getCacheLogger().Debug("Cache hit for: %s", key)
	return true, nil
}

// Set stores data in the cache.
func (c *FileCache) Set(key string, data interface{}, ttl time.Duration) error {
	item, err := newCacheItem(data, ttl)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, exists := c.inMemory[key]; exists {
		element.Value.(*lruEntry).item = item
		c.lruList.MoveToFront(element)
	} else {
		c.inMemory[key] = c.lruList.PushFront(&lruEntry{key: key, item: item})
		if c.maxSize > 0 && c.lruList.Len() > c.maxSize {
			c.evictLRU()
		}
	}

	if c.persisted {
		bytes, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal cache item: %w", err)
		}
		if err := os.WriteFile(filepath.Join(c.dir, fileName(key)), bytes, 0o600); err != nil {
			return fmt.Errorf("failed to write cache file: %w", err)
		}
	}

	getCacheLogger().Debug("Cached item: %s with TTL %v", key, ttl)
	return nil
}

// evictLRU must be called with mutex held.
func (c *FileCache) evictLRU() {
	element := c.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*lruEntry)
	c.lruList.Remove(element)
	delete(c.inMemory, entry.key)

	getCacheLogger().Debug("Evicted LRU item: %s (cache size limit: %d)", entry.key, c.maxSize)

	if err := c.removeFile(entry.key); err != nil {
		getCacheLogger().Debug("Failed to remove evicted cache file: %v", err)
	}
}

func (c *FileCache) removeFile(key string) error {
	if !c.persisted {
		return nil
	}
	if err := os.Remove(filepath.Join(c.dir, fileName(key))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Delete removes an item from the cache.
func (c *FileCache) Delete(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if element, exists := c.inMemory[key]; exists {
		c.lruList.Remove(element)
		delete(c.inMemory, key)
	}

	if err := c.removeFile(key); err != nil {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}

	getCacheLogger().Debug("Deleted cache item: %s", key)
	return nil
}

// Clear removes all items from the cache.
func (c *FileCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.inMemory = make(map[string]*list.Element)
	c.lruList = list.New()

	if !c.persisted {
		return nil
	}

	files, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, file.Name())); err != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", file.Name(), err)
		}
	}

	return nil
}

// Len returns the number of items held in memory.
func (c *FileCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.lruList.Len()
}

// Close is a no-op for FileCache.
func (c *FileCache) Close() error {
	return nil
}

// Open returns the persistent cache for dir: a badger database under
// dir/badger, retried once on lock contention. When badger cannot be opened
// the error is returned together with an in-memory cache so the caller can
// continue without persistence.
func Open(dir string) (Cache, error) {
	badgerDir := filepath.Join(dir, "badger")
	if err := os.MkdirAll(badgerDir, 0o750); err != nil {
		return NewMemoryCache(), fmt.Errorf("failed to create badger directory: %w", err)
	}

	lockFileExists := false
	if _, err := os.Stat(filepath.Join(badgerDir, "LOCK")); err == nil {
		lockFileExists = true
		getCacheLogger().Debug("Found existing BadgerDB lock file")
	}

	getCacheLogger().Debug("Attempting to initialize BadgerDB cache at %s", badgerDir)

	badgerCache, err := NewBadgerCache(badgerDir)
	if err != nil && lockFileExists {
		getCacheLogger().Debug("Lock contention detected, waiting for lock release...")
		time.Sleep(500 * time.Millisecond)
		badgerCache, err = NewBadgerCache(badgerDir)
	}
	if err != nil {
		getCacheLogger().Debug("Failed to initialize BadgerDB cache: %v", err)
		getCacheLogger().Debug("Using temporary in-memory cache - no persistence will be available")
		return NewMemoryCache(), err
	}

	if n, err := badgerCache.Len(DefaultBadgerOptions.SweepPrefix); err == nil {
		getCacheLogger().Debug("Initialized BadgerDB cache with %d result entries", n)
	}
	return badgerCache, nil
}
