package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOptions tunes the badger backend. Zero fields select the defaults.
type BadgerOptions struct {
	// GCInterval is the period of value log garbage collection.
	GCInterval time.Duration
	// GCDiscardRatio is passed to RunValueLogGC.
	GCDiscardRatio float64
	// ValueLogFileSize caps each value log file. Results are small JSON
	// documents, so the default is far below badger's own.
	ValueLogFileSize int64
	// SweepPrefix selects the keys checked for expiry when the database is
	// opened. Empty disables the sweep.
	SweepPrefix string
}

// DefaultBadgerOptions are used by NewBadgerCache.
var DefaultBadgerOptions = BadgerOptions{
	GCInterval:       5 * time.Minute,
	GCDiscardRatio:   0.5,
	ValueLogFileSize: 1 << 20,
	SweepPrefix:      "result_",
}

// BadgerCache implements Cache on a badger database. Values are stored in
// the CacheItem envelope; the envelope expiry is authoritative and is also
// set as the entry TTL so compaction drops expired results.
type BadgerCache struct {
	db        *badger.DB
	opts      BadgerOptions
	stopGC    chan struct{}
	gcDone    chan struct{}
	closeOnce sync.Once
}

// NewBadgerCache opens a badger cache in dir with DefaultBadgerOptions.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	return NewBadgerCacheWithOptions(dir, DefaultBadgerOptions)
}

// NewBadgerCacheWithOptions opens a badger cache in dir, removing a lock
// file left behind by a process that no longer runs.
func NewBadgerCacheWithOptions(dir string, opts BadgerOptions) (*BadgerCache, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	if err := removeStaleLock(filepath.Join(dir, "LOCK")); err != nil {
		return nil, err
	}

	dbOpts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{}).
		WithValueLogFileSize(opts.ValueLogFileSize)

	db, err := badger.Open(dbOpts)
	if err != nil {
		if isErrorTemporarilyUnavailable(err) {
			return nil, fmt.Errorf("failed to open badger database (likely another insightview is running): %w", err)
		}
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	c := &BadgerCache{
		db:     db,
		opts:   opts,
		stopGC: make(chan struct{}),
		gcDone: make(chan struct{}),
	}

	if opts.SweepPrefix != "" {
		if n, err := c.sweep(opts.SweepPrefix, time.Now()); err != nil {
			getCacheLogger().Debug("Expired result sweep failed: %v", err)
		} else if n > 0 {
			getCacheLogger().Debug("Swept %d expired results", n)
		}
	}

	go c.runGC()

	return c, nil
}

func (o BadgerOptions) withDefaults() BadgerOptions {
	if o.GCInterval <= 0 {
		o.GCInterval = DefaultBadgerOptions.GCInterval
	}
	if o.GCDiscardRatio <= 0 || o.GCDiscardRatio >= 1 {
		o.GCDiscardRatio = DefaultBadgerOptions.GCDiscardRatio
	}
	if o.ValueLogFileSize <= 0 {
		o.ValueLogFileSize = DefaultBadgerOptions.ValueLogFileSize
	}
	return o
}

// runGC collects the value log until Close. Each tick repeats
// RunValueLogGC while it still rewrites files.
func (c *BadgerCache) runGC() {
	defer close(c.gcDone)

	ticker := time.NewTicker(c.opts.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				err := c.db.RunValueLogGC(c.opts.GCDiscardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
					getCacheLogger().Debug("Badger value log GC failed: %v", err)
				}
				break
			}
		case <-c.stopGC:
			return
		}
	}
}

// removeStaleLock deletes path when the pid it records is not running.
// A missing lock is not an error.
func removeStaleLock(path string) error {
	// #nosec G304 -- path is built from the cache directory
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		getCacheLogger().Debug("Cannot read badger lock %s: %v", path, err)
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err == nil && processAlive(pid) {
		getCacheLogger().Debug("Badger lock held by running process %d", pid)
		return nil
	}

	getCacheLogger().Debug("Removing stale badger lock %s", path)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale lock file: %w", err)
	}
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 only probes for existence.
	return process.Signal(syscall.Signal(0)) == nil
}

func isErrorTemporarilyUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
		return true
	}
	return strings.Contains(err.Error(), "resource temporarily unavailable")
}

// decodeItem reads the envelope of item.
func decodeItem(item *badger.Item) (CacheItem, error) {
	var env CacheItem
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &env)
	})
	if err != nil {
		return CacheItem{}, fmt.Errorf("unmarshal cache item %s: %w", item.Key(), err)
	}
	return env, nil
}

// Get decodes the value stored under key into dest. Expired entries are
// reported as missing and deleted.
func (c *BadgerCache) Get(key string, dest interface{}) (bool, error) {
	var env CacheItem

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		env, err = decodeItem(item)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		getCacheLogger().Debug("Cache miss for: %s", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger get %s: %w", key, err)
	}

	if env.expired(time.Now()) {
		getCacheLogger().Debug("Cache item expired: %s", key)
		if err := c.Delete(key); err != nil {
			getCacheLogger().Debug("Failed to delete expired item %s: %v", key, err)
		}
		return false, nil
	}

	if err := json.Unmarshal(env.Data, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s into destination: %w", key, err)
	}

	return true, nil
}

// Set stores data under key. A positive ttl expires the entry.
func (c *BadgerCache) Set(key string, data interface{}, ttl time.Duration) error {
	env, err := newCacheItem(data, ttl)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal cache item: %w", err)
	}

	entry := badger.NewEntry([]byte(key), raw)
	if ttl > 0 {
		// Badger TTLs have second resolution; round up so the envelope
		// always expires first.
		entry = entry.WithTTL(ttl.Truncate(time.Second) + time.Second)
	}

	if err := c.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(entry) }); err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}

	getCacheLogger().Debug("Cached item: %s with TTL %v", key, ttl)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *BadgerCache) Delete(key string) error {
	if err := c.db.Update(func(txn *badger.Txn) error { return txn.Delete([]byte(key)) }); err != nil {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}

// Clear drops every stored result and the history.
func (c *BadgerCache) Clear() error {
	getCacheLogger().Debug("Clearing badger cache")
	return c.db.DropAll()
}

// Len counts live entries whose key starts with prefix.
func (c *BadgerCache) Len(prefix string) (int, error) {
	now := time.Now()
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 32, Prefix: []byte(prefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			env, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			if !env.expired(now) {
				n++
			}
		}
		return nil
	})
	return n, err
}

// sweep deletes entries under prefix whose envelope expired before now and
// returns how many were removed. Undecodable entries are removed too.
func (c *BadgerCache) sweep(prefix string, now time.Time) (int, error) {
	var stale [][]byte

	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 32, Prefix: []byte(prefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			env, err := decodeItem(item)
			if err != nil || env.expired(now) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil || len(stale) == 0 {
		return 0, err
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("badger sweep: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("badger sweep: %w", err)
	}

	return len(stale), nil
}

// Close stops garbage collection and closes the database.
func (c *BadgerCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopGC)
		<-c.gcDone
		err = c.db.Close()
	})
	return err
}

// badgerLogger routes badger's internal logging to the cache logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	getCacheLogger().Error("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	getCacheLogger().Info("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	getCacheLogger().Debug("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	getCacheLogger().Debug("badger: "+strings.TrimSuffix(format, "\n"), args...)
}
