package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/devnullvoid/insightview/pkg/api"
	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// DefaultTTL is how long results are kept when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// historyKey holds the ordered list of keys written through the store.
const historyKey = "result_history"

// Store keeps the latest result per key. Put replaces; observers are
// notified after every Put.
type Store struct {
	cache  interfaces.Cache
	ttl    time.Duration
	logger interfaces.Logger
	now    func() time.Time

	mu    sync.Mutex
	index []Key

	callbackMu     sync.Mutex
	callbacks      map[int]func(Record)
	nextCallbackID int
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiry of stored records. Zero keeps records forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithLogger sets the store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source for StoredAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store over cache and restores the history index from it.
func New(cache interfaces.Cache, options ...Option) *Store {
	s := &Store{
		cache:     cache,
		ttl:       DefaultTTL,
		logger:    &interfaces.NoOpLogger{},
		now:       time.Now,
		callbacks: make(map[int]func(Record)),
	}
	for _, option := range options {
		option(s)
	}

	var index []Key
	found, err := cache.Get(historyKey, &index)
	switch {
	case err != nil:
		s.logger.Debug("Failed to load result history: %v", err)
	case found:
		s.index = index
		s.logger.Debug("Loaded %d history entries", len(index))
	}

	return s
}

// Get returns the record stored under key.
func (s *Store) Get(key Key) (Record, bool, error) {
	var rec Record

	found, err := s.cache.Get(storageKey(key), &rec)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read result %q: %w", key.Label(), err)
	}
	if !found {
		return Record{}, false, nil
	}

	return rec, true, nil
}

// Put stores results under key, replacing any previous record, and notifies
// observers with the new record.
func (s *Store) Put(key Key, results api.SearchResults) (Record, error) {
	rec := Record{Key: key, Results: results, StoredAt: s.now()}

	if err := s.cache.Set(storageKey(key), rec, s.ttl); err != nil {
		return Record{}, fmt.Errorf("failed to store result %q: %w", key.Label(), err)
	}

	// The index is persisted under mu so the newest index is written last.
	s.mu.Lock()
	s.index = appendUnique(s.index, key)
	if err := s.cache.Set(historyKey, s.index, 0); err != nil {
		s.logger.Debug("Failed to persist result history: %v", err)
	}
	s.mu.Unlock()

	s.logger.Debug("Stored result for %q (%d matches)", key.Label(), results.MatchCount)
	s.notify(rec)

	return rec, nil
}

// Keys returns stored keys from oldest to newest write.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Key(nil), s.index...)
}

// Clear removes every record and the history.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()

	return s.cache.Clear()
}

// Subscribe adds a callback for stored records and returns an unregister
// function. Callbacks run synchronously on the goroutine that called Put.
func (s *Store) Subscribe(cb func(Record)) func() {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	id := s.nextCallbackID
	s.nextCallbackID++
	s.callbacks[id] = cb

	return func() {
		s.callbackMu.Lock()
		delete(s.callbacks, id)
		s.callbackMu.Unlock()
	}
}

func (s *Store) notify(rec Record) {
	s.callbackMu.Lock()
	callbacks := make([]func(Record), 0, len(s.callbacks))
	for _, cb := range s.callbacks {
		callbacks = append(callbacks, cb)
	}
	s.callbackMu.Unlock()

	for _, cb := range callbacks {
		cb(rec)
	}
}

// appendUnique moves key to the end of index.
func appendUnique(index []Key, key Key) []Key {
	composite := key.String()
	out := index[:0]
	for _, k := range index {
		if k.String() != composite {
			out = append(out, k)
		}
	}
	return append(out, key)
}
