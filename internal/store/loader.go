package store

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/devnullvoid/insightview/pkg/api"
	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// Observer receives loader outcomes for metrics.
type Observer interface {
	SearchCompleted(d time.Duration, err error)
	CacheHit()
}

type noopObserver struct{}

func (noopObserver) SearchCompleted(time.Duration, error) {}

func (noopObserver) CacheHit() {}

// Loader serves records from the store and falls back to the query client.
// Concurrent loads of the same key share one search.
type Loader struct {
	store    *Store
	searcher api.Searcher
	logger   interfaces.Logger
	observer Observer
	group    singleflight.Group
}

// NewLoader combines a store and a searcher.
func NewLoader(s *Store, searcher api.Searcher, logger interfaces.Logger, observer Observer) *Loader {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	if observer == nil {
		observer = noopObserver{}
	}

	return &Loader{
		store:    s,
		searcher: searcher,
		logger:   logger,
		observer: observer,
	}
}

// Load returns the stored record for key, running the search only on a
// miss or when refresh is set. A failed search leaves the store untouched.
func (l *Loader) Load(ctx context.Context, key Key, refresh bool) (Record, error) {
	if !refresh {
		rec, found, err := l.store.Get(key)
		if err != nil {
			l.logger.Debug("Store read failed, searching instead: %v", err)
		} else if found {
			l.logger.Debug("Cache hit for %q", key.Label())
			l.observer.CacheHit()
			return rec, nil
		}
	}

	v, err, shared := l.group.Do(key.String(), func() (interface{}, error) {
		start := time.Now()
		results, err := l.searcher.Search(ctx, key.Request().Text())
		l.observer.SearchCompleted(time.Since(start), err)
		if err != nil {
			return Record{}, err
		}

		return l.store.Put(key, *results)
	})
	if shared {
		l.logger.Debug("Joined in-flight search for %q", key.Label())
	}
	if err != nil {
		return Record{}, err
	}

	return v.(Record), nil
}
