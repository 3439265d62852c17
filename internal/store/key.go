// Package store keeps search results keyed by query text and parameters.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/devnullvoid/insightview/pkg/api"
)

// Key identifies a stored result: the query text plus its parameter set.
type Key struct {
	Query  string            `json:"query"`
	Params map[string]string `json:"params,omitempty"`
}

// NewKey builds a key from a search request.
func NewKey(req api.SearchRequest) Key {
	return Key{Query: req.Query, Params: req.Params}
}

// String returns the composite key: the escaped query text, "?", then the
// params encoded with sorted names. Both parts are escaped, so separators
// inside the query or a value cannot make two different searches collide.
func (k Key) String() string {
	values := make(url.Values, len(k.Params))
	for name, value := range k.Params {
		values.Set(name, value)
	}

	return url.QueryEscape(k.Query) + "?" + values.Encode()
}

// Request converts the key back into a search request.
func (k Key) Request() api.SearchRequest {
	return api.SearchRequest{Query: k.Query, Params: k.Params}
}

// Label is a short human-readable form for lists.
func (k Key) Label() string {
	text := k.Request().Text()
	if text == "" {
		return "(empty)"
	}
	return text
}

// storageKey is the cache key for k. Hashing keeps arbitrary query text out
// of file names and badger keys.
func storageKey(k Key) string {
	sum := sha256.Sum256([]byte(k.String()))
	return "result_" + hex.EncodeToString(sum[:])
}

// Record is an immutable snapshot of one stored result.
type Record struct {
	Key      Key               `json:"key"`
	Results  api.SearchResults `json:"results"`
	StoredAt time.Time         `json:"stored_at"`
}
