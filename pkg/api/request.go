package api

import (
	"sort"
	"strings"
)

// SearchRequest is a query plus structured parameters. Parameters are
// rendered as key:value filters after the query text.
type SearchRequest struct {
	Query  string
	Params map[string]string
}

// Text returns the query string sent to the backend. Parameters are sorted
// by key so equal requests produce equal text. Empty values are skipped.
func (r SearchRequest) Text() string {
	if len(r.Params) == 0 {
		return r.Query
	}

	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		if k == "" || r.Params[k] == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	if q := strings.TrimSpace(r.Query); q != "" {
		parts = append(parts, q)
	}
	for _, k := range keys {
		parts = append(parts, k+":"+r.Params[k])
	}

	return strings.Join(parts, " ")
}
