package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed search.
type ErrorKind string

const (
	// KindEncode means the request body could not be built.
	KindEncode ErrorKind = "encode"
	// KindTransport covers connection failures, timeouts and cancellation.
	KindTransport ErrorKind = "transport"
	// KindStatus means the backend answered with a non-2xx status.
	KindStatus ErrorKind = "status"
	// KindDecode means the response body was not a GraphQL response.
	KindDecode ErrorKind = "decode"
	// KindGraphQL means the backend reported errors in the response.
	KindGraphQL ErrorKind = "graphql"
)

// SearchError is the single error type returned by Client searches.
type SearchError struct {
	Kind       ErrorKind
	Query      string
	StatusCode int
	Errors     []GraphQLError
	Err        error
}

func (e *SearchError) Error() string {
	var b strings.Builder

	b.WriteString("search")
	if e.Query != "" {
		fmt.Fprintf(&b, " %q", e.Query)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)

	switch {
	case e.Kind == KindStatus:
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	case e.Kind == KindGraphQL && len(e.Errors) > 0:
		msgs := make([]string, 0, len(e.Errors))
		for _, ge := range e.Errors {
			msgs = append(msgs, ge.Message)
		}
		fmt.Fprintf(&b, ": %s", strings.Join(msgs, "; "))
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *SearchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
