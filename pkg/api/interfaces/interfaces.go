// Package interfaces defines the core interfaces used throughout insightview.
//
// It provides small abstractions for logging, caching and configuration so
// the query client, the result store and the scroll coordinator can be
// constructed with injected dependencies and tested in isolation.
package interfaces

import "time"

// Logger defines the interface for leveled logging.
//
// Implementations should be safe for concurrent use. The format parameter
// follows fmt.Printf conventions.
//
// Example usage:
//
//	logger.Debug("scroll(%s): observing viewport", dir)
//	logger.Info("search %q returned %d matches", query, n)
//	logger.Error("failed to store results: %v", err)
type Logger interface {
	// Debug logs debug-level messages. These are only written when debug
	// logging is enabled.
	Debug(format string, args ...interface{})

	// Info logs informational messages about normal application flow.
	Info(format string, args ...interface{})

	// Error logs error messages for exceptional conditions.
	Error(format string, args ...interface{})
}

// Cache defines the interface for key-value caching with expiry.
//
// The dest parameter in Get must be a pointer to the type the stored value
// should be unmarshaled into.
//
// Example usage:
//
//	cache.Set("result_ab12", record, 24*time.Hour)
//
//	var rec store.Record
//	found, err := cache.Get("result_ab12", &rec)
type Cache interface {
	// Get retrieves a value and unmarshals it into dest. It returns true if
	// the key was found and not expired.
	Get(key string, dest interface{}) (bool, error)

	// Set stores a value with the specified TTL. A zero ttl never expires.
	Set(key string, value interface{}, ttl time.Duration) error

	// Delete removes a specific key.
	Delete(key string) error

	// Clear removes all items.
	Clear() error
}

// Config defines the interface for accessing search endpoint settings.
type Config interface {
	// GetEndpoint returns the base URL of the search backend
	// (e.g. "https://search.example.com").
	GetEndpoint() string

	// GetGraphQLPath returns the path of the GraphQL handler, appended to
	// the endpoint.
	GetGraphQLPath() string

	// GetToken returns the access token, or empty for anonymous access.
	GetToken() string

	// GetInsecure returns true if TLS certificate verification should be
	// skipped.
	GetInsecure() bool

	// GetTimeout returns the per-request timeout. Zero means no timeout
	// beyond the caller's context.
	GetTimeout() time.Duration
}

// NoOpLogger is a logger implementation that discards all log messages.
//
// Example usage:
//
//	logger := &interfaces.NoOpLogger{}
//	client, err := api.NewClient(cfg, api.WithLogger(logger))
type NoOpLogger struct{}

// Debug discards the debug message.
func (n *NoOpLogger) Debug(format string, args ...interface{}) {}

// Info discards the info message.
func (n *NoOpLogger) Info(format string, args ...interface{}) {}

// Error discards the error message.
func (n *NoOpLogger) Error(format string, args ...interface{}) {}

// NoOpCache is a cache implementation that doesn't store anything.
//
// All Get operations return false (not found), and all Set/Delete/Clear
// operations succeed immediately without doing anything.
type NoOpCache struct{}

// Get always returns false (not found) and no error.
func (n *NoOpCache) Get(key string, dest interface{}) (bool, error) { return false, nil }

// Set always succeeds immediately without storing anything.
func (n *NoOpCache) Set(key string, value interface{}, ttl time.Duration) error { return nil }

// Delete always succeeds immediately without doing anything.
func (n *NoOpCache) Delete(key string) error { return nil }

// Clear always succeeds immediately without doing anything.
func (n *NoOpCache) Clear() error { return nil }
