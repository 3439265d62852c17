// Package testutils provides mocks and fakes for the interfaces in
// pkg/api/interfaces.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/devnullvoid/insightview/pkg/api"
)

// MockLogger is a mock implementation of the Logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.Called(format, args)
}

// MockCache is a mock implementation of the Cache interface
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, dest interface{}) (bool, error) {
	args := m.Called(key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value interface{}, ttl time.Duration) error {
	args := m.Called(key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCache) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// MockSearcher is a mock implementation of api.Searcher
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) (*api.SearchResults, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).(*api.SearchResults)
	return results, args.Error(1)
}

// TestConfig is a simple test implementation of the Config interface
type TestConfig struct {
	Endpoint    string
	GraphQLPath string
	Token       string
	Insecure    bool
	Timeout     time.Duration
}

func (c *TestConfig) GetEndpoint() string       { return c.Endpoint }
func (c *TestConfig) GetGraphQLPath() string    { return c.GraphQLPath }
func (c *TestConfig) GetToken() string          { return c.Token }
func (c *TestConfig) GetInsecure() bool         { return c.Insecure }
func (c *TestConfig) GetTimeout() time.Duration { return c.Timeout }

// NewTestConfig creates a test configuration pointing at endpoint.
func NewTestConfig(endpoint string) *TestConfig {
	return &TestConfig{
		Endpoint: endpoint,
		Timeout:  5 * time.Second,
	}
}

// TestLogger is a simple test logger that captures log messages
type TestLogger struct {
	mu            sync.Mutex
	DebugMessages []string
	InfoMessages  []string
	ErrorMessages []string
}

func (l *TestLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.DebugMessages = append(l.DebugMessages, fmt.Sprintf(format, args...))
}

func (l *TestLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.InfoMessages = append(l.InfoMessages, fmt.Sprintf(format, args...))
}

func (l *TestLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ErrorMessages = append(l.ErrorMessages, fmt.Sprintf(format, args...))
}

func (l *TestLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.DebugMessages = nil
	l.InfoMessages = nil
	l.ErrorMessages = nil
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	return &TestLogger{
		DebugMessages: make([]string, 0),
		InfoMessages:  make([]string, 0),
		ErrorMessages: make([]string, 0),
	}
}

// InMemoryCache is an in-memory cache for testing. Values are stored as JSON
// so Get behaves like the persistent caches. TTLs are ignored.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *InMemoryCache) Get(key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	raw, exists := c.data[key]
	c.mu.Unlock()

	if !exists {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}

	return true, nil
}

func (c *InMemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()

	return nil
}

func (c *InMemoryCache) Delete(key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()

	return nil
}

func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	c.data = make(map[string][]byte)
	c.mu.Unlock()

	return nil
}

// Len returns the number of stored keys.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.data)
}

// NewInMemoryCache creates a new in-memory cache for testing
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string][]byte),
	}
}

// AssertLogContains checks if a log message contains the expected text
func AssertLogContains(t *testing.T, logger *TestLogger, level string, expectedText string) {
	t.Helper()

	logger.mu.Lock()
	var messages []string
	switch level {
	case "debug":
		messages = append(messages, logger.DebugMessages...)
	case "info":
		messages = append(messages, logger.InfoMessages...)
	case "error":
		messages = append(messages, logger.ErrorMessages...)
	default:
		logger.mu.Unlock()
		t.Fatalf("Unknown log level: %s", level)
	}
	logger.mu.Unlock()

	for _, msg := range messages {
		if strings.Contains(msg, expectedText) {
			return
		}
	}

	t.Errorf("Expected %s log to contain '%s', but it was not found. Messages: %v", level, expectedText, messages)
}
