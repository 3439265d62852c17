package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/insightview/internal/cache"
	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/logger"
)

func TestConfigAdapter(t *testing.T) {
	cfg := &config.Config{
		Endpoint:    "https://search.example.com",
		GraphQLPath: "/.internal/graphql",
		Token:       "sgp_token",
		Insecure:    true,
		Timeout:     7 * time.Second,
	}

	adapter := NewConfigAdapter(cfg)
	require.NotNil(t, adapter)

	assert.Equal(t, cfg.Endpoint, adapter.GetEndpoint())
	assert.Equal(t, cfg.GraphQLPath, adapter.GetGraphQLPath())
	assert.Equal(t, cfg.Token, adapter.GetToken())
	assert.True(t, adapter.GetInsecure())
	assert.Equal(t, 7*time.Second, adapter.GetTimeout())

	cfg.Token = "rotated"
	assert.Equal(t, "rotated", adapter.GetToken(), "adapter reads through to the config")
}

func TestNewSimpleLoggerAdapter(t *testing.T) {
	for _, debug := range []bool{true, false} {
		adapter := NewSimpleLoggerAdapter(debug)
		require.NotNil(t, adapter)

		assert.NotPanics(t, func() {
			adapter.Debug("debug message: %s", "test")
			adapter.Info("info message: %s", "test")
			adapter.Error("error message: %s", "test")
		})
	}
}

func TestNewLoggerAdapter(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("writes to cache dir", func(t *testing.T) {
		adapter := NewLoggerAdapter(&config.Config{Debug: true, CacheDir: tempDir})
		la, ok := adapter.(*LoggerAdapter)
		require.True(t, ok)
		t.Cleanup(func() { _ = la.GetInternalLogger().Close() })

		adapter.Debug("hello %s", "file")
		assert.Equal(t, logger.LevelDebug, la.GetInternalLogger().GetLevel())

		_, err := os.Stat(filepath.Join(tempDir, logger.LogFileName))
		assert.NoError(t, err)
	})

	t.Run("unwritable cache dir falls back", func(t *testing.T) {
		blocker := filepath.Join(tempDir, "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		adapter := NewLoggerAdapter(&config.Config{CacheDir: filepath.Join(blocker, "sub")})
		la, ok := adapter.(*LoggerAdapter)
		require.True(t, ok)
		assert.Equal(t, logger.LevelInfo, la.GetInternalLogger().GetLevel())
		assert.NotPanics(t, func() { adapter.Info("stdout") })
	})
}

func TestWrapLogger(t *testing.T) {
	var buf bytes.Buffer
	adapter := WrapLogger(logger.NewWriterLogger(logger.LevelInfo, &buf))

	adapter.Info("search %q", "repo:foo")
	adapter.Debug("hidden")

	assert.Contains(t, buf.String(), `search "repo:foo"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestCacheAdapter(t *testing.T) {
	adapter := NewCacheAdapter(cache.NewMemoryCache())
	require.NotNil(t, adapter)

	require.NoError(t, adapter.Set("key", "value", time.Hour))

	var result string
	found, err := adapter.Get("key", &result)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", result)

	require.NoError(t, adapter.Delete("key"))
	found, err = adapter.Get("key", &result)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheAdapter_ComplexData(t *testing.T) {
	adapter := NewCacheAdapter(cache.NewMemoryCache())

	value := map[string]interface{}{
		"name":   "test",
		"active": true,
		"scores": []int{1, 2, 3},
	}
	require.NoError(t, adapter.Set("complex", value, time.Hour))

	var result map[string]interface{}
	found, err := adapter.Get("complex", &result)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "test", result["name"])
	assert.Equal(t, true, result["active"])
}

func TestCacheAdapter_Clear(t *testing.T) {
	adapter := NewCacheAdapter(cache.NewMemoryCache())

	keys := []string{"key1", "key2", "key3"}
	for _, key := range keys {
		require.NoError(t, adapter.Set(key, "value-"+key, time.Hour))
	}

	require.NoError(t, adapter.Clear())

	for _, key := range keys {
		var result string
		found, err := adapter.Get(key, &result)
		assert.NoError(t, err)
		assert.False(t, found)
	}
}

func TestCacheAdapter_TTL(t *testing.T) {
	adapter := NewCacheAdapter(cache.NewMemoryCache())

	require.NoError(t, adapter.Set("ttl", "value", 20*time.Millisecond))

	var result string
	found, err := adapter.Get("ttl", &result)
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(50 * time.Millisecond)

	found, err = adapter.Get("ttl", &result)
	require.NoError(t, err)
	assert.False(t, found)
}
