// Package adapters bridges insightview's internal configuration, logging and
// caching packages to the interfaces consumed by the query client, the result
// store and the scroll coordinator.
//
// Available Adapters:
//
//   - ConfigAdapter: Wraps config.Config to implement interfaces.Config
//   - LoggerAdapter: Wraps logger.Logger to implement interfaces.Logger
//   - CacheAdapter: Wraps cache.Cache to implement interfaces.Cache
//
// Example usage:
//
//	cfg := config.NewConfig()
//	log := adapters.NewLoggerAdapter(cfg)
//	client, err := api.NewClient(adapters.NewConfigAdapter(cfg), api.WithLogger(log))
//
// All adapters delegate thread safety to their underlying implementations.
package adapters

import (
	"os"
	"path/filepath"
	"time"

	"github.com/devnullvoid/insightview/internal/cache"
	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/logger"
	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// ConfigAdapter adapts the application config to the API interface.
type ConfigAdapter struct {
	*config.Config
}

// NewConfigAdapter creates a new config adapter.
func NewConfigAdapter(cfg *config.Config) interfaces.Config {
	return &ConfigAdapter{Config: cfg}
}

// LoggerAdapter adapts the internal logger to the API interface.
type LoggerAdapter struct {
	logger *logger.Logger
}

// NewLoggerAdapter creates a logger adapter writing to insightview.log in the
// configured cache directory. If that directory cannot be created or written,
// it falls back to a stdout logger.
func NewLoggerAdapter(cfg *config.Config) interfaces.Logger {
	level := logger.LevelFor(cfg.Debug)

	if cfg.CacheDir != "" && writableDir(cfg.CacheDir) {
		internalLogger, err := logger.NewInternalLogger(level, cfg.CacheDir)
		if err == nil {
			return &LoggerAdapter{logger: internalLogger}
		}
	}

	return &LoggerAdapter{logger: logger.NewSimpleLogger(level)}
}

func writableDir(dir string) bool {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return false
	}
	_ = file.Close()
	_ = os.Remove(testFile)

	return true
}

// NewSimpleLoggerAdapter creates a logger adapter with simple stdout logging.
func NewSimpleLoggerAdapter(debugEnabled bool) interfaces.Logger {
	return &LoggerAdapter{logger: logger.NewSimpleLogger(logger.LevelFor(debugEnabled))}
}

// WrapLogger adapts an existing internal logger.
func WrapLogger(l *logger.Logger) *LoggerAdapter {
	return &LoggerAdapter{logger: l}
}

func (l *LoggerAdapter) Debug(format string, args ...interface{}) {
	l.logger.Debug(format, args...)
}

func (l *LoggerAdapter) Info(format string, args ...interface{}) {
	l.logger.Info(format, args...)
}

func (l *LoggerAdapter) Error(format string, args ...interface{}) {
	l.logger.Error(format, args...)
}

// GetInternalLogger returns the wrapped logger, for closing its log file.
func (l *LoggerAdapter) GetInternalLogger() *logger.Logger {
	return l.logger
}

// CacheAdapter adapts a cache.Cache to the API interface, hiding Close from
// consumers that do not own the cache.
type CacheAdapter struct {
	cache cache.Cache
}

// NewCacheAdapter creates a new cache adapter over c.
func NewCacheAdapter(c cache.Cache) interfaces.Cache {
	return &CacheAdapter{cache: c}
}

func (c *CacheAdapter) Get(key string, dest interface{}) (bool, error) {
	return c.cache.Get(key, dest)
}

func (c *CacheAdapter) Set(key string, value interface{}, ttl time.Duration) error {
	return c.cache.Set(key, value, ttl)
}

func (c *CacheAdapter) Delete(key string) error {
	return c.cache.Delete(key)
}

func (c *CacheAdapter) Clear() error {
	return c.cache.Clear()
}
