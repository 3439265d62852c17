// Package app assembles the search stack and runs it, either behind the
// terminal UI or headless for one-off searches.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/devnullvoid/insightview/internal/adapters"
	"github.com/devnullvoid/insightview/internal/cache"
	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/logger"
	"github.com/devnullvoid/insightview/internal/metrics"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/internal/ui"
	"github.com/devnullvoid/insightview/internal/ui/components"
	"github.com/devnullvoid/insightview/internal/version"
	"github.com/devnullvoid/insightview/pkg/api"
	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// Options configures Run and Search.
type Options struct {
	// NoCache keeps results in memory only.
	NoCache bool
}

// Services is the assembled search stack.
type Services struct {
	Logger  interfaces.Logger
	Cache   cache.Cache
	Store   *store.Store
	Client  *api.Client
	Loader  *store.Loader
	Metrics *metrics.Metrics

	unobserve func()
}

// NewServices builds the stack described by cfg. Close releases it.
func NewServices(cfg *config.Config, opts Options) (*Services, error) {
	level := logger.LevelFor(cfg.Debug)
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	if err := logger.InitGlobalLogger(level, cfg.CacheDir); err != nil {
		logger.NewSimpleLogger(level).Error("failed to init global logger: %v", err)
	}

	loggerAdapter := adapters.NewLoggerAdapter(cfg)
	cache.SetLogger(loggerAdapter)

	var c cache.Cache
	if opts.NoCache {
		c = cache.NewMemoryCache()
	} else {
		var err error
		c, err = cache.Open(cfg.CacheDir)
		if err != nil {
			// Open still returns a usable in-memory cache.
			loggerAdapter.Error("failed to open result cache: %v", err)
		}
	}

	s := store.New(adapters.NewCacheAdapter(c),
		store.WithTTL(cfg.ResultTTL),
		store.WithLogger(loggerAdapter),
	)

	client, err := api.NewClient(
		adapters.NewConfigAdapter(cfg),
		api.WithLogger(loggerAdapter),
		api.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	m := metrics.New()
	return &Services{
		Logger:    loggerAdapter,
		Cache:     c,
		Store:     s,
		Client:    client,
		Loader:    store.NewLoader(s, client, loggerAdapter, m),
		Metrics:   m,
		unobserve: m.ObserveStore(s),
	}, nil
}

// Close releases the cache and the global logger.
func (s *Services) Close() error {
	s.unobserve()
	err := s.Cache.Close()
	if lerr := logger.CloseGlobalLogger(); lerr != nil && err == nil {
		err = lerr
	}
	return err
}

// Run starts the terminal UI. It blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	svc, err := NewServices(cfg, opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	status, err := startMetrics(ctx, svc, cfg.MetricsAddr)
	if err != nil {
		return err
	}

	svc.Logger.Info("Starting %s against %s", version.ProjectName, cfg.Endpoint)
	return ui.RunApp(ctx, components.Deps{
		Config:   cfg,
		Store:    svc.Store,
		Loader:   svc.Loader,
		Logger:   svc.Logger,
		Recorder: svc.Metrics,
		Status:   status,
	})
}

// Search runs one search without the UI and returns the stored record.
func Search(ctx context.Context, cfg *config.Config, opts Options, query string, refresh bool) (store.Record, error) {
	svc, err := NewServices(cfg, opts)
	if err != nil {
		return store.Record{}, err
	}
	defer svc.Close()

	key := store.NewKey(api.SearchRequest{Query: query, Params: cfg.Params})
	return svc.Loader.Load(ctx, key, refresh)
}

// startMetrics serves /metrics on addr until ctx is done. It returns a
// footer status line, empty when addr is empty.
func startMetrics(ctx context.Context, svc *Services, addr string) (string, error) {
	if addr == "" {
		return "", nil
	}

	srv, err := svc.Metrics.Listen(addr)
	if err != nil {
		return "", fmt.Errorf("metrics listener: %w", err)
	}

	go func() {
		if err := srv.Serve(ctx); err != nil {
			svc.Logger.Error("metrics server: %v", err)
		}
	}()

	svc.Logger.Info("Serving metrics on %s", srv.Addr())
	return "metrics " + srv.Addr(), nil
}
