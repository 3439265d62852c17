package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/pkg/api"
)

func searchServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"search":{"results":{"limitHit":false,"cloning":[],"missing":[{"name":"github.com/a/b"}],"timedout":[],"matchCount":12}}}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Endpoint = endpoint
	cfg.CacheDir = t.TempDir()
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestSearch_Headless(t *testing.T) {
	var calls atomic.Int32
	srv := searchServer(t, &calls)
	cfg := testConfig(t, srv.URL)

	rec, err := Search(context.Background(), cfg, Options{NoCache: true}, "needle", false)
	require.NoError(t, err)

	assert.Equal(t, "needle", rec.Key.Query)
	assert.Equal(t, 12, rec.Results.MatchCount)
	assert.Equal(t, []api.Repo{{Name: "github.com/a/b"}}, rec.Results.Missing)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_PersistentCacheServesRepeat(t *testing.T) {
	var calls atomic.Int32
	srv := searchServer(t, &calls)
	cfg := testConfig(t, srv.URL)

	_, err := Search(context.Background(), cfg, Options{}, "needle", false)
	require.NoError(t, err)
	_, err = Search(context.Background(), cfg, Options{}, "needle", false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second search is served from the cache directory")

	_, err = Search(context.Background(), cfg, Options{}, "needle", true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	cfg := testConfig(t, srv.URL)

	_, err := Search(context.Background(), cfg, Options{NoCache: true}, "needle", false)

	var se *api.SearchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, api.KindStatus, se.Kind)
}

func TestNewServices_WiresMetrics(t *testing.T) {
	var calls atomic.Int32
	srv := searchServer(t, &calls)
	cfg := testConfig(t, srv.URL)

	svc, err := NewServices(cfg, Options{NoCache: true})
	require.NoError(t, err)
	defer svc.Close()

	key := store.NewKey(api.SearchRequest{Query: "needle", Params: cfg.Params})
	_, err = svc.Loader.Load(context.Background(), key, false)
	require.NoError(t, err)
	_, err = svc.Loader.Load(context.Background(), key, false)
	require.NoError(t, err)

	expected := `
# HELP insightview_store_hits_total Loads served from the result store.
# TYPE insightview_store_hits_total counter
insightview_store_hits_total 1
# HELP insightview_store_writes_total Records written to the result store.
# TYPE insightview_store_writes_total counter
insightview_store_writes_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(svc.Metrics.Registry(), strings.NewReader(expected),
		"insightview_store_hits_total", "insightview_store_writes_total"))
}

func TestStartMetrics(t *testing.T) {
	var calls atomic.Int32
	srv := searchServer(t, &calls)
	cfg := testConfig(t, srv.URL)

	svc, err := NewServices(cfg, Options{NoCache: true})
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, err := startMetrics(ctx, svc, "")
	require.NoError(t, err)
	assert.Empty(t, status)

	status, err = startMetrics(ctx, svc, "127.0.0.1:0")
	require.NoError(t, err)
	require.Contains(t, status, "metrics 127.0.0.1:")

	resp, err := http.Get("http://" + status[len("metrics "):] + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
