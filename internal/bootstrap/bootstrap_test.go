package bootstrap

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/pkg/api"
)

func isolateEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, name := range []string{"ENDPOINT", "TOKEN", "GRAPHQL_PATH", "TIMEOUT", "SCROLL_DIRECTION", "METRICS_ADDR"} {
		t.Setenv("INSIGHTVIEW_"+name, "")
	}
	t.Chdir(dir)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolveConfigPathForInitFallback(t *testing.T) {
	isolateEnv(t)

	assert.Equal(t, config.GetDefaultConfigPath(), ResolveConfigPathForInit(""))
}

func TestResolveConfigPathForInitFlag(t *testing.T) {
	flagPath := filepath.Join(t.TempDir(), "custom.yml")

	assert.Equal(t, flagPath, ResolveConfigPathForInit(flagPath))
}

func TestBootstrap_Version(t *testing.T) {
	var out bytes.Buffer

	result, err := Bootstrap(BootstrapOptions{Version: true}, &out)

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Contains(t, out.String(), "insightview")
}

func TestBootstrap_FlagsOverrideFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
endpoint: https://file.example.com
timeout: 10s
scroll:
  direction: top-to-bottom
`)

	result, err := Bootstrap(BootstrapOptions{
		ConfigPath:          path,
		NoCache:             true,
		FlagEndpoint:        "https://flag.example.com",
		FlagTimeout:         5 * time.Second,
		FlagScrollDirection: "left-to-right",
		FlagMetricsAddr:     "127.0.0.1:9100",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, path, result.ConfigPath)
	assert.True(t, result.NoCache)
	assert.Equal(t, "https://flag.example.com", result.Config.Endpoint)
	assert.Equal(t, 5*time.Second, result.Config.Timeout)
	assert.Equal(t, "left-to-right", result.Config.Scroll.Direction)
	assert.Equal(t, "127.0.0.1:9100", result.Config.MetricsAddr)
	assert.Equal(t, api.DefaultGraphQLPath, result.Config.GraphQLPath)
}

func TestBootstrap_FileValuesKeptWithoutFlags(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "endpoint: https://file.example.com\ntimeout: 10s\n")

	result, err := Bootstrap(BootstrapOptions{ConfigPath: path}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", result.Config.Endpoint)
	assert.Equal(t, 10*time.Second, result.Config.Timeout)
}

func TestBootstrap_MissingEndpoint(t *testing.T) {
	isolateEnv(t)

	_, err := Bootstrap(BootstrapOptions{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 2, ExitCode(err))
}

func TestBootstrap_BadScrollDirection(t *testing.T) {
	isolateEnv(t)

	_, err := Bootstrap(BootstrapOptions{
		FlagEndpoint:        "https://search.example.com",
		FlagScrollDirection: "diagonal",
	}, &bytes.Buffer{})

	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "scroll.direction")
}

func TestBootstrap_UnreadableFile(t *testing.T) {
	isolateEnv(t)

	_, err := Bootstrap(BootstrapOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
	}, &bytes.Buffer{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestStartApplication_NilResult(t *testing.T) {
	err := StartApplication(t.Context(), nil, &bytes.Buffer{})

	assert.Error(t, err)
}

func TestHandleStartupError_Hints(t *testing.T) {
	cfg := &config.Config{Endpoint: "https://search.example.com"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid config",
			err:  fmt.Errorf("%w: endpoint required", ErrInvalidConfig),
			want: "config init",
		},
		{
			name: "transport",
			err:  &api.SearchError{Kind: api.KindTransport, Err: errors.New("dial tcp: refused")},
			want: "Current endpoint: https://search.example.com",
		},
		{
			name: "unauthorized",
			err:  &api.SearchError{Kind: api.KindStatus, StatusCode: 401},
			want: "INSIGHTVIEW_TOKEN",
		},
		{
			name: "decode",
			err:  fmt.Errorf("search: %w", &api.SearchError{Kind: api.KindDecode}),
			want: "not GraphQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			got := HandleStartupError(tt.err, cfg, &out)

			assert.Same(t, tt.err, got)
			assert.Contains(t, out.String(), "❌")
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestHandleStartupError_NoHint(t *testing.T) {
	var out bytes.Buffer

	_ = HandleStartupError(errors.New("boom"), nil, &out)

	assert.Equal(t, "❌ boom\n", out.String())
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 0, ExitCode(nil))
}
