package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/pkg/api"
)

// resetFlags restores every flag to its default so executions do not leak
// into each other through the shared RootCmd.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("INSIGHTVIEW_ENDPOINT", "")
	t.Setenv("INSIGHTVIEW_TOKEN", "")
	t.Chdir(dir)

	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func findCommand(t *testing.T, parent *cobra.Command, use string) *cobra.Command {
	t.Helper()

	for _, cmd := range parent.Commands() {
		if cmd.Name() == use {
			return cmd
		}
	}
	t.Fatalf("command %q not registered on %q", use, parent.Name())
	return nil
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "insightview", RootCmd.Use)
	assert.NotEmpty(t, RootCmd.Short)
	assert.NotEmpty(t, RootCmd.Long)
}

func TestSubcommands(t *testing.T) {
	for _, name := range []string{"search", "config", "version"} {
		cmd := findCommand(t, RootCmd, name)
		assert.NotEmpty(t, cmd.Short, name)
	}

	configCmd := findCommand(t, RootCmd, "config")
	for _, name := range []string{"init", "encrypt", "show"} {
		findCommand(t, configCmd, name)
	}
}

func TestPersistentFlags(t *testing.T) {
	expectedFlags := []string{
		"config",
		"no-cache",
		"version",
		"endpoint",
		"token",
		"graphql-path",
		"insecure",
		"timeout",
		"debug",
		"cache-dir",
		"metrics-addr",
		"scroll-direction",
	}

	for _, flagName := range expectedFlags {
		assert.NotNil(t, RootCmd.PersistentFlags().Lookup(flagName), flagName)
	}
}

func TestResolveOutput(t *testing.T) {
	var buf bytes.Buffer

	got, err := resolveOutput(outputAuto, &buf)
	require.NoError(t, err)
	assert.Equal(t, outputJSON, got, "non-terminal writers get JSON")

	got, err = resolveOutput(outputText, &buf)
	require.NoError(t, err)
	assert.Equal(t, outputText, got)

	_, err = resolveOutput("xml", &buf)
	assert.Error(t, err)
}

func TestWriteRecord(t *testing.T) {
	rec := store.Record{
		Key:      store.Key{Query: "TODO"},
		Results:  api.SearchResults{MatchCount: 3},
		StoredAt: time.Now(),
	}

	var text bytes.Buffer
	require.NoError(t, writeRecord(&text, rec, outputText))
	assert.Contains(t, text.String(), "Query:  TODO\n")
	assert.Contains(t, text.String(), "Result: 3 matches\n")

	var js bytes.Buffer
	require.NoError(t, writeRecord(&js, rec, outputJSON))
	var decoded store.Record
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "TODO", decoded.Key.Query)
	assert.Equal(t, 3, decoded.Results.MatchCount)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "insightview")
}

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"search":{"results":{"limitHit":true,"cloning":[],"missing":[],"timedout":[],"matchCount":500}}}}`)
	}))
	t.Cleanup(srv.Close)

	out, _, err := execute(t, "search", "--endpoint", srv.URL, "--cache-dir", t.TempDir(), "--no-cache",
		"-o", "json", "TODO", "lang:go")
	require.NoError(t, err)

	var rec store.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "TODO lang:go", rec.Key.Query)
	assert.Equal(t, 500, rec.Results.MatchCount)
	assert.True(t, rec.Results.LimitHit)
}

func TestSearchCommand_MissingEndpoint(t *testing.T) {
	_, stderr, err := execute(t, "search", "TODO")

	require.Error(t, err)
	assert.Contains(t, stderr, "config init")
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	_, _, err := execute(t, "search")

	assert.Error(t, err)
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	out, _, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigShowRedactsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: https://search.example.com\ntoken: sgp_secret\n"), 0o600))

	out, _, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "endpoint: https://search.example.com")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "sgp_secret")
}

func TestConfigEncryptCommand(t *testing.T) {
	config.SetAgeDirOverride(t.TempDir())
	t.Cleanup(func() { config.SetAgeDirOverride("") })

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: https://search.example.com\ntoken: sgp_secret\n"), 0o600))

	out, _, err := execute(t, "config", "encrypt", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Token encrypted")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sgp_secret")
	assert.Contains(t, string(data), "age1:")

	out, _, err = execute(t, "config", "encrypt", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to encrypt")
}

func TestConfigEncryptCommand_NoFile(t *testing.T) {
	_, _, err := execute(t, "config", "encrypt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config init")
}
