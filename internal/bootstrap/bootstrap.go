// Package bootstrap turns command-line options into a validated configuration
// and starts the application with it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devnullvoid/insightview/internal/app"
	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/logger"
	"github.com/devnullvoid/insightview/internal/version"
	"github.com/devnullvoid/insightview/pkg/api"
)

// BootstrapOptions contains all the options for bootstrapping the application.
type BootstrapOptions struct {
	ConfigPath string
	NoCache    bool
	Version    bool
	// Flag values for config overrides
	FlagEndpoint        string
	FlagToken           string
	FlagGraphQLPath     string
	FlagInsecure        bool
	FlagTimeout         time.Duration
	FlagDebug           bool
	FlagCacheDir        string
	FlagMetricsAddr     string
	FlagScrollDirection string
}

// BootstrapResult contains the result of the bootstrap process.
type BootstrapResult struct {
	Config     *config.Config
	ConfigPath string
	NoCache    bool
}

// ErrInvalidConfig wraps validation failures so callers can suggest a fix.
var ErrInvalidConfig = errors.New("invalid configuration")

// Bootstrap loads the configuration described by opts. A nil result with a
// nil error means the process should exit without starting the UI.
func Bootstrap(opts BootstrapOptions, out io.Writer) (*BootstrapResult, error) {
	if opts.Version {
		fmt.Fprint(out, version.Details())
		return nil, nil
	}

	cfg, configPath, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	return &BootstrapResult{
		Config:     cfg,
		ConfigPath: configPath,
		NoCache:    opts.NoCache,
	}, nil
}

// LoadConfig merges environment, file and flags, then fills defaults and
// validates. It returns the resolved config file path, empty when none was
// found.
func LoadConfig(opts BootstrapOptions) (*config.Config, string, error) {
	cfg := config.NewConfig()

	configPath := ResolveConfigPath(opts.ConfigPath)
	if configPath != "" {
		if err := cfg.MergeWithFile(configPath); err != nil {
			return nil, configPath, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyFlagsToConfig(cfg, opts)

	cfg.SetDefaults()
	config.DebugEnabled = cfg.Debug
	logger.GetGlobalLogger().SetLevel(logger.LevelFor(cfg.Debug))

	if err := cfg.Validate(); err != nil {
		return nil, configPath, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, configPath, nil
}

// applyFlagsToConfig applies command line flags to the config object
func applyFlagsToConfig(cfg *config.Config, opts BootstrapOptions) {
	if opts.FlagEndpoint != "" {
		cfg.Endpoint = opts.FlagEndpoint
	}
	if opts.FlagToken != "" {
		cfg.Token = opts.FlagToken
	}
	if opts.FlagGraphQLPath != "" {
		cfg.GraphQLPath = opts.FlagGraphQLPath
	}
	if opts.FlagInsecure {
		cfg.Insecure = true
	}
	if opts.FlagTimeout > 0 {
		cfg.Timeout = opts.FlagTimeout
	}
	if opts.FlagDebug {
		cfg.Debug = true
	}
	if opts.FlagCacheDir != "" {
		cfg.CacheDir = opts.FlagCacheDir
	}
	if opts.FlagMetricsAddr != "" {
		cfg.MetricsAddr = opts.FlagMetricsAddr
	}
	if opts.FlagScrollDirection != "" {
		cfg.Scroll.Direction = opts.FlagScrollDirection
	}
}

// StartApplication starts the terminal UI with the given configuration.
func StartApplication(ctx context.Context, result *BootstrapResult, out io.Writer) error {
	if result == nil {
		return fmt.Errorf("bootstrap result is nil")
	}

	if result.ConfigPath != "" {
		fmt.Fprintf(out, "✅ Configuration loaded from %s\n", result.ConfigPath)
	} else {
		fmt.Fprintln(out, "✅ Configuration loaded from environment variables")
	}
	if result.Config.HasCleartextSensitiveData() {
		fmt.Fprintln(out, "⚠️  Token stored in cleartext; run `insightview config encrypt` to protect it")
	}

	if err := app.Run(ctx, result.Config, app.Options{NoCache: result.NoCache}); err != nil {
		return HandleStartupError(err, result.Config, out)
	}

	fmt.Fprintln(out, "🚪 Exiting.")
	return nil
}

// ResolveConfigPath resolves the configuration file path.
func ResolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	if path, found := config.FindDefaultConfigPath(); found {
		return path
	}

	return ""
}

// ResolveConfigPathForInit returns the path `config init` writes to.
func ResolveConfigPathForInit(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return config.GetDefaultConfigPath()
}

// HandleStartupError prints a hint matching the failure and returns err.
func HandleStartupError(err error, cfg *config.Config, out io.Writer) error {
	fmt.Fprintf(out, "❌ %v\n", err)

	if hint := startupHint(err, cfg); hint != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, hint)
	}

	return err
}

func startupHint(err error, cfg *config.Config) string {
	if errors.Is(err, ErrInvalidConfig) {
		return fmt.Sprintf("💡 Create a starter config with `insightview config init` and edit:\n   %s",
			config.GetDefaultConfigPath())
	}

	var se *api.SearchError
	if !errors.As(err, &se) {
		return ""
	}

	switch se.Kind {
	case api.KindTransport:
		endpoint := ""
		if cfg != nil {
			endpoint = cfg.Endpoint
		}
		return fmt.Sprintf("💡 Please check the endpoint and network connectivity:\n   Current endpoint: %s", endpoint)
	case api.KindStatus:
		if se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden {
			return "💡 The backend rejected the token; set a valid one with --token or INSIGHTVIEW_TOKEN"
		}
		return "💡 The backend answered with an error status; check --graphql-path"
	case api.KindDecode:
		return "💡 The response was not GraphQL; check --endpoint and --graphql-path"
	default:
		return ""
	}
}

// ExitCode maps a startup error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidConfig):
		return 2
	default:
		return 1
	}
}
