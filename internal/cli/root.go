package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devnullvoid/insightview/internal/bootstrap"
	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/version"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "insightview",
	Short: "A terminal viewer for code search insights",
	Long: `insightview runs queries against a code search GraphQL backend and shows
the results in a terminal user interface.

The results pane and the history strip show scroll affordances at their
edges; click them or use the scroll key bindings to page through long
results.`,
	Version:       version.GetVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMainApplication,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(bootstrap.ExitCode(err))
	}
}

// reportedError marks errors whose diagnostics were already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// report prints err with a startup hint and marks it as reported.
func report(cmd *cobra.Command, err error, cfg *config.Config) error {
	return reportedError{bootstrap.HandleStartupError(err, cfg, cmd.ErrOrStderr())}
}

func init() {
	RootCmd.CompletionOptions.DisableDefaultCmd = true

	addPersistentFlags(RootCmd)

	RootCmd.AddCommand(newSearchCmd())
	RootCmd.AddCommand(newConfigCmd())
	RootCmd.AddCommand(newVersionCmd())
}

// runMainApplication runs the main application
func runMainApplication(cmd *cobra.Command, args []string) error {
	opts := getBootstrapOptions(cmd)

	result, err := bootstrap.Bootstrap(opts, cmd.OutOrStdout())
	if err != nil {
		return report(cmd, err, nil)
	}

	// nil result: the version was printed.
	if result == nil {
		return nil
	}

	if err := bootstrap.StartApplication(cmd.Context(), result, cmd.ErrOrStderr()); err != nil {
		return reportedError{err}
	}
	return nil
}

// getBootstrapOptions converts cobra flags to BootstrapOptions
func getBootstrapOptions(cmd *cobra.Command) bootstrap.BootstrapOptions {
	configPath, _ := cmd.Flags().GetString("config")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	showVersion, _ := cmd.Flags().GetBool("version")

	// Config values come from viper so env vars are honored.
	return bootstrap.BootstrapOptions{
		ConfigPath:          configPath,
		NoCache:             noCache,
		Version:             showVersion,
		FlagEndpoint:        viper.GetString("endpoint"),
		FlagToken:           viper.GetString("token"),
		FlagGraphQLPath:     viper.GetString("graphql_path"),
		FlagInsecure:        viper.GetBool("insecure"),
		FlagTimeout:         viper.GetDuration("timeout"),
		FlagDebug:           viper.GetBool("debug"),
		FlagCacheDir:        viper.GetString("cache_dir"),
		FlagMetricsAddr:     viper.GetString("metrics_addr"),
		FlagScrollDirection: viper.GetString("scroll_direction"),
	}
}

// addPersistentFlags adds all the persistent flags to the root command
func addPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	// Bootstrap flags
	flags.StringP("config", "c", "", "Path to YAML config file")
	flags.BoolP("no-cache", "n", false, "Keep results in memory only")
	flags.BoolP("version", "v", false, "Show version information")

	// Config flags
	flags.String("endpoint", "", "Search backend URL")
	flags.String("token", "", "Access token")
	flags.String("graphql-path", "", "GraphQL handler path")
	flags.Bool("insecure", false, "Skip TLS verification")
	flags.Duration("timeout", 0, "Per-request timeout")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("cache-dir", "", "Cache directory path")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.String("scroll-direction", "", "Results pane axis: top-to-bottom or left-to-right")

	viper.SetEnvPrefix("INSIGHTVIEW")
	viper.AutomaticEnv()

	bindings := map[string]string{
		"endpoint":         "endpoint",
		"token":            "token",
		"graphql_path":     "graphql-path",
		"insecure":         "insecure",
		"timeout":          "timeout",
		"debug":            "debug",
		"cache_dir":        "cache-dir",
		"metrics_addr":     "metrics-addr",
		"scroll_direction": "scroll-direction",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", key, err))
		}
	}
}
