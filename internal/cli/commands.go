package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/devnullvoid/insightview/internal/app"
	"github.com/devnullvoid/insightview/internal/bootstrap"
	"github.com/devnullvoid/insightview/internal/config"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/internal/ui/utils"
	"github.com/devnullvoid/insightview/internal/version"
)

const (
	outputAuto = "auto"
	outputText = "text"
	outputJSON = "json"

	redacted = "<redacted>"
)

// newSearchCmd creates the headless search command
func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run one search and print the result",
		Long: `Run a single search without the terminal UI.

The arguments are joined into one query; configured params are appended
the same way the UI does. Results come from the local store unless
--refresh is given. Output is text on a terminal and JSON otherwise.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().BoolP("refresh", "r", false, "Bypass the result store")
	cmd.Flags().StringP("output", "o", outputAuto, "Output format: auto, text or json")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	refresh, _ := cmd.Flags().GetBool("refresh")
	output, _ := cmd.Flags().GetString("output")

	format, err := resolveOutput(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	opts := getBootstrapOptions(cmd)
	cfg, _, err := bootstrap.LoadConfig(opts)
	if err != nil {
		return report(cmd, err, nil)
	}

	rec, err := app.Search(cmd.Context(), cfg, app.Options{NoCache: opts.NoCache}, strings.Join(args, " "), refresh)
	if err != nil {
		return report(cmd, err, cfg)
	}

	return writeRecord(cmd.OutOrStdout(), rec, format)
}

// resolveOutput turns "auto" into text or json depending on whether w is a
// terminal.
func resolveOutput(output string, w io.Writer) (string, error) {
	switch output {
	case outputText, outputJSON:
		return output, nil
	case outputAuto, "":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return outputText, nil
		}
		return outputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", output)
	}
}

func writeRecord(w io.Writer, rec store.Record, format string) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	for _, line := range utils.RecordLines(rec, time.Now()) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// newConfigCmd groups the config file helpers
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigEncryptCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter config",
		Long: `Write the commented starter configuration to --config or the default
location. An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagPath, _ := cmd.Flags().GetString("config")
			path, err := config.CreateDefaultConfigFileAt(bootstrap.ResolveConfigPathForInit(flagPath))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Config file: %s\n", path)
			return nil
		},
	}
}

func newConfigEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt",
		Short: "Age-encrypt a cleartext token in the config file",
		Long: `Replace a cleartext token in the config file with an age-encrypted value.
The key is created on first use. SOPS-managed files are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagPath, _ := cmd.Flags().GetString("config")
			path := bootstrap.ResolveConfigPath(flagPath)
			if path == "" {
				return fmt.Errorf("no config file found; run `insightview config init` first")
			}

			out := cmd.OutOrStdout()
			if abs, err := filepath.Abs(path); err == nil && config.FindSOPSRule(filepath.Dir(abs)) {
				fmt.Fprintln(out, "⚠️  A .sops.yaml rule covers this directory; consider `sops --encrypt` instead")
			}

			changed, err := config.EncryptTokenInFile(path)
			if err != nil {
				return err
			}

			if changed {
				fmt.Fprintf(out, "✅ Token encrypted in %s\n", path)
			} else {
				fmt.Fprintf(out, "Nothing to encrypt in %s\n", path)
			}
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the config file,
environment variables and flags. The token is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := bootstrap.LoadConfig(getBootstrapOptions(cmd))
			if err != nil {
				return report(cmd, err, nil)
			}

			if cfg.Token != "" {
				cfg.Token = redacted
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Details())
		},
	}
}
