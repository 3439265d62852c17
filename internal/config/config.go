// Package config provides configuration management for insightview.
//
// This package handles loading configuration from multiple sources with proper
// precedence ordering:
//  1. Command-line flags (highest priority)
//  2. Environment variables
//  3. Configuration files (YAML format, optionally SOPS-encrypted)
//  4. Default values (lowest priority)
//
// Environment Variables:
//   - INSIGHTVIEW_ENDPOINT: Search backend URL
//   - INSIGHTVIEW_GRAPHQL_PATH: GraphQL handler path (default: "/.internal/graphql")
//   - INSIGHTVIEW_TOKEN: Access token (may be age-encrypted, "age1:" prefix)
//   - INSIGHTVIEW_INSECURE: Skip TLS verification ("true"/"false")
//   - INSIGHTVIEW_TIMEOUT: Per-request timeout (e.g. "30s")
//   - INSIGHTVIEW_DEBUG: Enable debug logging ("true"/"false")
//   - INSIGHTVIEW_CACHE_DIR: Custom cache directory (overrides platform defaults)
//   - INSIGHTVIEW_AGE_DIR: Custom age key directory
//   - INSIGHTVIEW_METRICS_ADDR: Listen address for the Prometheus endpoint
//   - INSIGHTVIEW_SCROLL_DIRECTION: Scroll axis of the results pane
//
// Configuration File Format (YAML):
//
//	endpoint: "https://search.example.com"
//	token: "sgp_..."
//	timeout: 30s
//	result_ttl: 24h
//	params:
//	  patterntype: literal
//	scroll:
//	  direction: top-to-bottom
//	  amount_to_scroll: 0.9
//	  quiescence: 16ms
//	  smooth: true
//	key_bindings:
//	  scroll_forward: "]"
//
// Example usage:
//
//	cfg := config.NewConfig()
//	if err := cfg.MergeWithFile(path); err != nil {
//		return err
//	}
//	cfg.SetDefaults()
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/devnullvoid/insightview/internal/keys"
	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/pkg/api"
	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix  = "INSIGHTVIEW_"
	trueString = "true"

	defaultTimeout   = 30 * time.Second
	defaultResultTTL = 24 * time.Hour
)

// DebugEnabled is a global flag to enable debug logging throughout the application.
var DebugEnabled bool

// Config represents the complete application configuration.
type Config struct {
	Endpoint    string            `yaml:"endpoint"`
	GraphQLPath string            `yaml:"graphql_path"`
	Token       string            `yaml:"token"`
	Insecure    bool              `yaml:"insecure"`
	Timeout     time.Duration     `yaml:"timeout"`
	Debug       bool              `yaml:"debug"`
	CacheDir    string            `yaml:"cache_dir"`
	AgeDir      string            `yaml:"age_dir,omitempty"`
	ResultTTL   time.Duration     `yaml:"result_ttl"`
	MetricsAddr string            `yaml:"metrics_addr"`
	Params      map[string]string `yaml:"params"`
	Scroll      ScrollConfig      `yaml:"scroll"`
	KeyBindings KeyBindings       `yaml:"key_bindings"`

	// hasCleartextSensitive tracks whether the last-loaded config file held
	// an unencrypted token.
	hasCleartextSensitive bool `yaml:"-"`
}

// ScrollConfig configures the results pane coordinator.
type ScrollConfig struct {
	Direction      string        `yaml:"direction"`
	AmountToScroll float64       `yaml:"amount_to_scroll"`
	Quiescence     time.Duration `yaml:"quiescence"`
	Smooth         bool          `yaml:"smooth"`
}

// KeyBindings defines customizable key mappings for common actions.
type KeyBindings struct {
	ScrollBackward  string `yaml:"scroll_backward"`  // Scroll results toward the start
	ScrollForward   string `yaml:"scroll_forward"`   // Scroll results toward the end
	HistoryBackward string `yaml:"history_backward"` // Scroll the history strip left
	HistoryForward  string `yaml:"history_forward"`  // Scroll the history strip right
	Search          string `yaml:"search"`           // Focus the query input
	Refresh         string `yaml:"refresh"`          // Re-run the current query
	Quit            string `yaml:"quit"`
}

// HasCleartextSensitiveData reports whether the last merged file stored the
// token in cleartext.
func (c *Config) HasCleartextSensitiveData() bool {
	return c.hasCleartextSensitive
}

func (c *Config) MarkSensitiveDataEncrypted() {
	c.hasCleartextSensitive = false
}

// DefaultScrollConfig returns the scroll settings used when none are configured.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		Direction:      scroll.TopToBottom.String(),
		AmountToScroll: scroll.DefaultAmountToScroll,
		Quiescence:     scroll.DefaultQuiescence,
		Smooth:         true,
	}
}

// DefaultKeyBindings returns a KeyBindings struct with the default key mappings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		ScrollBackward:  "[",
		ScrollForward:   "]",
		HistoryBackward: "<",
		HistoryForward:  ">",
		Search:          "/",
		Refresh:         "Ctrl+r",
		Quit:            "q",
	}
}

func keyBindingsToMap(kb KeyBindings) map[string]string {
	return map[string]string{
		"scroll_backward":  kb.ScrollBackward,
		"scroll_forward":   kb.ScrollForward,
		"history_backward": kb.HistoryBackward,
		"history_forward":  kb.HistoryForward,
		"search":           kb.Search,
		"refresh":          kb.Refresh,
		"quit":             kb.Quit,
	}
}

// ValidateKeyBindings checks if all key specifications are valid and unique.
func ValidateKeyBindings(kb KeyBindings) error {
	bindings := keyBindingsToMap(kb)
	defaultMap := keyBindingsToMap(DefaultKeyBindings())

	seen := make(map[string]string)

	for _, name := range slices.Sorted(maps.Keys(bindings)) {
		spec := bindings[name]
		if spec == "" {
			continue
		}

		key, r, mod, err := keys.Parse(spec)
		if err != nil {
			return fmt.Errorf("invalid key binding %s: %w", name, err)
		}

		if keys.IsReserved(key, r, mod) && spec != defaultMap[name] {
			return fmt.Errorf("key binding %s uses reserved key %s", name, spec)
		}

		id := keys.CanonicalID(key, r, mod)
		if other, ok := seen[id]; ok {
			return fmt.Errorf("key binding %s duplicates %s", name, other)
		}

		seen[id] = name
	}

	return nil
}

// NewConfig creates a new Config populated with values from environment variables.
//
// Variables that are not set leave the corresponding fields at their zero
// value; SetDefaults fills them in after the file and flags are merged.
func NewConfig() *Config {
	config := &Config{
		Endpoint:    os.Getenv(envPrefix + "ENDPOINT"),
		GraphQLPath: os.Getenv(envPrefix + "GRAPHQL_PATH"),
		Token:       os.Getenv(envPrefix + "TOKEN"),
		Insecure:    strings.ToLower(os.Getenv(envPrefix+"INSECURE")) == trueString,
		Debug:       strings.ToLower(os.Getenv(envPrefix+"DEBUG")) == trueString,
		CacheDir:    ExpandHomePath(os.Getenv(envPrefix + "CACHE_DIR")),
		AgeDir:      ExpandHomePath(os.Getenv(envPrefix + "AGE_DIR")),
		MetricsAddr: os.Getenv(envPrefix + "METRICS_ADDR"),
		Params:      make(map[string]string),
		Scroll:      DefaultScrollConfig(),
		KeyBindings: DefaultKeyBindings(),
	}

	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Timeout = d
		}
	}
	if v := os.Getenv(envPrefix + "SCROLL_DIRECTION"); v != "" {
		config.Scroll.Direction = v
	}
	if config.AgeDir != "" {
		SetAgeDirOverride(config.AgeDir)
	}

	return config
}

// MergeWithFile merges values from a YAML config file into c. SOPS-encrypted
// files are decrypted first; an age-encrypted token is decrypted afterwards.
func (c *Config) MergeWithFile(path string) error {
	if path == "" {
		return nil
	}

	c.hasCleartextSensitive = false

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	isSOPSEncrypted := IsSOPSEncrypted(path, data)
	if isSOPSEncrypted {
		decrypted, derr := decrypt.File(path, "yaml")
		if derr != nil {
			return fmt.Errorf("decrypt %s: %w", path, derr)
		}
		data = decrypted
	}

	// Pointers distinguish unset from explicitly false/zero values.
	var fileConfig struct {
		Endpoint    string            `yaml:"endpoint"`
		GraphQLPath string            `yaml:"graphql_path"`
		Token       string            `yaml:"token"`
		Insecure    *bool             `yaml:"insecure"`
		Timeout     *time.Duration    `yaml:"timeout"`
		Debug       *bool             `yaml:"debug"`
		CacheDir    string            `yaml:"cache_dir"`
		AgeDir      string            `yaml:"age_dir"`
		ResultTTL   *time.Duration    `yaml:"result_ttl"`
		MetricsAddr string            `yaml:"metrics_addr"`
		Params      map[string]string `yaml:"params"`
		Scroll      struct {
			Direction      string         `yaml:"direction"`
			AmountToScroll *float64       `yaml:"amount_to_scroll"`
			Quiescence     *time.Duration `yaml:"quiescence"`
			Smooth         *bool          `yaml:"smooth"`
		} `yaml:"scroll"`
		KeyBindings KeyBindings `yaml:"key_bindings"`
	}

	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if !isSOPSEncrypted && hasCleartextSensitiveValue(fileConfig.Token) {
		c.hasCleartextSensitive = true
	}

	if fileConfig.AgeDir != "" && c.AgeDir == "" {
		c.AgeDir = ExpandHomePath(fileConfig.AgeDir)
	}
	if c.AgeDir != "" {
		SetAgeDirOverride(c.AgeDir)
	}

	if fileConfig.Endpoint != "" {
		c.Endpoint = fileConfig.Endpoint
	}
	if fileConfig.GraphQLPath != "" {
		c.GraphQLPath = fileConfig.GraphQLPath
	}
	if fileConfig.Token != "" {
		c.Token = fileConfig.Token
	}
	if fileConfig.Insecure != nil {
		c.Insecure = *fileConfig.Insecure
	}
	if fileConfig.Timeout != nil {
		c.Timeout = *fileConfig.Timeout
	}
	if fileConfig.Debug != nil {
		c.Debug = *fileConfig.Debug
	}
	if fileConfig.CacheDir != "" {
		c.CacheDir = ExpandHomePath(fileConfig.CacheDir)
	}
	if fileConfig.ResultTTL != nil {
		c.ResultTTL = *fileConfig.ResultTTL
	}
	if fileConfig.MetricsAddr != "" {
		c.MetricsAddr = fileConfig.MetricsAddr
	}

	if len(fileConfig.Params) > 0 {
		if c.Params == nil {
			c.Params = make(map[string]string, len(fileConfig.Params))
		}
		for k, v := range fileConfig.Params {
			c.Params[k] = v
		}
	}

	if fileConfig.Scroll.Direction != "" {
		c.Scroll.Direction = fileConfig.Scroll.Direction
	}
	if fileConfig.Scroll.AmountToScroll != nil {
		c.Scroll.AmountToScroll = *fileConfig.Scroll.AmountToScroll
	}
	if fileConfig.Scroll.Quiescence != nil {
		c.Scroll.Quiescence = *fileConfig.Scroll.Quiescence
	}
	if fileConfig.Scroll.Smooth != nil {
		c.Scroll.Smooth = *fileConfig.Scroll.Smooth
	}

	c.mergeKeyBindings(fileConfig.KeyBindings)

	// SOPS already decrypted the whole document; only age fields remain.
	if !isSOPSEncrypted {
		if err := DecryptConfigSensitiveFields(c); err != nil {
			return fmt.Errorf("decrypt sensitive fields: %w", err)
		}
	}

	return nil
}

func (c *Config) mergeKeyBindings(kb KeyBindings) {
	if kb.ScrollBackward != "" {
		c.KeyBindings.ScrollBackward = kb.ScrollBackward
	}
	if kb.ScrollForward != "" {
		c.KeyBindings.ScrollForward = kb.ScrollForward
	}
	if kb.HistoryBackward != "" {
		c.KeyBindings.HistoryBackward = kb.HistoryBackward
	}
	if kb.HistoryForward != "" {
		c.KeyBindings.HistoryForward = kb.HistoryForward
	}
	if kb.Search != "" {
		c.KeyBindings.Search = kb.Search
	}
	if kb.Refresh != "" {
		c.KeyBindings.Refresh = kb.Refresh
	}
	if kb.Quit != "" {
		c.KeyBindings.Quit = kb.Quit
	}
}

func hasCleartextSensitiveValue(value string) bool {
	return value != "" && !isEncrypted(value)
}

// Validate checks that the configuration can be used to run searches.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("search endpoint required: set via --endpoint flag, INSIGHTVIEW_ENDPOINT env var, or config file")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.ResultTTL < 0 {
		return fmt.Errorf("result_ttl must not be negative, got %s", c.ResultTTL)
	}

	if _, err := scroll.ParseDirection(c.Scroll.Direction); err != nil {
		return fmt.Errorf("scroll.direction: %w", err)
	}
	if !(c.Scroll.AmountToScroll > 0 && c.Scroll.AmountToScroll <= 1) {
		return fmt.Errorf("scroll.amount_to_scroll must be within (0, 1], got %v", c.Scroll.AmountToScroll)
	}
	if c.Scroll.Quiescence < 0 {
		return fmt.Errorf("scroll.quiescence must not be negative, got %s", c.Scroll.Quiescence)
	}

	return ValidateKeyBindings(c.KeyBindings)
}

// GetEndpoint returns the configured search backend URL.
func (c *Config) GetEndpoint() string {
	return c.Endpoint
}

// GetGraphQLPath returns the GraphQL handler path.
func (c *Config) GetGraphQLPath() string {
	return c.GraphQLPath
}

// GetToken returns the (decrypted) access token.
func (c *Config) GetToken() string {
	return c.Token
}

// GetInsecure returns the configured insecure flag.
func (c *Config) GetInsecure() bool {
	return c.Insecure
}

// GetTimeout returns the per-request timeout.
func (c *Config) GetTimeout() time.Duration {
	return c.Timeout
}

// ScrollDirection returns the parsed results pane direction.
func (c *Config) ScrollDirection() (scroll.Direction, error) {
	return scroll.ParseDirection(c.Scroll.Direction)
}

// SetDefaults sets default values for unspecified configuration options.
func (c *Config) SetDefaults() {
	if c.GraphQLPath == "" {
		c.GraphQLPath = api.DefaultGraphQLPath
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	if c.ResultTTL == 0 {
		c.ResultTTL = defaultResultTTL
	}

	if c.CacheDir != "" {
		c.CacheDir = ExpandHomePath(c.CacheDir)
	}
	if c.CacheDir == "" {
		c.CacheDir = getCacheDir()
	}
	if c.AgeDir != "" {
		c.AgeDir = ExpandHomePath(c.AgeDir)
		SetAgeDirOverride(c.AgeDir)
	}

	if c.Params == nil {
		c.Params = make(map[string]string)
	}

	scrollDefaults := DefaultScrollConfig()
	if c.Scroll.Direction == "" {
		c.Scroll.Direction = scrollDefaults.Direction
	}
	if c.Scroll.AmountToScroll == 0 {
		c.Scroll.AmountToScroll = scrollDefaults.AmountToScroll
	}
	if c.Scroll.Quiescence == 0 {
		c.Scroll.Quiescence = scrollDefaults.Quiescence
	}

	defaults := DefaultKeyBindings()
	if c.KeyBindings.ScrollBackward == "" {
		c.KeyBindings.ScrollBackward = defaults.ScrollBackward
	}
	if c.KeyBindings.ScrollForward == "" {
		c.KeyBindings.ScrollForward = defaults.ScrollForward
	}
	if c.KeyBindings.HistoryBackward == "" {
		c.KeyBindings.HistoryBackward = defaults.HistoryBackward
	}
	if c.KeyBindings.HistoryForward == "" {
		c.KeyBindings.HistoryForward = defaults.HistoryForward
	}
	if c.KeyBindings.Search == "" {
		c.KeyBindings.Search = defaults.Search
	}
	if c.KeyBindings.Refresh == "" {
		c.KeyBindings.Refresh = defaults.Refresh
	}
	if c.KeyBindings.Quit == "" {
		c.KeyBindings.Quit = defaults.Quit
	}
}

// ExpandHomePath expands a leading ~ in paths using the current user's home directory.
func ExpandHomePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}

	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return trimmed
		}
		return home
	}

	if strings.HasPrefix(trimmed, "~/") || strings.HasPrefix(trimmed, "~\\") {
		home, err := os.UserHomeDir()
		if err != nil {
			return trimmed
		}
		rest := strings.TrimPrefix(trimmed, "~")
		rest = strings.TrimPrefix(rest, "/")
		rest = strings.TrimPrefix(rest, "\\")
		return filepath.Join(home, rest)
	}

	return trimmed
}
