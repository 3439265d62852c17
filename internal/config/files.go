package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devnullvoid/insightview/internal/logger"
)

const (
	appDirName     = "insightview"
	configFileName = "config.yml"
)

//go:embed config.tpl.yml
var templateFS embed.FS

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getXDGConfigDir(), configFileName)
}

// CreateDefaultConfigFile writes the commented template to the default path
// and returns that path. An existing file is left untouched.
func CreateDefaultConfigFile() (string, error) {
	return CreateDefaultConfigFileAt(GetDefaultConfigPath())
}

// CreateDefaultConfigFileAt writes the commented template to path unless a
// file already exists there.
func CreateDefaultConfigFileAt(path string) (string, error) {
	if path == "" {
		return "", errors.New("config path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	templateData, err := templateFS.ReadFile("config.tpl.yml")
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}

	if err := os.WriteFile(path, templateData, 0o600); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}

	return path, nil
}

// FindDefaultConfigPath finds the default configuration file path.
func FindDefaultConfigPath() (string, bool) {
	configPath := GetDefaultConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return configPath, true
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}

	return "", false
}

// GetDefaultCacheDir returns the platform cache directory for insightview.
func GetDefaultCacheDir() string {
	return getCacheDir()
}

func getConfigDir() string {
	return getXDGConfigDir()
}

func getCacheDir() string {
	return getXDGCacheDir()
}

func getXDGConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDirName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appDirName)
	}

	return filepath.Join(homeDir, ".config", appDirName)
}

func getXDGCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, appDirName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cache", appDirName)
	}

	return filepath.Join(homeDir, ".cache", appDirName)
}

// IsSOPSEncrypted reports whether data looks like a SOPS-managed document:
// a top-level sops metadata key or ENC[...] values.
func IsSOPSEncrypted(path string, data []byte) bool {
	content := string(data)
	hasSops := strings.HasPrefix(content, "sops:") || strings.Contains(content, "\nsops:")
	hasEnc := strings.Contains(content, "ENC[")

	if DebugEnabled {
		logger.GetGlobalLogger().Debug("SOPS detection for %s: hasSops=%v, hasEnc=%v", path, hasSops, hasEnc)
	}

	return hasSops || hasEnc
}

// FindSOPSRule checks if a SOPS rule file exists in the given directory or its parents.
func FindSOPSRule(startDir string) bool {
	current := startDir
	for {
		rulePath := filepath.Join(current, ".sops.yaml")
		if _, err := os.Stat(rulePath); err == nil {
			return true
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return false
}
