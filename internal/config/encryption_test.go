package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempAgeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetAgeDirOverride(dir)
	t.Cleanup(func() { SetAgeDirOverride("") })
	return dir
}

func TestSetAgeDirOverride(t *testing.T) {
	dir := useTempAgeDir(t)

	encrypted, err := EncryptField("secret")
	if err != nil {
		t.Fatalf("EncryptField error: %v", err)
	}
	if encrypted == "" {
		t.Fatalf("expected encrypted value")
	}

	if _, err := os.Stat(filepath.Join(dir, ".age-identity")); err != nil {
		t.Fatalf("expected .age-identity in override dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".age-recipient")); err != nil {
		t.Fatalf("expected .age-recipient in override dir: %v", err)
	}
}

func TestEncryptDecryptField(t *testing.T) {
	useTempAgeDir(t)

	encrypted, err := EncryptField("sgp_token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encrypted, encryptionPrefix))
	assert.NotContains(t, encrypted, "sgp_token")

	again, err := EncryptField(encrypted)
	require.NoError(t, err)
	assert.Equal(t, encrypted, again, "already encrypted values are returned as-is")

	decrypted, err := DecryptField(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "sgp_token", decrypted)

	plain, err := DecryptField("cleartext")
	require.NoError(t, err)
	assert.Equal(t, "cleartext", plain)

	empty, err := EncryptField("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecryptField(encryptionPrefix + "!!!not-base64")
	assert.Error(t, err)
}

func TestConfigSensitiveFieldsRoundTrip(t *testing.T) {
	useTempAgeDir(t)

	cfg := &Config{Token: "sgp_token"}
	require.NoError(t, EncryptConfigSensitiveFields(cfg))
	assert.True(t, isEncrypted(cfg.Token))

	require.NoError(t, DecryptConfigSensitiveFields(cfg))
	assert.Equal(t, "sgp_token", cfg.Token)

	empty := &Config{}
	assert.NoError(t, EncryptConfigSensitiveFields(empty))
	assert.NoError(t, DecryptConfigSensitiveFields(empty))
}

func TestEncryptTokenInFile(t *testing.T) {
	useTempAgeDir(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	content := "# search backend\nendpoint: https://search.example.com\ntoken: sgp_token # keep me secret\ndebug: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	changed, err := EncryptTokenInFile(path)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sgp_token")
	assert.Contains(t, string(data), "# search backend")
	assert.Contains(t, string(data), encryptionPrefix)

	cfg := NewConfig()
	require.NoError(t, cfg.MergeWithFile(path))
	assert.Equal(t, "sgp_token", cfg.Token)

	changed, err = EncryptTokenInFile(path)
	require.NoError(t, err)
	assert.False(t, changed, "an encrypted token is left alone")
}

func TestEncryptTokenInFile_RefusesSOPS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "token: ENC[AES256_GCM,data:abc]\nsops:\n  version: 3.9.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := EncryptTokenInFile(path)
	assert.Error(t, err)
}
