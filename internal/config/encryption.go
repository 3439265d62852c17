// Age-based encryption for the token when the config file is not managed by
// SOPS. "insightview config encrypt" rewrites a cleartext token in place.

package config

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
	"gopkg.in/yaml.v3"
)

const (
	// encryptionPrefix marks encrypted fields in the config file.
	encryptionPrefix = "age1:"
	// identityFileName is the name of the age identity file stored in the config directory.
	identityFileName = ".age-identity"
	// recipientFileName is the name of the age recipient file stored in the config directory.
	recipientFileName = ".age-recipient"
)

var (
	ageDirMu       sync.RWMutex
	ageDirOverride string
)

// SetAgeDirOverride sets the directory holding the age identity and recipient
// files. An empty dir restores the platform config directory.
func SetAgeDirOverride(dir string) {
	ageDirMu.Lock()
	defer ageDirMu.Unlock()
	ageDirOverride = dir
}

func ageDir() string {
	ageDirMu.RLock()
	defer ageDirMu.RUnlock()
	if ageDirOverride != "" {
		return ageDirOverride
	}
	return getConfigDir()
}

// getOrCreateAgeIdentity returns an age identity for encryption/decryption.
// Creates a new identity if one doesn't exist, storing it in the config directory.
func getOrCreateAgeIdentity() (age.Identity, age.Recipient, error) {
	configDir := ageDir()
	identityPath := filepath.Join(configDir, identityFileName)
	recipientPath := filepath.Join(configDir, recipientFileName)

	// Try to load existing identity
	if data, err := os.ReadFile(identityPath); err == nil {
		identities, err := age.ParseIdentities(strings.NewReader(string(data)))
		if err != nil {
			return nil, nil, fmt.Errorf("parse existing identity: %w", err)
		}
		if len(identities) == 0 {
			return nil, nil, fmt.Errorf("no identity found in file")
		}
		identity := identities[0]
		// Try to load recipient from file, or derive from identity
		var recipient age.Recipient
		if recipientData, err := os.ReadFile(recipientPath); err == nil {
			recipients, err := age.ParseRecipients(strings.NewReader(string(recipientData)))
			if err == nil && len(recipients) > 0 {
				recipient = recipients[0]
			}
		}
		// If recipient file doesn't exist or parsing failed, try to get from identity
		if recipient == nil {
			// For X25519Identity, we can extract the recipient
			if x25519Identity, ok := identity.(*age.X25519Identity); ok {
				recipient = x25519Identity.Recipient()
			} else {
				return nil, nil, fmt.Errorf("unsupported identity type, cannot get recipient")
			}
		}
		return identity, recipient, nil
	}

	// Create new identity
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, nil, fmt.Errorf("generate identity: %w", err)
	}

	recipient := identity.Recipient()

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create config directory: %w", err)
	}

	// Save identity (private key)
	identityStr := identity.String()
	if err := os.WriteFile(identityPath, []byte(identityStr), 0o600); err != nil {
		return nil, nil, fmt.Errorf("save identity: %w", err)
	}

	// Save recipient (public key) for reference
	recipientStr := recipient.String()
	if err := os.WriteFile(recipientPath, []byte(recipientStr), 0o600); err != nil {
		return nil, nil, fmt.Errorf("save recipient: %w", err)
	}

	return identity, recipient, nil
}

// isEncrypted checks if a string value is encrypted (starts with encryption prefix).
func isEncrypted(value string) bool {
	return strings.HasPrefix(value, encryptionPrefix)
}

// EncryptField encrypts a sensitive field value using age encryption.
// Returns the encrypted value with the encryption prefix, or an error.
func EncryptField(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	if isEncrypted(value) {
		// Already encrypted, return as-is
		return value, nil
	}

	_, recipient, err := getOrCreateAgeIdentity()
	if err != nil {
		return "", fmt.Errorf("get age identity: %w", err)
	}

	// Encrypt the value
	var encrypted bytes.Buffer

	encryptWriter, err := age.Encrypt(&encrypted, recipient)
	if err != nil {
		return "", fmt.Errorf("create encrypt writer: %w", err)
	}

	if _, err := encryptWriter.Write([]byte(value)); err != nil {
		return "", fmt.Errorf("write to encrypt: %w", err)
	}

	if err := encryptWriter.Close(); err != nil {
		return "", fmt.Errorf("close encrypt writer: %w", err)
	}

	// Base64 encode the encrypted data for safe YAML storage
	encryptedData := base64.StdEncoding.EncodeToString(encrypted.Bytes())
	return encryptionPrefix + encryptedData, nil
}

// DecryptField decrypts an encrypted field value.
// Returns the decrypted value, or the original value if not encrypted.
func DecryptField(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	if !isEncrypted(value) {
		// Not encrypted, return as-is
		return value, nil
	}

	// Remove prefix and decode base64
	encryptedData := strings.TrimPrefix(value, encryptionPrefix)
	decoded, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	identity, _, err := getOrCreateAgeIdentity()
	if err != nil {
		return "", fmt.Errorf("get age identity: %w", err)
	}

	// Decrypt the value
	decryptReader, err := age.Decrypt(bytes.NewReader(decoded), identity)
	if err != nil {
		return "", fmt.Errorf("create decrypt reader: %w", err)
	}

	var decrypted bytes.Buffer
	if _, err := io.Copy(&decrypted, decryptReader); err != nil {
		return "", fmt.Errorf("read decrypted data: %w", err)
	}

	return decrypted.String(), nil
}

// EncryptConfigSensitiveFields encrypts the token in cfg if it is not
// already encrypted.
func EncryptConfigSensitiveFields(cfg *Config) error {
	if cfg.Token == "" || isEncrypted(cfg.Token) {
		return nil
	}

	encrypted, err := EncryptField(cfg.Token)
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}
	cfg.Token = encrypted

	return nil
}

// DecryptConfigSensitiveFields decrypts the token in cfg. Cleartext values are
// left unchanged.
func DecryptConfigSensitiveFields(cfg *Config) error {
	if cfg.Token == "" {
		return nil
	}

	decrypted, err := DecryptField(cfg.Token)
	if err != nil {
		return fmt.Errorf("decrypt token: %w", err)
	}
	cfg.Token = decrypted

	return nil
}

// EncryptTokenInFile age-encrypts a cleartext top-level token in the YAML file
// at path, keeping comments and key order. It reports whether the file was
// rewritten. SOPS-managed files are refused.
func EncryptTokenInFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	if IsSOPSEncrypted(path, data) {
		return false, fmt.Errorf("%s is managed by SOPS", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return false, nil
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "token" {
			continue
		}

		value := root.Content[i+1]
		if !hasCleartextSensitiveValue(value.Value) {
			return false, nil
		}

		encrypted, err := EncryptField(value.Value)
		if err != nil {
			return false, fmt.Errorf("encrypt token: %w", err)
		}
		value.Value = encrypted
		value.Style = yaml.DoubleQuotedStyle

		out, err := yaml.Marshal(&doc)
		if err != nil {
			return false, fmt.Errorf("encode %s: %w", path, err)
		}
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return false, fmt.Errorf("write %s: %w", path, err)
		}
		return true, nil
	}

	return false, nil
}
