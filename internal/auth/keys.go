// Package auth provides authentication and authorization functionality.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGenerateKey loads the PASETO v4 symmetric key from
// <dataDir>/auth.key, generating and persisting a fresh one on first
// run. The returned string is the hex-encoded 256-bit key.
func LoadOrGenerateKey(dataDir string) (string, error) {
	keyPath := filepath.Join(dataDir, "auth.key")

	//#nosec G304 -- Auth key path is derived from the validated data directory
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))
		if len(keyHex) != keyHexSize {
			return "", fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexSize, len(keyHex))
		}
		if _, err := hex.DecodeString(keyHex); err != nil {
			return "", fmt.Errorf("invalid auth key format: not valid hex: %w", err)
		}
		return keyHex, nil
	}

	key := make([]byte, keyBytesSize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate auth key: %w", err)
	}
	keyHex := hex.EncodeToString(key)

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return "", fmt.Errorf("failed to save auth key: %w", err)
	}

	return keyHex, nil
}
