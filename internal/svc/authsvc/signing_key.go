package authsvc

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultKeySize is the default HMAC secret size in bytes.
const DefaultKeySize = 32

// ErrSigningKeyTooShort is returned when a stored secret is shorter than DefaultKeySize.
var ErrSigningKeyTooShort = errors.New("signing key too short")

// GenerateSigningKey creates a random HMAC secret of the given size.
func GenerateSigningKey(size int) ([]byte, error) {
	key := make([]byte, size)

	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return key, nil
}

// DecodeSigningKey decodes a hex-encoded HMAC secret.
func DecodeSigningKey(data []byte) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}

	if len(key) < DefaultKeySize {
		return nil, fmt.Errorf("decode key: %w", ErrSigningKeyTooShort)
	}

	return key, nil
}

// GetSigningKey loads or creates an HMAC secret at the specified file path.
// If the file exists, it loads and decodes the key.
// If the file doesn't exist, it generates a new key and saves it to the file.
func GetSigningKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := DecodeSigningKey(data)
		if err != nil {
			return nil, fmt.Errorf("decode signing key: %w", err)
		}

		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key, err := GenerateSigningKey(DefaultKeySize)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}

	return key, nil
}
