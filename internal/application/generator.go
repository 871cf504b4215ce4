package application

import (
	"encoding/hex"
	"fmt"
	"io"
)

const (
	// SecretPrefix marks secrets generated by keypanel.
	SecretPrefix = "sk_"

	// secretBytes is the number of random bytes behind each generated secret,
	// hex encoded to 48 characters.
	secretBytes = 24
)

// GenerateSecret returns a new opaque API key: SecretPrefix followed by the hex
// encoding of 24 bytes read from r. r must be a cryptographically secure
// source; a short read is returned as an error rather than padded.
func GenerateSecret(r io.Reader) (string, error) {
	b := make([]byte, secretBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return SecretPrefix + hex.EncodeToString(b), nil
}
