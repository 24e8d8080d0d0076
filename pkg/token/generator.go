// Package token provides cryptographically secure random token
// generation for client keys and request IDs.
package token

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultLength is the default token length in bytes.
const DefaultLength = 24

// Generate generates a random token of DefaultLength bytes,
// Base64 RawURL encoded for safe transmission in URLs and headers.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateWithPrefix generates a token and prepends the given prefix.
// Used for client keys so sensitive values are recognizable to the
// logger redaction.
func GenerateWithPrefix(prefix string) (string, error) {
	t, err := Generate()
	if err != nil {
		return "", err
	}
	return prefix + t, nil
}
