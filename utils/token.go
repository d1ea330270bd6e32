package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateStateToken returns a random hex token for OAuth CSRF state.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
