package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateTempID returns a short random id for a row that has not been
// saved yet. It is always shorter than a store-assigned UUID.
func GenerateTempID() (string, error) {
	bytes := make([]byte, 5)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
