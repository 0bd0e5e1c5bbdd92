package shares

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	accessCodeLength   = 8
)

// GenerateAccessCode produces a random access code from the uppercase
// alphanumeric alphabet. Each character is drawn uniformly, so no part
// of the alphabet is favored. Uniqueness is enforced by the database;
// callers retry on collision.
func GenerateAccessCode() (string, error) {
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	buf := make([]byte, accessCodeLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		buf[i] = accessCodeAlphabet[n.Int64()]
	}

	return string(buf), nil
}
