package randutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the character set of dump identifiers.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandString returns a cryptographically random string of length n drawn
// uniformly from Alphabet.
func RandString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid length %d", n)
	}
	result := make([]byte, n)
	max := big.NewInt(int64(len(Alphabet)))

	for i := range result {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random: %w", err)
		}
		result[i] = Alphabet[num.Int64()]
	}
	return string(result), nil
}
