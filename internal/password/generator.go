package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// special is the character set added when Policy.Special is set.
	special = "!#$%&*()-_=+[]{}<>:?"
)

// ErrInvalidLength is returned for a policy with a length below one.
var ErrInvalidLength = errors.New("password length must be at least 1")

// Policy controls the first generation of a password.
type Policy struct {
	Length  int
	Special bool
}

// Charset returns the characters a password under p may contain.
func (p Policy) Charset() string {
	if p.Special {
		return alphanumeric + special
	}
	return alphanumeric
}

// Generate returns a random password of exactly p.Length characters.
func Generate(p Policy) (string, error) {
	if p.Length < 1 {
		return "", ErrInvalidLength
	}

	charset := p.Charset()
	limit := big.NewInt(int64(len(charset)))
	out := make([]byte, p.Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random data: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
