// Package code issues and checks one-time confirmation codes.
package code

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Length is the number of decimal digits in a code.
const Length = 6

var space = big.NewInt(1_000_000)

// ErrMismatch is returned by Verify when the code does not match the hash.
var ErrMismatch = errors.New("confirmation code mismatch")

// Generate returns a uniformly random zero-padded 6-digit code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, space)
	if err != nil {
		return "", fmt.Errorf("could not generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", Length, n.Int64()), nil
}

// WellFormed reports whether s is exactly Length ASCII digits.
func WellFormed(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Hasher hashes codes with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher. A cost outside bcrypt's range uses bcrypt.DefaultCost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(code string) ([]byte, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return nil, fmt.Errorf("could not hash code: %w", err)
	}
	return hashed, nil
}

// Verify returns ErrMismatch when code does not produce hash.
func (h Hasher) Verify(code string, hash []byte) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(code)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("could not verify code: %w", err)
	}
	return nil
}
