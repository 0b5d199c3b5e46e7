package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Passwords hashes and checks user passwords with bcrypt.
type Passwords struct {
	Cost int
}

// Hash returns the bcrypt hash of plain.
func (p Passwords) Hash(plain string) (string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Matches reports whether plain is the password behind hash.
func (p Passwords) Matches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
