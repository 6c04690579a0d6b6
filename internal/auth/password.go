package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketflex/internal/config"
)

// PasswordHasher turns a password into its stored form and checks a
// candidate against that form.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, candidate string) bool
}

// NewPasswordHasher returns the bcrypt hasher when cfg.HashPasswords is set
// and the plain-text hasher otherwise.
func NewPasswordHasher(cfg config.AuthConfig) PasswordHasher {
	if cfg.HashPasswords {
		return BcryptHasher{Cost: cfg.BcryptCost}
	}
	return PlainHasher{}
}

// PlainHasher stores passwords verbatim. Not safe for real accounts.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainHasher) Matches(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptHasher) Matches(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
