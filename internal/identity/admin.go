package identity

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizverse/internal/domain"
)

// AdminAuthenticator checks the single configured admin account.
type AdminAuthenticator struct {
	email        string
	passwordHash []byte
	verifier     *Verifier
	ttl          time.Duration
}

func NewAdminAuthenticator(email, passwordHash string, verifier *Verifier, ttl time.Duration) *AdminAuthenticator {
	return &AdminAuthenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		verifier:     verifier,
		ttl:          ttl,
	}
}

// HashPassword hashes a password for the admin config entry.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login returns an admin token when the credentials match.
func (a *AdminAuthenticator) Login(email, password string) (string, error) {
	if a.email == "" || len(a.passwordHash) == 0 {
		return "", domain.ErrInvalidCredentials
	}
	if strings.ToLower(strings.TrimSpace(email)) != a.email {
		return "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return a.verifier.Issue(domain.Identity{
		SignedIn:      true,
		EmailVerified: true,
		Email:         a.email,
		Admin:         true,
	}, a.ttl)
}
