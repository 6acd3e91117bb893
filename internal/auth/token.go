// internal/auth/token.go
package auth

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoTokenHash  = errors.New("admin token not configured")
	ErrMissingToken = errors.New("missing bearer token")
)

// HashToken hashes an admin token for storage in configuration.
func HashToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyToken checks token against a bcrypt hash.
func VerifyToken(hash, token string) error {
	if hash == "" {
		return ErrNoTokenHash
	}
	if token == "" {
		return ErrMissingToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Verifier authorizes admin requests against a configured hash.
type Verifier struct {
	hash string
}

func NewVerifier(hash string) *Verifier {
	return &Verifier{hash: hash}
}

// Enabled reports whether a hash is configured.
func (v *Verifier) Enabled() bool {
	return v.hash != ""
}

// Authorize verifies the request's bearer token.
func (v *Verifier) Authorize(r *http.Request) error {
	return VerifyToken(v.hash, BearerToken(r))
}
