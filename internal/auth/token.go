// Package auth manages the bearer token and the signed-in account.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"Kashar/internal/api"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields the bearer token for the next backend call
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed token, used by tests and one-off commands
type StaticToken string

// Token returns the token or ErrUnauthenticated when empty
func (t StaticToken) Token() (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", api.ErrUnauthenticated
	}
	return string(t), nil
}

// TokenStore persists the bearer token in a file only the user can read
type TokenStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewTokenStore creates a token store backed by path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path, now: time.Now}
}

// Save writes the token, replacing any previous one
func (s *TokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Token returns the stored token.
// A missing or expired token is reported as api.ErrUnauthenticated.
func (s *TokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: not logged in", api.ErrUnauthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: not logged in", api.ErrUnauthenticated)
	}
	if exp, ok := expiry(token); ok && !s.now().Before(exp) {
		return "", fmt.Errorf("%w: token expired at %s", api.ErrUnauthenticated, exp.Format(time.RFC3339))
	}
	return token, nil
}

// Clear removes the stored token
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// expiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens report ok=false and are left for the server to judge.
func expiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
