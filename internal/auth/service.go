package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Kashar/internal/api"
	"Kashar/internal/backend"
	"Kashar/internal/cache"
)

const userCacheTTL = 5 * time.Minute

// ErrConfirmationPending is returned with the new account when signup
// succeeded but no token was issued until the email is confirmed
var ErrConfirmationPending = errors.New("account created, confirm your email and then log in")

// Service signs the user in and out and resolves the current account
type Service struct {
	client *api.Client
	store  *TokenStore
	users  *cache.TTL[backend.User]
	logger *slog.Logger
}

// NewService creates an auth service
func NewService(client *api.Client, store *TokenStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		store:  store,
		users:  cache.NewTTL[backend.User](userCacheTTL),
		logger: logger,
	}
}

// Store returns the token store, which doubles as the TokenSource for tutoring calls
func (s *Service) Store() *TokenStore {
	return s.store
}

// Login authenticates and persists the issued token
func (s *Service) Login(ctx context.Context, email, password string) (*backend.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.accept(resp)
}

// Signup creates an account and persists the issued token. When the server
// holds the token back for email confirmation the user is returned together
// with ErrConfirmationPending.
func (s *Service) Signup(ctx context.Context, email, password string) (*backend.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	resp, err := s.client.Signup(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" && resp.User.ID != "" {
		s.logger.Info("account awaiting email confirmation", "user_id", resp.User.ID)
		return &resp.User, ErrConfirmationPending
	}
	return s.accept(resp)
}

func (s *Service) accept(resp *backend.AuthResponse) (*backend.User, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("server issued no access token")
	}
	if err := s.store.Save(resp.AccessToken); err != nil {
		return nil, err
	}
	s.users.Set(cache.Key(resp.AccessToken), resp.User)
	s.logger.Info("signed in", "user_id", resp.User.ID)
	return &resp.User, nil
}

// Logout tells the server and then always forgets the local token
func (s *Service) Logout(ctx context.Context) error {
	token, err := s.store.Token()
	if err == nil {
		if err := s.client.Logout(ctx, api.Credentials{Token: token}); err != nil {
			s.logger.Warn("logout request failed", "error", err)
		}
	}
	s.users.Clear()
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.logger.Info("signed out")
	return nil
}

// CurrentUser returns the signed-in account.
// A token the server rejects is discarded.
func (s *Service) CurrentUser(ctx context.Context) (*backend.User, error) {
	token, err := s.store.Token()
	if err != nil {
		return nil, err
	}

	key := cache.Key(token)
	if user, ok := s.users.Get(key); ok {
		return &user, nil
	}

	user, err := s.client.Me(ctx, api.Credentials{Token: token})
	if errors.Is(err, api.ErrUnauthenticated) {
		if clearErr := s.store.Clear(); clearErr != nil {
			s.logger.Warn("failed to discard rejected token", "error", clearErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.users.Set(key, *user)
	return user, nil
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email address is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
