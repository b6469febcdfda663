package api

import (
	"context"
	"net/http"

	"Kashar/internal/backend"
)

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*backend.AuthResponse, error) {
	var resp backend.AuthResponse
	err := c.postJSON(ctx, call{name: "auth.login", path: "/auth/login"},
		backend.Credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup calls POST /auth/signup
func (c *Client) Signup(ctx context.Context, email, password string) (*backend.AuthResponse, error) {
	var resp backend.AuthResponse
	err := c.postJSON(ctx, call{name: "auth.signup", path: "/auth/signup"},
		backend.Credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout calls POST /auth/logout
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	return c.postJSON(ctx, call{name: "auth.logout", path: "/auth/logout", creds: &creds}, nil, nil)
}

// Me calls GET /auth/me
func (c *Client) Me(ctx context.Context, creds Credentials) (*backend.User, error) {
	var resp backend.MeResponse
	err := c.do(ctx, call{name: "auth.me", method: http.MethodGet, path: "/auth/me", creds: &creds}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}
