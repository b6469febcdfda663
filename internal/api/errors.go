package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrUnauthenticated means the bearer token is missing, expired or rejected.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrTimeout means the request exceeded its timeout budget.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork means the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Path       string
	Detail     string // server-provided detail, surfaced verbatim
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets 401 and 403 responses match ErrUnauthenticated
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthenticated &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// DomainError is a 2xx payload in which the server reported a failure
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Error kinds used for metrics and user notifications.
const (
	KindAuth     = "auth"
	KindTimeout  = "timeout"
	KindNetwork  = "network"
	KindServer   = "server"
	KindDomain   = "domain"
	KindCanceled = "canceled"
	KindOther    = "other"
)

// Kind classifies an error returned by the client
func Kind(err error) string {
	var apiErr *APIError
	var domainErr *DomainError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return KindAuth
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.As(err, &apiErr):
		return KindServer
	case errors.As(err, &domainErr):
		return KindDomain
	default:
		return KindOther
	}
}

// classifyTransport maps an http.Client.Do failure onto the error taxonomy
func classifyTransport(err error, op string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrNetwork, op, err)
	}
}
