package tutor

import (
	"errors"
	"fmt"
	"log/slog"

	"Kashar/internal/api"
	"Kashar/internal/audio"
)

// Severity of a user notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier shows short messages to the user
type Notifier interface {
	Notify(severity Severity, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Severity, string)

// Notify calls f
func (f NotifierFunc) Notify(severity Severity, message string) {
	f(severity, message)
}

// LogNotifier writes notifications to a logger
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the message at the matching level
func (n LogNotifier) Notify(severity Severity, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch severity {
	case SeverityError:
		logger.Error(message)
	case SeverityWarning:
		logger.Warn(message)
	default:
		logger.Info(message)
	}
}

// Describe turns an error into the message shown to the user.
// fallback is used when the error carries nothing more specific.
func Describe(err error, fallback string) string {
	var apiErr *api.APIError
	var domainErr *api.DomainError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnauthenticated):
		return "Please log in first to use the tutor"
	case errors.Is(err, ErrVoiceDisabled), errors.Is(err, audio.ErrMicrophoneDenied):
		return "Failed to start recording. Please check microphone permissions."
	case errors.Is(err, api.ErrTimeout):
		return "Request timed out - please try again"
	case errors.Is(err, api.ErrNetwork):
		return "Network error - please check your connection"
	case errors.As(err, &domainErr):
		return domainErr.Message
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("Server error: %d", apiErr.StatusCode)
	default:
		return fallback
	}
}
