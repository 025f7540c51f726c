package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderErrorKind classifies a provider failure.
type ProviderErrorKind string

// Provider failure kinds.
const (
	// ProviderErrorAuth covers rejected credentials, unknown project or model
	// and malformed requests. These are configuration problems.
	ProviderErrorAuth ProviderErrorKind = "auth"

	// ProviderErrorTransient covers network failures, rate limits and 5xx.
	ProviderErrorTransient ProviderErrorKind = "transient"

	// ProviderErrorInvalidResponse covers unparsable or degenerate output.
	ProviderErrorInvalidResponse ProviderErrorKind = "invalid_response"
)

// ProviderError is returned by embedding and generation adapters.
// It always matches ErrProvider; auth failures also match ErrConfiguration.
type ProviderError struct {
	// Provider is the backend name, e.g. "vertex" or "ollama".
	Provider string

	// Op is the failed operation, e.g. "embed" or "generate".
	Op string

	// Kind classifies the failure.
	Kind ProviderErrorKind

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s (%s)", e.Provider, e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is one of the sentinels this error stands for.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProvider:
		return true
	case ErrConfiguration:
		return e.Kind == ProviderErrorAuth
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// IsTransient returns true if retrying the operation may succeed.
func (e *ProviderError) IsTransient() bool {
	return e.Kind == ProviderErrorTransient
}

// NewProviderError builds a ProviderError, classifying it by HTTP status.
// A zero status means the request never completed and is treated as transient.
func NewProviderError(provider, op string, status int, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Op:         op,
		Kind:       classifyStatus(status),
		StatusCode: status,
		Err:        err,
	}
}

// NewInvalidResponseError builds a ProviderError for unusable provider output.
func NewInvalidResponseError(provider, op string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Kind:     ProviderErrorInvalidResponse,
		Err:      err,
	}
}

func classifyStatus(status int) ProviderErrorKind {
	switch {
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound:
		return ProviderErrorAuth
	case status == 0,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return ProviderErrorTransient
	default:
		return ProviderErrorInvalidResponse
	}
}

// IsConfigurationError reports whether err should be surfaced to the user
// as a setup problem rather than retried.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
