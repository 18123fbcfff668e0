package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies why a completion failed.
type Kind int

const (
	// AuthFailure means the provider rejected the credentials (401/403).
	AuthFailure Kind = iota + 1
	// NetworkFailure covers transport errors, timeouts, throttling and 5xx
	// responses. Only this kind is retried.
	NetworkFailure
	// MalformedResponse means the provider answered but the answer was
	// unusable: undecodable, empty, or rejected as a bad request.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case AuthFailure:
		return "auth_failure"
	case NetworkFailure:
		return "network_failure"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is returned by every Client in this package.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s completion failed (%s, status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s completion failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of a completion error. Errors that did not come
// from this package report MalformedResponse.
func KindOf(err error) Kind {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Kind
	}
	return MalformedResponse
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return KindOf(err) == NetworkFailure
}

// kindForStatus maps an HTTP status code to a Kind.
func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return AuthFailure
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		return NetworkFailure
	default:
		return MalformedResponse
	}
}

// isTransportError reports errors raised before a response was read.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func newError(provider string, kind Kind, status int, err error) *Error {
	return &Error{Kind: kind, Provider: provider, StatusCode: status, Err: err}
}
