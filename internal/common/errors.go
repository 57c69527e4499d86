// Package common holds the error taxonomy shared across the portal core.
package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
)

// AuthReason distinguishes authentication failures that need different
// recovery actions on screen.
type AuthReason string

const (
	// ReasonInvalidCredentials means the user should retry with corrected input.
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
	// ReasonEmailUnverified means the screen should offer a resend-verification
	// action instead of a plain retry.
	ReasonEmailUnverified AuthReason = "email_unverified"
)

// AuthenticationError is recoverable by user action (fix credentials or
// verify the email address).
type AuthenticationError struct {
	Reason  AuthReason
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %s", e.Reason, e.Message)
}

// AuthorizationError covers role mismatches and expired sessions. It is
// always absorbed by the guard or the gateway and converted to navigation;
// no screen renders it as a raw error.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return "authorization denied: " + e.Message }

// IsAuthorization reports whether err is an AuthorizationError anywhere in
// its chain. Handlers use this to suppress error toasts while the forced
// navigation is in flight.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// ValidationError is surfaced inline and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// TransportError wraps network failures and 5xx responses. It carries an
// explicit Retry capability so retrying is a deliberate caller action, never
// an automatic side effect.
type TransportError struct {
	Err   error
	retry func(ctx context.Context) error
}

func NewTransportError(err error, retry func(ctx context.Context) error) *TransportError {
	return &TransportError{Err: err, retry: retry}
}

func (e *TransportError) Error() string { return "transport failure: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// Retry re-issues the failed operation with exponential backoff. It is a
// no-op error if the operation did not provide a retry capability.
func (e *TransportError) Retry(ctx context.Context) error {
	if e.retry == nil {
		return errors.New("operation is not retryable")
	}
	operation := func() (struct{}, error) {
		return struct{}{}, e.retry(ctx)
	}
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3))
	return err
}

// AttachRetry rebinds a TransportError to the operation that produced it,
// so Retry re-runs the operation end to end rather than replaying a raw
// request. Non-transport errors pass through untouched.
func AttachRetry(err error, op func(ctx context.Context) error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return NewTransportError(te.Err, op)
	}
	return err
}

// ExportError is surfaced to the caller; the underlying report data remains
// intact and re-exportable.
type ExportError struct {
	Op  string
	Err error
}

func (e *ExportError) Error() string { return fmt.Sprintf("export %s failed: %v", e.Op, e.Err) }

func (e *ExportError) Unwrap() error { return e.Err }
