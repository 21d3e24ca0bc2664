// Package syncerr tags sync failures as retryable or fatal so callers branch
// on the kind instead of matching error strings.
package syncerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type Kind int

const (
	// Transient covers timeouts, refused connections and 5xx responses.
	Transient Kind = iota
	// Validation is a client error that must not be retried unmodified.
	Validation
	// NotFound means the target is already consistent with the request.
	NotFound
	// Auth means the token is missing, invalid or expired.
	Auth
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Auth:
		return "auth"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind   Kind
	Op     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	return e.Kind == Transient
}

func Retryable(op, reason string, err error) *Error {
	return &Error{Kind: Transient, Op: op, Reason: reason, Err: err}
}

func Fatal(kind Kind, op, reason string, err error) *Error {
	if kind == Transient {
		kind = Validation
	}
	return &Error{Kind: kind, Op: op, Reason: reason, Err: err}
}

// FromStatus maps an HTTP status of a failed response to a tagged error.
func FromStatus(op string, status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return Fatal(Auth, op, message, nil)
	case status == http.StatusNotFound:
		return Fatal(NotFound, op, message, nil)
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return Retryable(op, message, nil)
	default:
		return Fatal(Validation, op, message, nil)
	}
}

// FromTransport wraps an error returned before any HTTP status was received.
func FromTransport(op string, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return Retryable(op, "canceled", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Retryable(op, "timeout", err)
	}
	return Retryable(op, "network", err)
}

// KindOf returns the kind of a tagged error. Untagged errors count as transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transient
}

func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == Transient
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
