// Package apperr defines the error taxonomy shared by the orchestrator,
// the store, and the HTTP layer. Every error carries a stable Kind so
// callers can classify failures without string matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind is a stable error classification.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindNotFound          Kind = "NotFound"
	KindAlreadyExists     Kind = "AlreadyExists"
	KindUnavailable       Kind = "Unavailable"
	KindTimeout           Kind = "Timeout"
	KindCancelled         Kind = "Cancelled"
	KindRecursionExceeded Kind = "RecursionExceeded"
	KindSerialization     Kind = "SerializationError"
	KindInternal          Kind = "Internal"
)

// Error is the taxonomized error type. Details are optional structured
// context surfaced to API clients.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports kind equality so errors.Is(err, apperr.New(kind, "")) works
// against sentinel comparisons.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error with the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithDetails returns a copy of the error carrying structured details.
func (e *Error) WithDetails(details map[string]any) *Error {
	out := *e
	out.Details = details
	return &out
}

// KindOf classifies an arbitrary error. Context errors map to Timeout and
// Cancelled; everything untyped is Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindInternal
}

// IsKind reports whether err classifies as the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromContext maps a context error to the taxonomy. Returns nil when the
// context is still live.
func FromContext(ctx context.Context) *Error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Wrap(KindTimeout, ctx.Err(), "deadline exceeded")
	case errors.Is(ctx.Err(), context.Canceled):
		return Wrap(KindCancelled, ctx.Err(), "cancelled")
	default:
		return nil
	}
}
