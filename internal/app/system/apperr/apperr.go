// internal/app/system/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for callers and for HTTP mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindValidation
	KindWriteFailed
	// KindBestEffort marks a secondary side effect that failed after the
	// primary write succeeded. It is logged, never returned to clients.
	KindBestEffort
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindWriteFailed:
		return "write_failed"
	case KindBestEffort:
		return "best_effort_failure"
	default:
		return "internal"
	}
}

// Error is a tagged application error. Msg is safe to show to a client;
// Err carries the underlying cause for logs.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(op, msg string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

func Unauthorized(op, msg string) error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: msg}
}

func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// WriteFailed wraps a storage error from a mutating call.
func WriteFailed(op string, err error) error {
	return &Error{Kind: KindWriteFailed, Op: op, Msg: "write failed", Err: err}
}

// BestEffort wraps a failed side effect so it can be logged with its kind.
func BestEffort(op string, err error) error {
	return &Error{Kind: KindBestEffort, Op: op, Err: err}
}

// Internal wraps an unexpected error.
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" && e.Kind != KindInternal && e.Kind != KindWriteFailed {
		return e.Msg
	}
	return "internal error"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
