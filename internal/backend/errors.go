package backend

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies the outcome of a failed backend call.
type Kind int

const (
	// KindFailure covers non-2xx statuses other than 404, transport errors,
	// timeouts and undecodable bodies.
	KindFailure Kind = iota
	// KindNotFound means the backend answered 404 for the requested model.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindFailure:
		return "backend_failure"
	}
	return "unknown"
}

// Error is returned by every Backend operation.
type Error struct {
	Kind   Kind
	Op     string
	Model  string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Model != "" {
		msg += " " + e.Model
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error for model.
func NotFound(op, model string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Model: model, Status: http.StatusNotFound}
}

// Failure builds a KindFailure error.
func Failure(op, model string, status int, err error) *Error {
	return &Error{Kind: KindFailure, Op: op, Model: model, Status: status, Err: err}
}

// KindOf classifies err. Errors not produced by a Backend are failures.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindFailure
}

// IsNotFound reports whether err is a KindNotFound backend error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
