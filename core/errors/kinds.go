package errors

import (
	stderrors "errors"
	"fmt"
)

// Kinds classify every rejected market operation. Module errors wrap exactly
// one kind so callers can branch with errors.Is regardless of which engine
// produced the failure.
var (
	ErrValidation   = stderrors.New("validation failed")
	ErrUnauthorized = stderrors.New("unauthorized")
	ErrNotFound     = stderrors.New("not found")
	ErrConflict     = stderrors.New("conflict")
	ErrTiming       = stderrors.New("timing")
)

var kinds = []error{ErrValidation, ErrUnauthorized, ErrNotFound, ErrConflict, ErrTiming}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Kind returns a sentinel error carrying msg and classified as kind.
func Kind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Kindf is Kind with formatting.
func Kindf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind wrapped by err, or nil when err is unclassified.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if stderrors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Name returns a short stable label for the kind of err, used in metrics and
// RPC error data.
func Name(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "validation"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrTiming:
		return "timing"
	default:
		if err == nil {
			return ""
		}
		return "internal"
	}
}
