package errors

import (
	stderrors "errors"
	"fmt"
	"io"
)

// EngineError is the interface implemented by all errors raised by the
// representation layer.
type EngineError interface {
	error
	Kind() string // "Type", "Range" or "Internal"
	// Message returns the error message without the kind prefix.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// TypeError is a recoverable, script-catchable error: a value cannot take part
// in the requested operation (non-object method prototype, unsupported interop
// value, write to a frozen array, ...).
type TypeError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *TypeError) Error() string   { return "TypeError: " + e.Msg }
func (e *TypeError) Kind() string    { return "Type" }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }
func (e *TypeError) CausedBy(cause error) *TypeError {
	e.Cause = cause
	return e
}

// RangeError reports numeric arguments outside their permitted range, such as
// an array length above 2^32-1.
type RangeError struct {
	Msg   string
	Cause error
}

func (e *RangeError) Error() string   { return "RangeError: " + e.Msg }
func (e *RangeError) Kind() string    { return "Range" }
func (e *RangeError) Message() string { return e.Msg }
func (e *RangeError) Unwrap() error   { return e.Cause }
func (e *RangeError) CausedBy(cause error) *RangeError {
	e.Cause = cause
	return e
}

// InternalError is an internal-consistency failure. It is never returned to
// script code: the representation layer panics with it.
type InternalError struct {
	Msg   string
	Cause error
}

func (e *InternalError) Error() string   { return "internal error: " + e.Msg }
func (e *InternalError) Kind() string    { return "Internal" }
func (e *InternalError) Message() string { return e.Msg }
func (e *InternalError) Unwrap() error   { return e.Cause }
func (e *InternalError) CausedBy(cause error) *InternalError {
	e.Cause = cause
	return e
}

// --- Helpers ---

func NewTypeError(format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

func NewRangeError(format string, args ...interface{}) *RangeError {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}

func NewInternalError(format string, args ...interface{}) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// IsTypeError reports whether err, or anything it wraps, is a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return stderrors.As(err, &te)
}

// IsRangeError reports whether err, or anything it wraps, is a *RangeError.
func IsRangeError(err error) bool {
	var re *RangeError
	return stderrors.As(err, &re)
}

// Display writes one line per error to w, in the form "<Kind> Error: <Message>".
// Other errors, including wrapped EngineErrors, are printed verbatim.
func Display(w io.Writer, errs []error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if ee, ok := err.(EngineError); ok {
			fmt.Fprintf(w, "%s Error: %s\n", ee.Kind(), ee.Message())
			continue
		}
		fmt.Fprintln(w, err.Error())
	}
}
