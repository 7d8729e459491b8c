package vm

import (
	"github.com/nooga/dynobj/pkg/errors"
)

// internalError builds the panic payload for invariant violations.
func internalError(format string, args ...interface{}) *errors.InternalError {
	return errors.NewInternalError(format, args...)
}

func typeError(format string, args ...interface{}) error {
	return errors.NewTypeError(format, args...)
}

func rangeError(format string, args ...interface{}) error {
	return errors.NewRangeError(format, args...)
}
