package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the sentinel for input that fails validation:
	// blank required fields and invalid parent assignments.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is the sentinel for lookups that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is the sentinel for uniqueness conflicts, such as a
	// slug collision on creation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument is the sentinel for programmer errors, such as
	// aggregating over an unpersisted term. Not user recoverable.
	ErrInvalidArgument = errors.New("invalid argument")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
