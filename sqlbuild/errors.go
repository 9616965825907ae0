package sqlbuild

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel behind every client-input failure raised by
// the compilers. Callers should reject the request, never retry it.
var ErrInvalidInput = errors.New("sqlbuild: invalid input")

// InputError describes why caller-supplied input could not be compiled.
type InputError struct {
	// Field is the offending criteria key or payload field, if any.
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// IsInvalidInput reports whether err is a client-input failure.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

func inputErrorf(field, format string, args ...any) error {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}
