package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/sqlbuild"
)

var (
	// ErrBadRequest classifies failures caused by the caller's input.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound classifies lookups of a company or job that does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is a classified service failure. Message is safe to show to the
// caller; Cause keeps the underlying error for logs.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// IsBadRequest reports whether err was caused by invalid caller input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) || sqlbuild.IsInvalidInput(err)
}

// IsNotFound reports whether err names a missing company or job.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func badRequest(cause error, format string, args ...any) error {
	return &Error{Kind: ErrBadRequest, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func notFound(cause error, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// classify converts data-layer and compiler failures into service errors.
// notFoundMsg is used when the row addressed by the call is missing.
func classify(err error, notFoundMsg string) error {
	var ie *sqlbuild.InputError
	switch {
	case err == nil:
		return nil
	case errors.As(err, new(*Error)):
		return err
	case errors.As(err, &ie):
		return badRequest(err, "%s", ie.Message)
	case db.IsNotFound(err):
		return notFound(err, "%s", notFoundMsg)
	case db.IsCheckViolation(err):
		return badRequest(err, "value out of range")
	}
	return err
}

// validationError flattens validator failures into one message using the
// JSON field names, e.g. "handle: required; logoUrl: url".
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(err, "%v", err)
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fe.Field() + ": " + fe.Tag()
	}
	return badRequest(err, "%s", strings.Join(parts, "; "))
}
