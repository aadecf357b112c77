package errcodes

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUnprocessableEntity
)

// Error is a coded error carrying its kind, a client-facing description and
// an optional cause.
type Error struct {
	Kind        Kind
	Code        ErrorCode
	Description string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Description, e.cause)
	}

	return e.Description
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, code ErrorCode, description string) *Error {
	return &Error{
		Kind:        kind,
		Code:        code,
		Description: description,
	}
}

func Wrap(err error, kind Kind, code ErrorCode, description string) *Error {
	return &Error{
		Kind:        kind,
		Code:        code,
		Description: description,
		cause:       err,
	}
}

// As returns the outermost coded error in the chain.
func As(err error) (*Error, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded, true
	}

	return nil, false
}

func KindOf(err error) Kind {
	if coded, ok := As(err); ok {
		return coded.Kind
	}

	return KindInternal
}

func CodeOf(err error) ErrorCode {
	if coded, ok := As(err); ok {
		return coded.Code
	}

	return ""
}

func DescriptionOf(err error) string {
	if coded, ok := As(err); ok {
		return coded.Description
	}

	return ""
}

func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
