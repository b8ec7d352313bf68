package description

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes description errors.
type ErrorCode string

const (
	InvalidConfiguration ErrorCode = "InvalidConfiguration"
	NotFound             ErrorCode = "NotFound"
	CyclicReference      ErrorCode = "CyclicReference"
	InvalidFormat        ErrorCode = "InvalidFormat"
)

// ErrInvalidArgument matches every *Error via errors.Is.
var ErrInvalidArgument = errors.New("description: invalid argument")

// Error is a structured error carrying the offending name and, when known,
// a JSON Pointer into the raw configuration.
type Error struct {
	Code    ErrorCode
	Message string
	Name    string // operation, model or property name
	Pointer string // e.g. "#/models/user/properties/dob"
	Cause   error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return target == ErrInvalidArgument }

func newError(code ErrorCode, name, pointer, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Name:    name,
		Pointer: pointer,
	}
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
