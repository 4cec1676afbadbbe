package spec

import "fmt"

// ErrorCode categorizes document errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	ParseError      ErrorCode = "ParseError"
	StructureError  ErrorCode = "StructureError"
	EnumError       ErrorCode = "EnumError"
	ValidationError ErrorCode = "ValidationError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code     ErrorCode
	Message  string
	Location string // document name or file path
	Pointer  string // e.g. "#/paths/~1pets/fetch"
	Cause    error
}

func (e *SpecError) Error() string {
	msg := e.Message
	if e.Location != "" {
		msg = fmt.Sprintf("%s: %s", e.Location, msg)
	}
	if e.Pointer != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Pointer)
	}
	return msg
}

func (e *SpecError) Unwrap() error { return e.Cause }
