package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeConfiguration     Code = "CONFIGURATION_ERROR"
	CodeTransport         Code = "TRANSPORT_ERROR"
	CodeUpstreamExhausted Code = "UPSTREAM_EXHAUSTED"
	CodePersistence       Code = "PERSISTENCE_ERROR"
	CodeInternal          Code = "INTERNAL_ERROR"
)

type Metadata struct {
	ExitCode  int
	Retryable bool
	Fatal     bool
}

var metadataByCode = map[Code]Metadata{
	CodeConfiguration: {
		ExitCode:  2,
		Retryable: false,
		Fatal:     true,
	},
	CodeTransport: {
		ExitCode:  1,
		Retryable: true,
		Fatal:     false,
	},
	CodeUpstreamExhausted: {
		ExitCode:  1,
		Retryable: true,
		Fatal:     true,
	},
	CodePersistence: {
		ExitCode:  1,
		Retryable: true,
		Fatal:     true,
	},
	CodeInternal: {
		ExitCode:  1,
		Retryable: false,
		Fatal:     true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// ExitCode maps any error to the process exit convention: 0 for nil,
// the code's configured exit otherwise, 1 for uncoded errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if typed := As(err); typed != nil {
		return MetadataFor(typed.Code()).ExitCode
	}
	return 1
}
