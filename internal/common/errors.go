package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorKind classifies why an extraction did not produce text.
type ErrorKind string

const (
	KindNoInput           ErrorKind = "NO_INPUT"
	KindUnsupportedFormat ErrorKind = "UNSUPPORTED_FORMAT"
	KindLoadFailure       ErrorKind = "LOAD_FAILURE"
	KindEngineFailure     ErrorKind = "ENGINE_FAILURE"
)

// Sentinels matching each ErrorKind, for use with errors.Is.
var (
	ErrNoInput           = errors.New("no input file selected")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrLoadFailure       = errors.New("file could not be loaded")
	ErrEngineFailure     = errors.New("text engine failed")
)

var kindSentinels = map[ErrorKind]error{
	KindNoInput:           ErrNoInput,
	KindUnsupportedFormat: ErrUnsupportedFormat,
	KindLoadFailure:       ErrLoadFailure,
	KindEngineFailure:     ErrEngineFailure,
}

// ExtractionError is the terminal failure of one extraction call.
type ExtractionError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Is reports a match against the sentinel for e.Kind.
func (e *ExtractionError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

func NewExtractionError(kind ErrorKind, message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: kind, Message: message, Cause: cause}
}

func ExtractionErrorf(kind ErrorKind, cause error, format string, args ...any) *ExtractionError {
	return NewExtractionError(kind, fmt.Sprintf(format, args...), cause)
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an ExtractionError.
func KindOf(err error) ErrorKind {
	var xe *ExtractionError
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return ""
}
