package common

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers branch on them with errors.Is; the HTTP layer maps each one to a
// status code.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrUnparseableInput     = errors.New("unparseable input")
	ErrInputTooLarge        = errors.New("input too large")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// WrapError prefixes err with message. A nil err stays nil.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf is WrapError with a format string.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ValidationError rejects one named request or config field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// FileError ties an ingest failure to the file it happened on. Kind is
// ErrUnsupportedFileType or ErrUnparseableInput.
type FileError struct {
	Name    string
	Kind    error
	Reason  string
	Wrapped error
}

// NewUnsupportedFileError reports a file rejected before any read attempt.
func NewUnsupportedFileError(name, reason string) *FileError {
	return &FileError{Name: name, Kind: ErrUnsupportedFileType, Reason: reason}
}

// NewUnparseableFileError reports a file whose content could not be decoded.
func NewUnparseableFileError(name string, wrapped error) *FileError {
	return &FileError{Name: name, Kind: ErrUnparseableInput, Wrapped: wrapped}
}

func (e *FileError) Error() string {
	msg := fmt.Sprintf("%s '%s'", e.Kind, e.Name)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *FileError) Is(target error) bool { return target == e.Kind }

func (e *FileError) Unwrap() error { return e.Wrapped }
