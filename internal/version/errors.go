package version

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes version engine errors.
type ErrorCode string

const (
	// ErrCodeVersionOverflow indicates no token greater than the previous one
	// can be minted (sequence exhausted for the day, or the integer range).
	ErrCodeVersionOverflow ErrorCode = "VERSION_OVERFLOW"

	// ErrCodeRenderFailed indicates the template failed during the provisional
	// or the final render.
	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"
)

// Error is a per-file failure of the version engine.
//
// Errors are fatal for the file they name and never for sibling files.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Path is the relative output path of the file, when known.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsOverflow returns true if err is a version overflow error.
// Uses errors.As to handle wrapped errors.
func IsOverflow(err error) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeVersionOverflow
	}
	return false
}

// IsRenderFailure returns true if err is a template render failure.
func IsRenderFailure(err error) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeRenderFailed
	}
	return false
}

func newOverflowError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeVersionOverflow,
		Message: fmt.Sprintf(format, args...),
	}
}

func newRenderError(path string, phase string, err error) *Error {
	return &Error{
		Code:    ErrCodeRenderFailed,
		Path:    path,
		Message: phase + " render failed",
		Err:     err,
	}
}

// withPath stamps path onto a version Error that does not carry one yet.
func withPath(err error, path string) error {
	var ve *Error
	if errors.As(err, &ve) && ve.Path == "" {
		ve.Path = path
	}
	return err
}
