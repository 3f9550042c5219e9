package errors

import (
	"errors"
	"fmt"
)

// ERR identifies the broad class of a failure. It is intentionally coarse:
// callers branch on it with errors.Is, never on Message.
type ERR int32

const (
	ERR_UNKNOWN ERR = iota
	ERR_INVALID_ARGUMENT
	ERR_NOT_FOUND
	ERR_STORAGE
	ERR_PROCESSING
	ERR_CONFIGURATION
	ERR_SERVICE
	ERR_THRESHOLD_EXCEEDED
	ERR_CONTEXT_CANCELED
	ERR_MISSING_CHAIN_DATA
	ERR_MALFORMED_BURN
	ERR_DUPLICATE_IDENTITY
	ERR_VERSION_MISMATCH
)

var errNames = map[ERR]string{
	ERR_UNKNOWN:            "UNKNOWN",
	ERR_INVALID_ARGUMENT:   "INVALID_ARGUMENT",
	ERR_NOT_FOUND:          "NOT_FOUND",
	ERR_STORAGE:            "STORAGE",
	ERR_PROCESSING:         "PROCESSING",
	ERR_CONFIGURATION:      "CONFIGURATION",
	ERR_SERVICE:            "SERVICE",
	ERR_THRESHOLD_EXCEEDED: "THRESHOLD_EXCEEDED",
	ERR_CONTEXT_CANCELED:   "CONTEXT_CANCELED",
	ERR_MISSING_CHAIN_DATA: "MISSING_CHAIN_DATA",
	ERR_MALFORMED_BURN:     "MALFORMED_BURN",
	ERR_DUPLICATE_IDENTITY: "DUPLICATE_IDENTITY",
	ERR_VERSION_MISMATCH:   "VERSION_MISMATCH",
}

func (c ERR) String() string {
	if n, ok := errNames[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// Error is the single error type used across the module. It carries a
// coarse Code for programmatic branching and an optional wrapped cause.
type Error struct {
	ErrCode    ERR
	ErrMessage string
	WrappedErr error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.WrappedErr == nil {
		return fmt.Sprintf("%s: %s", e.ErrCode, e.ErrMessage)
	}

	return fmt.Sprintf("%s: %s: %v", e.ErrCode, e.ErrMessage, e.WrappedErr)
}

// Code returns the error's class.
func (e *Error) Code() ERR { return e.ErrCode }

// Message returns the error's message, excluding the wrapped cause.
func (e *Error) Message() string { return e.ErrMessage }

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	var ue *Error
	if errors.As(target, &ue) && e.ErrCode == ue.ErrCode {
		return true
	}

	if unwrapped := errors.Unwrap(e); unwrapped != nil {
		if ue, ok := unwrapped.(*Error); ok {
			return ue.Is(target)
		}
	}

	return false
}

func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if targetErr, ok := target.(**Error); ok {
		*targetErr = e
		return true
	}

	if e.WrappedErr != nil {
		return errors.As(e.WrappedErr, target)
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.WrappedErr
}

// New builds an Error, treating a trailing error argument (if present) as
// the wrapped cause and formatting the rest with fmt.Errorf-style verbs.
func New(code ERR, message string, params ...interface{}) *Error {
	var wErr error

	if len(params) > 0 {
		if err, ok := params[len(params)-1].(error); ok {
			wErr = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{ErrCode: code, ErrMessage: message, WrappedErr: wErr}
}

// Join concatenates non-nil errors, skipping nils, returning nil if none remain.
func Join(errs ...error) error {
	present := make([]error, 0, len(errs))

	for _, err := range errs {
		if err != nil {
			present = append(present, err)
		}
	}

	if len(present) == 0 {
		return nil
	}

	return errors.Join(present...)
}

func Is(err, target error) bool     { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
