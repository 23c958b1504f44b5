package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Input errors
	ErrInvalidPath      ErrorCode = "INVALID_PATH"
	ErrInvalidExtension ErrorCode = "INVALID_EXTENSION"
	ErrInvalidOfferID   ErrorCode = "INVALID_OFFER_ID"

	// File/storage errors
	ErrDataCorrupted    ErrorCode = "DATA_CORRUPTED"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"
	ErrStoreLocked      ErrorCode = "STORE_LOCKED"
	ErrFileWrite        ErrorCode = "FILE_WRITE"

	// State errors
	ErrNoDefault         ErrorCode = "NO_DEFAULT"
	ErrDefaultExists     ErrorCode = "DEFAULT_EXISTS"
	ErrOfferNotFound     ErrorCode = "OFFER_NOT_FOUND"
	ErrOfferExists       ErrorCode = "OFFER_EXISTS"
	ErrOfferInUse        ErrorCode = "OFFER_IN_USE"
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// OS integration errors
	ErrUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrBundleIDNotFound    ErrorCode = "BUNDLE_ID_NOT_FOUND"
	ErrRegistryAccess      ErrorCode = "REGISTRY_ACCESS"
	ErrAppNotFound         ErrorCode = "APP_NOT_FOUND"
	ErrOSOperation         ErrorCode = "OS_OPERATION"
	ErrPartialSync         ErrorCode = "PARTIAL_SYNC"
	ErrRollbackFailed      ErrorCode = "ROLLBACK_FAILED"
)

// SlapError represents a structured error with code and details
type SlapError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SlapError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SlapError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SlapError) Is(target error) bool {
	var targetErr *SlapError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SlapError with the given code and message
func New(code ErrorCode, message string) *SlapError {
	return &SlapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SlapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SlapError {
	return &SlapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SlapError
func Wrap(err error, code ErrorCode, message string) *SlapError {
	if err == nil {
		return nil
	}
	return &SlapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SlapError {
	if err == nil {
		return nil
	}
	return &SlapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SlapError) WithDetail(key string, value interface{}) *SlapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var slapErr *SlapError
	if errors.As(err, &slapErr) {
		return slapErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SlapError
func GetErrorCode(err error) ErrorCode {
	var slapErr *SlapError
	if errors.As(err, &slapErr) {
		return slapErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SlapError
func GetErrorDetails(err error) map[string]interface{} {
	var slapErr *SlapError
	if errors.As(err, &slapErr) {
		return slapErr.Details
	}
	return nil
}
