package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IdentityUnresolved indicates no project manifest could be found
	IdentityUnresolved ErrorCode = "IDENTITY_UNRESOLVED"
	// ExtractionFailed indicates a single file could not be read or scanned
	ExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// PersistenceFailed indicates the cache store could not be read or written
	PersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// CacheMismatch indicates a persisted tree belongs to another schema or project
	CacheMismatch ErrorCode = "CACHE_MISMATCH"
	// CacheNotReady indicates an operation needs an initialized cache
	CacheNotReady ErrorCode = "CACHE_NOT_READY"
	// InvalidPath indicates a path outside the project root
	InvalidPath ErrorCode = "INVALID_PATH"
	// Locked indicates another process holds the cache lock
	Locked ErrorCode = "LOCKED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// VdxError represents a vdx error with code, message and an optional fix hint
type VdxError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Fix     string      `json:"fix,omitempty"`
	cause   error
}

// New creates a VdxError without an underlying cause
func New(code ErrorCode, message string) *VdxError {
	return &VdxError{Code: code, Message: message, Fix: SuggestedFix(code)}
}

// Wrap creates a VdxError around cause
func Wrap(code ErrorCode, message string, cause error) *VdxError {
	return &VdxError{Code: code, Message: message, Fix: SuggestedFix(code), cause: cause}
}

// Error implements the error interface
func (e *VdxError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *VdxError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *VdxError) WithDetails(details interface{}) *VdxError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first VdxError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var ve *VdxError
	if stderrors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

var suggestedFixes = map[ErrorCode]string{
	IdentityUnresolved: "add a vdx.toml with [project] name, or open the directory containing the .uefnproject file",
	PersistenceFailed:  "check permissions on .vdx/ or run 'vdx clear' to reset the cache",
	CacheMismatch:      "run 'vdx build' to rebuild the declaration cache",
	CacheNotReady:      "run 'vdx build' first",
	Locked:             "stop the other 'vdx watch' process or remove a stale .vdx/index.lock",
}

// SuggestedFix returns a short remediation hint for an error code
func SuggestedFix(code ErrorCode) string {
	return suggestedFixes[code]
}
