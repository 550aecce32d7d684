// Package errors provides unified error handling for the audio2txt core.
// It implements structured error types with machine-readable codes and
// retryable detection so callers can decide whether to retry an engine call.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns ErrCodeInternal for non-AppError errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// --- Common Error Constructors ---

// EngineUnavailable creates a new AppError for an engine that cannot be reached.
func EngineUnavailable(engine string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeEngineUnavailable, Message: fmt.Sprintf("The %s engine is unreachable. Please verify the service is running.", engine),
		Retryable: true, Cause: cause,
		Details: map[string]any{"engine": engine},
	}
}

// EngineTimeout creates a new AppError for an engine call that timed out.
func EngineTimeout(engine string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeEngineTimeout, Message: fmt.Sprintf("The %s engine took too long to respond.", engine),
		Retryable: true, Cause: cause,
		Details: map[string]any{"engine": engine},
	}
}

// UnsupportedAudioFormat creates a new AppError for audio the engine rejected.
func UnsupportedAudioFormat(engine, path string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedAudioFormat, Message: fmt.Sprintf("The %s engine does not support this audio format.", engine),
		Retryable: false,
		Details:   map[string]any{"engine": engine, "audio_path": path},
	}
}

// PartialEngineFailure creates a new AppError for a run where the optional
// engine failed while the mandatory one succeeded.
func PartialEngineFailure(engine string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePartialEngineFailure, Message: fmt.Sprintf("The %s engine failed; transcription succeeded.", engine),
		Retryable: false, Cause: cause,
		Details: map[string]any{"engine": engine},
	}
}

// TotalFailure creates a new AppError for a run where the mandatory engine failed.
func TotalFailure(engine string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTotalFailure, Message: fmt.Sprintf("Processing failed: the %s engine returned an error.", engine),
		Retryable: IsRetryable(cause), Cause: cause,
		Details: map[string]any{"engine": engine},
	}
}

// SummarizationUnavailable creates a new AppError for a failed LLM analysis call.
func SummarizationUnavailable(cause error) *AppError {
	return &AppError{
		Code: ErrCodeSummarizationUnavailable, Message: "The summarization backend is unavailable. Please try again.",
		Retryable: true, Cause: cause,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}
