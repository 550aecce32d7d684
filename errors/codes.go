package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Engine errors (adapter boundary)
const (
	// ErrCodeEngineUnavailable indicates the engine sidecar cannot be reached.
	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	// ErrCodeEngineTimeout indicates an engine call exceeded its deadline.
	ErrCodeEngineTimeout ErrorCode = "ENGINE_TIMEOUT"
	// ErrCodeUnsupportedAudioFormat indicates the engine rejected the audio format.
	ErrCodeUnsupportedAudioFormat ErrorCode = "UNSUPPORTED_AUDIO_FORMAT"
)

// Pipeline errors (run outcome)
const (
	// ErrCodePartialEngineFailure indicates the optional engine failed while
	// the mandatory one succeeded and degraded results were not permitted.
	ErrCodePartialEngineFailure ErrorCode = "PARTIAL_ENGINE_FAILURE"
	// ErrCodeTotalFailure indicates the mandatory engine failed and the run
	// produced no transcript.
	ErrCodeTotalFailure ErrorCode = "TOTAL_FAILURE"
)

// Collaborator errors
const (
	// ErrCodeSummarizationUnavailable indicates the LLM backend failed or
	// cannot be reached.
	ErrCodeSummarizationUnavailable ErrorCode = "SUMMARIZATION_UNAVAILABLE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeEngineUnavailable:        true,
	ErrCodeEngineTimeout:            true,
	ErrCodeSummarizationUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
