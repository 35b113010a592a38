// Package errors provides unified error handling for the detection pipeline.
// Every failure surfaced past a component boundary carries a Code so callers
// can distinguish pass-level aborts from localized field-level misses.
package errors

import "fmt"

// Code identifies a class of detection failure.
type Code int

const (
	CodeUnknown Code = iota

	// CodeRegionNotFound means a color-rule trim produced an empty span:
	// the expected text region has no matching pixels. Field retried next pass.
	CodeRegionNotFound

	// CodeTimerNotDetected means none of the timer color rules matched
	// anywhere in the timer strip. Aborts the pass.
	CodeTimerNotDetected

	// CodeMapNotDetected means the map trim succeeded structurally but OCR
	// returned empty text or the text failed roster validation. Aborts the pass.
	CodeMapNotDetected

	// CodeRecognitionFailure means the OCR engine call errored or timed out
	// for one job. Localized to that field.
	CodeRecognitionFailure

	// CodeImageDecodeFailure means the screenshot buffer could not be decoded.
	CodeImageDecodeFailure

	// CodeCaptureFailure means the screenshot provider could not deliver a frame.
	CodeCaptureFailure

	// CodePassInFlight signals that a detection pass was already running and
	// the new request was skipped. Not a true error.
	CodePassInFlight

	// CodeBankLoadFailure means the ban image bank could not load its references.
	CodeBankLoadFailure

	// CodeConfigInvalid means supplied configuration or layout data is unusable.
	CodeConfigInvalid
)

var codeNames = map[Code]string{
	CodeUnknown:            "UNKNOWN",
	CodeRegionNotFound:     "REGION_NOT_FOUND",
	CodeTimerNotDetected:   "TIMER_NOT_DETECTED",
	CodeMapNotDetected:     "MAP_NOT_DETECTED",
	CodeRecognitionFailure: "RECOGNITION_FAILURE",
	CodeImageDecodeFailure: "IMAGE_DECODE_FAILURE",
	CodeCaptureFailure:     "CAPTURE_FAILURE",
	CodePassInFlight:       "PASS_IN_FLIGHT",
	CodeBankLoadFailure:    "BANK_LOAD_FAILURE",
	CodeConfigInvalid:      "CONFIG_INVALID",
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// AppError is the base error type with structured code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// IsCode checks if an error carries a specific code, unwrapping as needed.
func IsCode(err error, code Code) bool {
	for err != nil {
		appErr, ok := err.(*AppError)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// CodeOf returns the code of an error, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// IsPassAbort reports whether the error aborts a whole detection pass rather
// than a single field.
func IsPassAbort(err error) bool {
	switch CodeOf(err) {
	case CodeTimerNotDetected, CodeMapNotDetected, CodeImageDecodeFailure, CodeCaptureFailure:
		return true
	default:
		return false
	}
}

// IsRetryable returns true if the error is worth retrying at the driver level.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeCaptureFailure, CodeRecognitionFailure, CodeBankLoadFailure:
		return true
	default:
		return false
	}
}
