// Package errors provides the standardized error values used across the widget.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFormValidationFailed ErrorCode = "FORM_VALIDATION_FAILED"
	ErrCodeUnknownField         ErrorCode = "UNKNOWN_FIELD"
	ErrCodeSubmissionInFlight   ErrorCode = "SUBMISSION_IN_FLIGHT"

	ErrCodeWebhookNotConfigured     ErrorCode = "WEBHOOK_NOT_CONFIGURED"
	ErrCodeWebhookRequestFailed     ErrorCode = "WEBHOOK_REQUEST_FAILED"
	ErrCodeWebhookNetworkError      ErrorCode = "WEBHOOK_NETWORK_ERROR"
	ErrCodeWebhookTimeout           ErrorCode = "WEBHOOK_TIMEOUT"
	ErrCodeWebhookResponseMalformed ErrorCode = "WEBHOOK_RESPONSE_MALFORMED"

	ErrCodeGuardUnavailable    ErrorCode = "GUARD_UNAVAILABLE"
	ErrCodeSessionLimitReached ErrorCode = "SESSION_LIMIT_REACHED"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error categories returned by GetErrorCategory.
const (
	CategoryValidation  = "VALIDATION"
	CategoryRequest     = "REQUEST"
	CategoryTransport   = "TRANSPORT"
	CategoryConcurrency = "CONCURRENCY"
	CategoryOther       = "OTHER"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another *StandardError by code so sentinel comparisons work with
// errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns e after setting key on its metadata map.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// ErrSubmissionInFlight is returned when a submit arrives while another one is
// pending. Compare with errors.Is.
var ErrSubmissionInFlight = &StandardError{
	Code:    ErrCodeSubmissionInFlight,
	Message: "A submission is already in progress",
}

// NewFormValidationFailedError reports missing or malformed form fields.
func NewFormValidationFailedError(fields []string) *StandardError {
	return newError(ErrCodeFormValidationFailed, "Form validation failed",
		fmt.Sprintf("fields: %s", strings.Join(fields, ", ")), nil).
		WithMetadata("fields", fields)
}

// NewUnknownFieldError reports a field name the form does not have.
func NewUnknownFieldError(field string) *StandardError {
	return newError(ErrCodeUnknownField, "Unknown form field", field, nil).
		WithMetadata("field", field)
}

// NewWebhookNotConfiguredError is returned when no destination URL is set.
func NewWebhookNotConfiguredError() *StandardError {
	return newError(ErrCodeWebhookNotConfigured, "Webhook URL is not configured", "", nil)
}

// NewWebhookRequestFailedError reports a non-success HTTP status.
func NewWebhookRequestFailedError(statusCode int, body string) *StandardError {
	return newError(ErrCodeWebhookRequestFailed, "Webhook rejected the request",
		fmt.Sprintf("status %d: %s", statusCode, body), nil).
		WithMetadata("statusCode", statusCode)
}

// NewWebhookNetworkError reports a transport-level failure.
func NewWebhookNetworkError(err error) *StandardError {
	return newError(ErrCodeWebhookNetworkError, "Webhook call failed", err.Error(), err)
}

// NewWebhookTimeoutError reports that the transport deadline elapsed.
func NewWebhookTimeoutError(timeout time.Duration, err error) *StandardError {
	return newError(ErrCodeWebhookTimeout, "Webhook call timed out",
		fmt.Sprintf("timeout %s", timeout), err)
}

// NewWebhookResponseMalformedError reports a success status whose body is not JSON.
func NewWebhookResponseMalformedError(statusCode int, err error) *StandardError {
	return newError(ErrCodeWebhookResponseMalformed, "Webhook response body could not be decoded",
		err.Error(), err).
		WithMetadata("statusCode", statusCode)
}

// NewGuardUnavailableError reports that the in-flight guard could not be consulted.
func NewGuardUnavailableError(err error) *StandardError {
	return newError(ErrCodeGuardUnavailable, "Submission guard unavailable", err.Error(), err)
}

// NewSessionLimitError reports that no new widget session can be opened.
func NewSessionLimitError(limit int) *StandardError {
	return newError(ErrCodeSessionLimitReached, "Too many open widget sessions",
		fmt.Sprintf("limit %d", limit), nil).
		WithMetadata("limit", limit)
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError normalizes any error into a *StandardError. Unknown errors
// become INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), err)
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFormValidationFailed, ErrCodeUnknownField:
		return CategoryValidation
	case ErrCodeWebhookRequestFailed:
		return CategoryRequest
	case ErrCodeWebhookNetworkError, ErrCodeWebhookTimeout, ErrCodeWebhookResponseMalformed:
		return CategoryTransport
	case ErrCodeSubmissionInFlight, ErrCodeGuardUnavailable, ErrCodeSessionLimitReached:
		return CategoryConcurrency
	default:
		return CategoryOther
	}
}

// CodeOf extracts the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandardError(err).Code
}
