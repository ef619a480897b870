package errors

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
)

// Error codes shared by every layer.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND_ERROR"
	CodeDatabase    = "DATABASE_ERROR"
	CodeRateLimit   = "RATE_LIMIT_ERROR"
	CodeExternalAPI = "EXTERNAL_API_ERROR"
	CodeTimeout     = "TIMEOUT_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
)

// AppContextError represents an error with rich context information.
type AppContextError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Layer     string                 `json:"layer,omitempty"`     // rest, usecase, gateway, driver, broker
	Component string                 `json:"component,omitempty"` // Specific component/service name
	Operation string                 `json:"operation,omitempty"` // Specific operation/method name
	Cause     error                  `json:"-"`                   // Underlying error (not serialized)
	Context   map[string]interface{} `json:"context,omitempty"`   // Additional context information
	ErrorID   string                 `json:"-"`                   // Unique ID for log correlation
}

// Error implements the error interface
func (e *AppContextError) Error() string {
	var prefix string
	if e.Layer != "" && e.Component != "" && e.Operation != "" {
		prefix = fmt.Sprintf("[%s:%s:%s] ", e.Layer, e.Component, e.Operation)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *AppContextError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode maps error codes to HTTP status codes
func (e *AppContextError) HTTPStatusCode() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeExternalAPI:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable determines if the error represents a retryable condition
func (e *AppContextError) IsRetryable() bool {
	switch e.Code {
	case CodeRateLimit, CodeTimeout, CodeExternalAPI, CodeDatabase:
		return true
	default:
		return false
	}
}

var safeMessages = map[string]string{
	CodeDatabase:    "The storage cluster is temporarily unavailable.",
	CodeRateLimit:   "Too many requests. Please slow down.",
	CodeExternalAPI: "An upstream node is unavailable.",
	CodeTimeout:     "The request timed out.",
	CodeInternal:    "An unexpected error occurred. Please try again later.",
}

// SafeMessage returns a message that does not leak internal details.
// Validation and not-found messages are returned as written.
func (e *AppContextError) SafeMessage() string {
	if msg, ok := safeMessages[e.Code]; ok {
		return msg
	}
	if e.Code == CodeValidation || e.Code == CodeNotFound {
		return e.Message
	}
	return "An error occurred."
}

// SecureHTTPResponse is the error body sent to API clients.
type SecureHTTPResponse struct {
	Error SecureErrorDetail `json:"error"`
}

// SecureErrorDetail contains the error details for SecureHTTPResponse
type SecureErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ErrorID   string `json:"error_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ToSecureHTTPResponse converts an AppContextError to a secure HTTP response
func (e *AppContextError) ToSecureHTTPResponse() SecureHTTPResponse {
	return SecureHTTPResponse{
		Error: SecureErrorDetail{
			Code:      e.Code,
			Message:   e.SafeMessage(),
			ErrorID:   e.ErrorID,
			Retryable: e.IsRetryable(),
		},
	}
}

func generateErrorID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

// NewAppContextError creates a new AppContextError with full context
func NewAppContextError(
	code, message, layer, component, operation string,
	cause error,
	context map[string]interface{},
) *AppContextError {
	if context == nil {
		context = make(map[string]interface{})
	}

	return &AppContextError{
		Code:      code,
		Message:   message,
		Layer:     layer,
		Component: component,
		Operation: operation,
		Cause:     cause,
		Context:   context,
		ErrorID:   generateErrorID(),
	}
}

// NewValidationContextError creates a validation error with context
func NewValidationContextError(message, layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeValidation, message, layer, component, operation, fmt.Errorf("%w", ErrInvalidInput), context)
}

// NewInternalContextError creates an internal error with context
func NewInternalContextError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeInternal, message, layer, component, operation, cause, context)
}
