// Package errors provides the error types shared across permanode layers.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is through any AppContextError chain.
var (
	ErrMessageNotFound     = errors.New("message not found")
	ErrMilestoneNotFound   = errors.New("milestone not found")
	ErrKeyspaceNotFound    = errors.New("keyspace not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrOperationTimeout    = errors.New("operation timeout")
	ErrEndpointUnavailable = errors.New("node endpoint unavailable")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrMilestoneNotFound) ||
		errors.Is(err, ErrKeyspaceNotFound)
}

// IsStorageError checks if an error represents a storage-related problem
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsValidationError checks if an error represents invalid input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeoutError checks if an error represents a timeout condition
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrOperationTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsEndpointError checks if every node endpoint failed
func IsEndpointError(err error) bool {
	return errors.Is(err, ErrEndpointUnavailable)
}

// IsRetryableError determines if an error represents a condition that can be retried
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return IsTimeoutError(err) || IsEndpointError(err) || IsStorageError(err) || errors.Is(err, ErrRateLimitExceeded)
}

func wrapSentinel(sentinel, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %w", sentinel, cause)
	}
	return fmt.Errorf("%w", sentinel)
}

// NewMessageNotFoundError wraps ErrMessageNotFound
func NewMessageNotFoundError(layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeNotFound, "message not found", layer, component, operation, wrapSentinel(ErrMessageNotFound, nil), context)
}

// NewMilestoneNotFoundError wraps ErrMilestoneNotFound
func NewMilestoneNotFoundError(layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeNotFound, "milestone not found", layer, component, operation, wrapSentinel(ErrMilestoneNotFound, nil), context)
}

// NewKeyspaceNotFoundError wraps ErrKeyspaceNotFound
func NewKeyspaceNotFoundError(layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeNotFound, "keyspace not found", layer, component, operation, wrapSentinel(ErrKeyspaceNotFound, nil), context)
}

// NewStorageUnavailableError wraps ErrStorageUnavailable and the original cause
func NewStorageUnavailableError(layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeDatabase, "storage unavailable", layer, component, operation, wrapSentinel(ErrStorageUnavailable, cause), context)
}

// NewOperationTimeoutError wraps ErrOperationTimeout
func NewOperationTimeoutError(layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeTimeout, "operation timeout", layer, component, operation, wrapSentinel(ErrOperationTimeout, cause), context)
}

// NewEndpointUnavailableError wraps ErrEndpointUnavailable
func NewEndpointUnavailableError(layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeExternalAPI, "node endpoint unavailable", layer, component, operation, wrapSentinel(ErrEndpointUnavailable, cause), context)
}

// NewRateLimitExceededError wraps ErrRateLimitExceeded
func NewRateLimitExceededError(layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeRateLimit, "rate limit exceeded", layer, component, operation, wrapSentinel(ErrRateLimitExceeded, cause), context)
}

// IsRetryableHTTPStatus reports whether a client may retry a response with status.
func IsRetryableHTTPStatus(status int) bool {
	switch status {
	case 429, 502, 503, 504:
		return true
	}
	return false
}
