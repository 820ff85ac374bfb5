// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown            ErrorType = iota
	ErrorTypeTransient                    // Temporary network issues
	ErrorTypePermanent                    // Configuration errors, bad requests
	ErrorTypeTimeout                      // Request timeouts
	ErrorTypeServiceUnavailable           // Provider downtime
	ErrorTypeInvalidInput                 // Bad input data
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypePermanent:
		return "Permanent"
	case ErrorTypeTimeout:
		return "Timeout"
	case ErrorTypeServiceUnavailable:
		return "ServiceUnavailable"
	case ErrorTypeInvalidInput:
		return "InvalidInput"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// temporary is implemented by errors that self-identify as transient,
// such as provider-unavailable errors.
type temporary interface {
	Temporary() bool
}

// ClassifyError categorizes an error for appropriate handling
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	// Check if already classified
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	// Context cancellation is the caller's decision, never retried.
	if errors.Is(err, context.Canceled) {
		return &ClassifiedError{Original: err, Type: ErrorTypePermanent, Retryable: false}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{Original: err, Type: ErrorTypeTimeout, Retryable: false}
	}

	if isTimeoutError(err) {
		return &ClassifiedError{Original: err, Type: ErrorTypeTimeout, Retryable: true}
	}

	if isNetworkError(err) {
		return &ClassifiedError{Original: err, Type: ErrorTypeTransient, Retryable: true}
	}

	var tmp temporary
	if errors.As(err, &tmp) && tmp.Temporary() {
		return &ClassifiedError{Original: err, Type: ErrorTypeServiceUnavailable, Retryable: true}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "service unavailable") || strings.Contains(errStr, "internal server error"):
		return &ClassifiedError{Original: err, Type: ErrorTypeServiceUnavailable, Retryable: true}

	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "malformed") ||
		strings.Contains(errStr, "bad request"):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput, Retryable: false}
	}

	// Default to unknown, non-retryable
	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown, Retryable: false}
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// isTimeoutError checks if an error indicates a timeout
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
