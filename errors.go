package coinbasepro

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError is the error type returned by every Client method. Code tells the
// caller which stage of the request pipeline failed; Cause preserves the
// underlying error for errors.Is / errors.As chains.
type APIError struct {
	Code     string `json:"code"`
	Op       string `json:"op"`
	Endpoint string `json:"endpoint"`
	Message  string `json:"message"`
	Cause    error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("coinbasepro %s: %s (%s): %v", e.Op, e.Message, e.Code, e.Cause)
	}
	return fmt.Sprintf("coinbasepro %s: %s (%s)", e.Op, e.Message, e.Code)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the error was caused by a deadline expiring, which
// lets APIError satisfy the same probe net.Error implementations answer.
func (e *APIError) Timeout() bool {
	return e.Code == ErrCodeTimeout
}

// Common error codes
const (
	ErrCodeURL       = "URL_ERROR"
	ErrCodeTransport = "TRANSPORT_ERROR"
	ErrCodeTimeout   = "TIMEOUT"
	ErrCodeDecode    = "DECODE_ERROR"
	ErrCodeParse     = "PARSE_ERROR"
)

// errCode extracts the pipeline stage code from any error wrapping an
// APIError.
func errCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsURLError reports whether err came from request URL assembly.
func IsURLError(err error) bool { return errCode(err) == ErrCodeURL }

// IsTransportError reports whether err came from the connection layer:
// DNS failure, refused connection, TLS handshake, broken pipe.
func IsTransportError(err error) bool { return errCode(err) == ErrCodeTransport }

// IsTimeoutError reports whether err was caused by the per-request deadline
// expiring, during either dispatch or body materialization.
func IsTimeoutError(err error) bool { return errCode(err) == ErrCodeTimeout }

// IsDecodeError reports whether err came from reading the response body
// after a successful dispatch.
func IsDecodeError(err error) bool { return errCode(err) == ErrCodeDecode }

// IsParseError reports whether err came from deserializing a fully
// materialized body. A parse failure means the fetch itself succeeded.
func IsParseError(err error) bool { return errCode(err) == ErrCodeParse }

// isDeadlineErr distinguishes deadline expiry from other transport-level
// failures. net/http surfaces client timeouts either as a wrapped
// context.DeadlineExceeded or as a net.Error with Timeout() true, depending
// on where the clock ran out.
func isDeadlineErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
