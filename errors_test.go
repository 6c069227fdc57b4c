package coinbasepro

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_ErrorFormat(t *testing.T) {
	withCause := &APIError{
		Code:    ErrCodeTransport,
		Op:      opTicker,
		Message: "dispatch request",
		Cause:   errors.New("connection refused"),
	}
	want := "coinbasepro ticker: dispatch request (TRANSPORT_ERROR): connection refused"
	if withCause.Error() != want {
		t.Errorf("Error() = %q, want %q", withCause.Error(), want)
	}

	withoutCause := &APIError{Code: ErrCodeURL, Op: opProducts, Message: "assemble request URL"}
	want = "coinbasepro products: assemble request URL (URL_ERROR)"
	if withoutCause.Error() != want {
		t.Errorf("Error() = %q, want %q", withoutCause.Error(), want)
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", &APIError{Code: ErrCodeDecode, Cause: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through the APIError")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("errors.As should find the APIError in the chain")
	}
	if apiErr.Code != ErrCodeDecode {
		t.Errorf("unexpected code %s", apiErr.Code)
	}
}

func TestAPIError_Timeout(t *testing.T) {
	timeout := &APIError{Code: ErrCodeTimeout}
	if !timeout.Timeout() {
		t.Error("TIMEOUT errors should report Timeout() true")
	}
	if (&APIError{Code: ErrCodeTransport}).Timeout() {
		t.Error("non-timeout errors should report Timeout() false")
	}
}

func TestErrorPredicates(t *testing.T) {
	cases := []struct {
		code string
		pred func(error) bool
	}{
		{ErrCodeURL, IsURLError},
		{ErrCodeTransport, IsTransportError},
		{ErrCodeTimeout, IsTimeoutError},
		{ErrCodeDecode, IsDecodeError},
		{ErrCodeParse, IsParseError},
	}

	for _, tc := range cases {
		err := fmt.Errorf("wrapped: %w", &APIError{Code: tc.code})
		if !tc.pred(err) {
			t.Errorf("predicate for %s should match a wrapped APIError", tc.code)
		}

		// Every other predicate must reject this code.
		for _, other := range cases {
			if other.code == tc.code {
				continue
			}
			if other.pred(err) {
				t.Errorf("predicate for %s wrongly matched code %s", other.code, tc.code)
			}
		}
	}

	if IsTimeoutError(errors.New("plain")) {
		t.Error("predicates should reject non-APIError errors")
	}
	if IsTransportError(nil) {
		t.Error("predicates should reject nil")
	}
}

func TestIsDeadlineErr(t *testing.T) {
	if !isDeadlineErr(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded should classify as a deadline error")
	}
	if !isDeadlineErr(fmt.Errorf("request: %w", context.DeadlineExceeded)) {
		t.Error("wrapped DeadlineExceeded should classify as a deadline error")
	}
	if isDeadlineErr(context.Canceled) {
		t.Error("cancellation is not a deadline error")
	}
	if isDeadlineErr(errors.New("connection refused")) {
		t.Error("plain transport failures are not deadline errors")
	}
}
