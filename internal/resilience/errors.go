package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind classifies an error for propagation policy decisions.
type Kind string

const (
	// KindNotFound marks an unknown contact, edge, or tenant.
	KindNotFound Kind = "not_found"
	// KindInvalidInput marks a malformed filter or out-of-range parameter.
	KindInvalidInput Kind = "invalid_input"
	// KindUpstreamUnavailable marks a storage or collaborator failure.
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	// KindPartialBatchFailure marks a batch where some items failed but the
	// overall call still returns results for the items that succeeded.
	KindPartialBatchFailure Kind = "partial_batch_failure"
)

// Error is a classified error. Use the constructors below.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound wraps err as a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// InvalidInput wraps err as an invalid-input error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Err: fmt.Errorf(format, args...)}
}

// UpstreamUnavailable wraps an underlying storage/collaborator failure.
func UpstreamUnavailable(err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Err: err}
}

// PartialBatch reports a batch with failed items. The call that returns it
// still carries the successful results.
func PartialBatch(failed, total int) *Error {
	return &Error{Kind: KindPartialBatchFailure, Err: fmt.Errorf("%d of %d items failed", failed, total)}
}

// KindOf returns the Kind of err, or "" if err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is classified as not-found.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidInput reports whether err is classified as invalid-input.
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsTransient returns true when err looks like a transient network or
// upstream failure that is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if KindOf(err) == KindUpstreamUnavailable {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"too many requests",
		"overloaded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
