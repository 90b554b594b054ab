// Package apierr provides shared error sentinels and retry infrastructure
// for the habitkit API client. All transport- and protocol-level failures
// are classified into these sentinels at the layer where they occur.
//
// Layers map raw failures to these errors using fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrAuthFailed) etc.
package apierr

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Sentinel errors for API interaction failures.
var (
	// ErrAuthFailed indicates a missing, invalid, or expired token that
	// could not be recovered by a refresh.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrTimeout indicates no response arrived within the configured window.
	// Timeouts are terminal: they are never retried as network failures.
	ErrTimeout = errors.New("request timeout")

	// ErrNetwork indicates a connection-level failure with a retriable
	// signature (refused, reset, dropped mid-stream).
	ErrNetwork = errors.New("network request failed")

	// ErrServer indicates a non-2xx response whose JSON payload carried an
	// error message. Not retryable.
	ErrServer = errors.New("server error")

	// ErrMalformedResponse indicates a body that failed JSON parsing when
	// JSON was expected. Never treated as success.
	ErrMalformedResponse = errors.New("malformed response")
)

// transientSignatures are message fragments that mark an unclassified error
// as a transient network failure. The first entry is the signature the
// mobile fetch stack surfaces for dropped connections.
var transientSignatures = []string{
	"network request failed",
	"connection refused",
	"connection reset",
	"no such host",
	"broken pipe",
}

// Transient reports whether err should be retried as a transient network
// failure. Timeouts and context cancellation are explicitly excluded.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// A response with a status code is a server decision, not a dropped
	// connection, even when classified network-level.
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	return errors.Is(err, ErrNetwork)
}

// ClassifyDial maps a raw transport error to a sentinel. Deadline errors
// become ErrTimeout; connection-level errors become ErrNetwork; anything
// else passes through unchanged.
func ClassifyDial(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrNetwork
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return ErrNetwork
		}
	}

	return err
}
