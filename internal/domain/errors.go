package domain

import (
	"errors"
	"fmt"
)

var ErrCacheDisabled = errors.New("redis client not configured")

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// UpstreamError is a gateway response that was non-2xx, malformed, or
// success:false. Rejected is set only for the last case.
type UpstreamError struct {
	StatusCode int
	Message    string
	Payload    []byte
	Rejected   bool
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway responded with status %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// TransportError wraps network and timeout failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RetryExhaustedError wraps the last failure after every attempt was used.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// IsRejected reports whether err carries an explicit success:false answer.
func IsRejected(err error) bool {
	ue, ok := AsUpstream(err)
	return ok && ue.Rejected
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsUpstream returns the upstream error at the root of err, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
