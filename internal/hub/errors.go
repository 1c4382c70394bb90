package hub

import (
	"errors"
	"fmt"
)

// Failure classes for hub calls. Callers dispatch with errors.Is; every
// error returned by this package wraps exactly one of these.
var (
	// ErrUpstreamUnavailable: the hub could not be reached at all
	// (connection failure, timeout).
	ErrUpstreamUnavailable = errors.New("hub unavailable")
	// ErrUpstreamRejected: the hub answered with a non-2xx status
	// (invalid or already-used code, bad credentials, expired token).
	ErrUpstreamRejected = errors.New("hub rejected request")
	// ErrMalformedResponse: the hub answered 2xx but the payload could not
	// be used (unparseable JSON, required fields missing).
	ErrMalformedResponse = errors.New("malformed hub response")
)

// StatusError is a rejected hub request. It carries the HTTP status and the
// hub-supplied body for diagnostics and matches ErrUpstreamRejected.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrUpstreamRejected) hold for StatusError values.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

// unavailable wraps a transport-level failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

// malformed wraps a payload the hub should not have sent.
func malformed(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
}
