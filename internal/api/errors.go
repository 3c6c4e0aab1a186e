// ABOUTME: Error taxonomy for backend calls: transient, unauthorized, backend-logic
// ABOUTME: Transient errors never invalidate the session; unauthorized always does

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTransient marks a transport-level failure (offline, DNS, timeout).
// Callers must fail open: keep local state, never logout.
var ErrTransient = errors.New("transient network error")

// ErrUnauthorized marks a genuine credential invalidation (HTTP 401/403).
var ErrUnauthorized = errors.New("unauthorized")

// BackendError is a backend-logic failure: the request reached the server
// and was rejected with {success:false, message}.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: %s", e.Message)
}

// IsTransient reports whether err is a transport-level failure that should
// be treated as "try again later" rather than a state-changing condition.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
