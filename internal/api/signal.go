// ABOUTME: UnauthorizedSignal bridges credential invalidation from the network layer to the session store
// ABOUTME: Single-slot handler; re-registration replaces, repeated invocation is safe

package api

import "sync"

// UnauthorizedSignal is a single-slot callback invoked whenever a backend
// request is classified as unauthorized. It is constructed once at app
// composition time and injected into the Client; the session store registers
// its forced-logout handler on it. Handlers must be idempotent: bursts of
// unauthorized responses invoke the handler once per response.
type UnauthorizedSignal struct {
	mu      sync.Mutex
	handler func()
}

// NewUnauthorizedSignal creates an empty signal.
func NewUnauthorizedSignal() *UnauthorizedSignal {
	return &UnauthorizedSignal{}
}

// Register installs the handler, replacing any previous one.
func (s *UnauthorizedSignal) Register(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// invoke calls the registered handler, if any. Safe with no handler set.
func (s *UnauthorizedSignal) invoke() {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()

	if h != nil {
		h()
	}
}
