// Package api is the HTTP client for the Ember backend's session and
// notification endpoints.
//
// # Error classification
//
// Every failure falls into exactly one bucket:
//
//   - ErrTransient: the request never completed (offline, DNS, timeout).
//     Callers fail open and keep local state.
//   - ErrUnauthorized: the backend answered 401/403. The client fires the
//     UnauthorizedSignal before returning, so the session store can force
//     logout without the call site knowing about session state.
//   - BackendError: the backend answered {success:false, message}. Surfaced
//     to the immediate caller; never retried here.
//
// # Unauthorized signal
//
// UnauthorizedSignal is a single-slot handler wired at composition time:
// the network layer invokes it, the session store registers the forced
// logout on it. It is never a package-level global.
package api
