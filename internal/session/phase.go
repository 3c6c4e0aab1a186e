// ABOUTME: Session lifecycle phases for boot-time load and reconciliation
// ABOUTME: Transition guard into Validating: isOnboarded && token present

package session

import "fmt"

// Phase is the session store's lifecycle state.
//
//	Unloaded -> LocalOnly -> Validating -> Reconciled
//	                              |-> LocalOnly   (fail open on transient failure)
//	                              |-> Invalidated (genuine credential invalidation)
type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseLocalOnly
	PhaseValidating
	PhaseReconciled
	PhaseInvalidated
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseUnloaded:
		return "unloaded"
	case PhaseLocalOnly:
		return "local-only"
	case PhaseValidating:
		return "validating"
	case PhaseReconciled:
		return "reconciled"
	case PhaseInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
