package auth

import "fmt"

// Phase is the caller-visible state of a polling session.
type Phase int

const (
	PhasePending Phase = iota
	PhaseIntervalChanged
	PhaseAuthorized
	PhaseDenied
	PhaseTimedOut
	PhaseCancelled
)

// Status is reported to the caller at each poller transition.
type Status struct {
	Phase       Phase
	Attempt     int
	MaxAttempts int
	Interval    int // seconds
}

// StatusFunc receives poller status updates. It is called from the polling goroutine.
type StatusFunc func(Status)

// String renders the status line shown to the operator.
func (s Status) String() string {
	switch s.Phase {
	case PhasePending:
		if s.Attempt == 0 {
			return "Waiting for authorization..."
		}
		return fmt.Sprintf("Waiting for authorization... (check %d/%d)", s.Attempt, s.MaxAttempts)
	case PhaseIntervalChanged:
		return fmt.Sprintf("Waiting for authorization... (polling every %ds)", s.Interval)
	case PhaseAuthorized:
		return "Authorized."
	case PhaseDenied:
		return "Authorization denied."
	case PhaseTimedOut:
		return "Timed out waiting for authorization."
	case PhaseCancelled:
		return "Authorization cancelled."
	default:
		return ""
	}
}

// Terminal reports whether the phase ends the session.
func (s Status) Terminal() bool {
	return s.Phase >= PhaseAuthorized
}
