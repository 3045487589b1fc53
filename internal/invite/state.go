package invite

import (
	"fmt"

	"linguachat/internal/domain"
)

// AcceptanceState is one phase of the invited client's acceptance flow.
type AcceptanceState string

const (
	StateLoading     AcceptanceState = "loading"
	StateAccepting   AcceptanceState = "accepting"
	StateRedirecting AcceptanceState = "redirecting"
	StateError       AcceptanceState = "error"
)

// legal transitions of the acceptance flow. Redirecting and error are
// terminal.
var transitions = map[AcceptanceState][]AcceptanceState{
	StateLoading:   {StateAccepting, StateError},
	StateAccepting: {StateRedirecting, StateError},
}

// Acceptance tracks an invitation acceptance through its states.
type Acceptance struct {
	state AcceptanceState
}

// NewAcceptance starts in the loading state, waiting on identity resolution.
func NewAcceptance() *Acceptance {
	return &Acceptance{state: StateLoading}
}

// State returns the current state.
func (a *Acceptance) State() AcceptanceState {
	return a.state
}

// To moves the flow to next, rejecting transitions the machine does not
// allow.
func (a *Acceptance) To(next AcceptanceState) error {
	for _, allowed := range transitions[a.state] {
		if allowed == next {
			a.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, a.state, next)
}
