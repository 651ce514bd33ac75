package order

import "fmt"

// StateMachine validates order status transitions.
type StateMachine struct {
	transitions map[Status][]Status
}

// NewStateMachine creates the lifecycle state machine. Cancellation is
// reachable from every non-terminal state; completed and cancelled are
// terminal.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[Status][]Status{
			StatusPending:   {StatusConfirmed, StatusCancelled},
			StatusConfirmed: {StatusPreparing, StatusCancelled},
			StatusPreparing: {StatusReady, StatusCancelled},
			StatusReady:     {StatusDelivered, StatusCancelled},
			StatusDelivered: {StatusCompleted, StatusCancelled},
			StatusCompleted: {}, // Terminal state
			StatusCancelled: {}, // Terminal state
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to Status) bool {
	allowed, ok := sm.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Validate returns an error describing the rejected transition, or nil.
func (sm *StateMachine) Validate(from, to Status) error {
	if !sm.CanTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// AllowedTransitions returns all allowed transitions from the given state.
func (sm *StateMachine) AllowedTransitions(from Status) []Status {
	allowed, ok := sm.transitions[from]
	if !ok {
		return []Status{}
	}
	result := make([]Status, len(allowed))
	copy(result, allowed)
	return result
}
