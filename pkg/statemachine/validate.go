package statemachine

import "fmt"

// ValidateStates checks that a state set is safe to execute.
// Checks run as whole-set passes in a fixed order, so a set breaking several
// rules always reports the same error: initial state count, ids, then
// transition conditions. Shape rules of final states are enforced by the
// Final type itself.
func ValidateStates[C, S any](states []State[C, S]) error {
	if len(states) == 0 {
		return ErrInvalidStates
	}

	initial := 0
	for i, s := range states {
		if isNilState(s) {
			return fmt.Errorf("%w: state at index %d is nil", ErrInvalidStates, i)
		}
		if s.IsInitial() {
			initial++
		}
	}
	if initial != 1 {
		return fmt.Errorf("%w: found %d", ErrInvalidInitialState, initial)
	}

	// An empty id is reserved for "not started".
	for i, s := range states {
		if s.Name() == "" {
			return fmt.Errorf("%w: state at index %d has an empty id", ErrInvalidStateID, i)
		}
	}

	seen := make(map[string]struct{}, len(states))
	for _, s := range states {
		id := s.Name()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidStateID, id)
		}
		seen[id] = struct{}{}
	}

	nodes := make([]node[C, S], len(states))
	for i, s := range states {
		nodes[i] = s.node()
	}
	for _, n := range nodes {
		if !n.final && n.auto && n.guard != nil {
			return fmt.Errorf("%w: state %q cannot be both auto-transitioning and guarded", ErrInvalidTransitionCondition, n.id)
		}
	}
	for _, n := range nodes {
		if !n.final && n.transitionTo == nil {
			return fmt.Errorf("%w: state %q is not final and has no transition", ErrInvalidTransitionCondition, n.id)
		}
	}
	return nil
}

// ValidateHydration runs ValidateStates and additionally requires a state
// with currentStateID to be present in the set.
func ValidateHydration[C, S any](states []State[C, S], currentStateID string) error {
	if err := ValidateStates(states); err != nil {
		return err
	}
	for _, s := range states {
		if s.Name() == currentStateID {
			return nil
		}
	}
	return fmt.Errorf("%w: snapshot state %q is not in the state set", ErrInvalidStateID, currentStateID)
}
