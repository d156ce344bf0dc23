package statemachine

import (
	"errors"
	"fmt"
)

// Structural errors returned by ValidateStates and ValidateHydration.
var (
	ErrInvalidStates              = errors.New("invalid states: expected a non-empty list of state definitions")
	ErrInvalidInitialState        = errors.New("invalid initial state: exactly one state must be initial")
	ErrInvalidStateID             = errors.New("invalid state id")
	ErrInvalidTransitionCondition = errors.New("invalid transition condition")
)

// Runtime errors.
var (
	ErrInvalidConstructor = errors.New("state machine must be created with From or FromSnapshot")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrAlreadyStarted     = errors.New("state machine already started")
	ErrNotStarted         = errors.New("state machine not started")
	ErrHookFailed         = errors.New("state hook failed")
	ErrCloneFailed        = errors.New("failed to clone machine context")
	ErrNilListener        = errors.New("listener cannot be nil")
	ErrReentrantCall      = errors.New("state machine called from its own hook or listener")

	// ErrCascadeLimit wraps ErrInvalidTransition, so callers checking for the
	// latter also catch runaway auto-transition cycles.
	ErrCascadeLimit = fmt.Errorf("%w: cascade depth limit reached", ErrInvalidTransition)
)

// IsValidationError reports whether err was caused by a structurally invalid state set.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidStates) ||
		errors.Is(err, ErrInvalidInitialState) ||
		errors.Is(err, ErrInvalidStateID) ||
		errors.Is(err, ErrInvalidTransitionCondition)
}

func hookError(stateID, hook string, err error) error {
	return fmt.Errorf("%w: state %q %s: %w", ErrHookFailed, stateID, hook, err)
}
