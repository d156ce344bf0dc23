// Package statemachine provides an embeddable finite-state-machine core that
// drives a single process through a user-supplied set of states.
//
// A state set is a slice of State values, each either an Interior state
// (with a TransitionTo function, an optional Guard, and an optional Auto flag)
// or a Final state. The package handles:
//  1. Structural validation of the state set before anything runs
//  2. Entry, exit and completion hooks with a mutable context
//  3. Automatic cascades through auto-transitioning and final states
//  4. Synchronous listener notification after every state entry
//  5. Snapshots and hydration of a machine from a snapshot
//
// # Architecture
//
// A Machine is generic over its context type C and shared data type S. The
// context is the process payload, rewritten by hooks through a *C. Shared
// data is the environment (clients, repositories) hooks operate on.
//
// Machines can only be created with From or FromSnapshot, both of which
// validate the state set first. The engine therefore never re-checks the
// structure at run time; only a TransitionTo returning an unknown id is
// discovered while running.
//
// # Usage
//
//	type Order struct {
//	    Paid bool `json:"paid"`
//	}
//
//	states := []statemachine.State[Order, *Deps]{
//	    statemachine.Interior[Order, *Deps]{
//	        ID:      "checkout",
//	        Initial: true,
//	        Guard: func(ctx context.Context, o *Order, d *Deps, evt any) (bool, error) {
//	            return evt == "pay", nil
//	        },
//	        TransitionTo: func(ctx context.Context, o *Order, d *Deps, evt any) (string, error) {
//	            o.Paid = true
//	            return "done", nil
//	        },
//	    },
//	    statemachine.Final[Order, *Deps]{ID: "done"},
//	}
//
//	m, err := statemachine.From(states, Order{}, deps)
//	if err != nil {
//	    // invalid state set
//	}
//	_ = m.Start(ctx)
//	_ = m.Send(ctx, "pay") // m.IsFinished() == true
//
// # Execution
//
// Start enters the initial state. Entering a state sets it current, runs
// OnEntry, then notifies listeners. Final and Auto states are executed right
// away with a nil event; others wait for Send. Executing an interior state calls TransitionTo,
// resolves the destination, runs OnExit and enters the destination. Executing
// a final state runs OnExit and OnFinal and marks the machine finished.
//
// Send first consults the current state's Guard. A false result drops the
// event: nothing changes and no listener is notified.
//
// A cascade is bounded by WithMaxCascadeDepth. A cycle of Auto states fails
// with ErrCascadeLimit instead of looping forever.
//
// # Error Handling
//
// Validation failures wrap ErrInvalidStates, ErrInvalidInitialState,
// ErrInvalidStateID or ErrInvalidTransitionCondition (see IsValidationError).
// Sending to a finished machine or resolving an unknown destination returns
// ErrInvalidTransition. Hook errors are wrapped in ErrHookFailed and stop the
// cascade at the failing step.
//
// # Snapshots
//
// CreateSnapshot deep-copies the context with the configured Cloner
// (JSONCloner by default). FromSnapshot restores the machine id and context
// and pins the current state; Start re-enters it.
//
// # Concurrency
//
// Start, Send and CreateSnapshot share one gate per machine, so a snapshot
// taken from another goroutine waits for the running cascade and never sees
// a half-written context. Hooks and listeners receive a context marked with
// the running cascade: passing it to CreateSnapshot snapshots immediately,
// and passing it to Start or Send fails with ErrReentrantCall.
//
// CurrentStateID, IsStarted and IsFinished may be called from any goroutine.
// Context is unsynchronized: call it from hooks and listeners, or when no
// Start or Send is running.
package statemachine
