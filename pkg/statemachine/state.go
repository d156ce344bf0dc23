package statemachine

import "context"

// TransitionFunc returns the id of the state to move to next.
type TransitionFunc[C, S any] func(ctx context.Context, c *C, shared S, event any) (string, error)

// GuardFunc decides whether an external event may leave the current state.
// Returning false drops the event without error.
type GuardFunc[C, S any] func(ctx context.Context, c *C, shared S, event any) (bool, error)

// HookFunc runs side effects on entry, exit, or completion of a state.
type HookFunc[C, S any] func(ctx context.Context, c *C, shared S, event any) error

// State is a node of the machine graph. It is implemented by Interior and
// Final only.
type State[C, S any] interface {
	Name() string
	IsInitial() bool
	IsFinal() bool
	node() node[C, S]
}

// Interior is a non-final state. It always has an outgoing transition.
type Interior[C, S any] struct {
	ID      string
	Initial bool

	// TransitionTo is required.
	TransitionTo TransitionFunc[C, S]
	// Guard gates external events. Mutually exclusive with Auto.
	Guard GuardFunc[C, S]
	// Auto makes the state transition right after entry without waiting for an event.
	Auto bool

	OnEntry HookFunc[C, S]
	OnExit  HookFunc[C, S]
}

func (s Interior[C, S]) Name() string    { return s.ID }
func (s Interior[C, S]) IsInitial() bool { return s.Initial }
func (s Interior[C, S]) IsFinal() bool   { return false }

func (s Interior[C, S]) node() node[C, S] {
	return node[C, S]{
		id:           s.ID,
		auto:         s.Auto,
		transitionTo: s.TransitionTo,
		guard:        s.Guard,
		onEntry:      s.OnEntry,
		onExit:       s.OnExit,
	}
}

// Final is a terminal state. Entering it finishes the machine.
type Final[C, S any] struct {
	ID      string
	Initial bool

	OnEntry HookFunc[C, S]
	OnExit  HookFunc[C, S]
	OnFinal HookFunc[C, S]
}

func (s Final[C, S]) Name() string    { return s.ID }
func (s Final[C, S]) IsInitial() bool { return s.Initial }
func (s Final[C, S]) IsFinal() bool   { return true }

func (s Final[C, S]) node() node[C, S] {
	return node[C, S]{
		id:      s.ID,
		final:   true,
		onEntry: s.OnEntry,
		onExit:  s.OnExit,
		onFinal: s.OnFinal,
	}
}

// node is the flattened, immutable form of a State used by the engine.
type node[C, S any] struct {
	id           string
	final        bool
	auto         bool
	transitionTo TransitionFunc[C, S]
	guard        GuardFunc[C, S]
	onEntry      HookFunc[C, S]
	onExit       HookFunc[C, S]
	onFinal      HookFunc[C, S]
}

// advancesOnEntry reports whether the state executes without an external event.
func (n node[C, S]) advancesOnEntry() bool {
	return n.final || n.auto
}

func isNilState[C, S any](s State[C, S]) bool {
	switch v := s.(type) {
	case nil:
		return true
	case *Interior[C, S]:
		return v == nil
	case *Final[C, S]:
		return v == nil
	}
	return false
}
