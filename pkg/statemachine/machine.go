package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/fsmkit/pkg/logger"
)

// Notification is delivered to listeners after every state entry.
// Context is a copy of the context value taken right after OnEntry. Slices,
// maps and pointers inside it still share memory with the machine, and
// listeners must not modify them. SharedData is the machine's own value.
type Notification[C, S any] struct {
	MachineID      string
	CurrentStateID string
	Context        C
	SharedData     S
	Event          any
}

// Listener receives state entry notifications. It runs inside the cascade,
// and ctx lets it call CreateSnapshot on the same machine without waiting.
type Listener[C, S any] func(ctx context.Context, n Notification[C, S])

// cascadeKey marks the contexts handed to hooks and listeners while the
// machine owning gate runs a cascade.
type cascadeKey struct{ gate chan struct{} }

type subscription[C, S any] struct {
	id string
	fn Listener[C, S]
}

// Machine drives a single process through a validated state set.
//
// Start, Send and CreateSnapshot are serialized per instance: a second caller
// waits until the running cascade returns or its own context is done. Hooks
// and listeners calling Start or Send on their own machine get
// ErrReentrantCall.
type Machine[C, S any] struct {
	id      string
	nodes   map[string]node[C, S]
	initial string
	gate    chan struct{}

	mu       sync.RWMutex
	current  string
	started  bool
	finished bool
	data     C
	shared   S

	subMu sync.RWMutex
	subs  []subscription[C, S]

	newID    IDGenerator
	clone    Cloner
	maxDepth int
	log      *slog.Logger
}

// From validates states and builds a machine that will enter the initial
// state on Start. c and shared are the initial context and shared data.
func From[C, S any](states []State[C, S], c C, shared S, opts ...Option) (*Machine[C, S], error) {
	if err := ValidateStates(states); err != nil {
		return nil, err
	}

	o := newOptions(opts...)
	m := newMachine(states, c, shared, o)
	m.id = o.id
	if m.id == "" {
		m.id = o.newID()
	}
	for _, s := range states {
		if s.IsInitial() {
			m.initial = s.Name()
			break
		}
	}
	return m, nil
}

// FromSnapshot rebuilds a machine from a snapshot. The state set must be
// supplied again since behavior is never part of a snapshot. The returned
// machine is pinned to the snapshot state and re-enters it on Start.
func FromSnapshot[C, S any](snap Snapshot[C], states []State[C, S], shared S, opts ...Option) (*Machine[C, S], error) {
	if snap.MachineID == "" {
		return nil, fmt.Errorf("%w: empty machine id", ErrInvalidSnapshot)
	}
	if err := ValidateHydration(states, snap.StateID); err != nil {
		return nil, err
	}

	o := newOptions(opts...)
	var data C
	if err := o.clone(snap.Context, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCloneFailed, err)
	}

	m := newMachine(states, data, shared, o)
	m.id = snap.MachineID
	m.initial = snap.StateID
	m.current = snap.StateID
	return m, nil
}

func newMachine[C, S any](states []State[C, S], c C, shared S, o options) *Machine[C, S] {
	nodes := make(map[string]node[C, S], len(states))
	for _, s := range states {
		nodes[s.Name()] = s.node()
	}
	return &Machine[C, S]{
		nodes:    nodes,
		gate:     make(chan struct{}, 1),
		data:     c,
		shared:   shared,
		newID:    o.newID,
		clone:    o.clone,
		maxDepth: o.maxDepth,
		log:      o.logger,
	}
}

// ID returns the machine identity.
func (m *Machine[C, S]) ID() string {
	if m == nil {
		return ""
	}
	return m.id
}

// CurrentStateID returns the id of the current state, or an empty string
// before a fresh machine has been started.
func (m *Machine[C, S]) CurrentStateID() string {
	if m == nil {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Context returns the current context value. Hooks write the context without
// locking, so call Context from hooks, listeners, or while no Start or Send is
// running. CreateSnapshot returns a consistent copy from any goroutine.
func (m *Machine[C, S]) Context() C {
	var zero C
	if m == nil {
		return zero
	}
	return m.data
}

// SharedData returns the shared data the machine was built with.
func (m *Machine[C, S]) SharedData() S {
	var zero S
	if m == nil {
		return zero
	}
	return m.shared
}

func (m *Machine[C, S]) IsStarted() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

func (m *Machine[C, S]) IsFinished() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finished
}

// Start enters the initial state and runs the cascade until the machine
// waits for an event or finishes. It may be called once.
func (m *Machine[C, S]) Start(ctx context.Context) error {
	if err := m.valid(); err != nil {
		return err
	}
	ctx, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer m.release()

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.log.DebugContext(ctx, "state machine started", logger.MachineID(m.id), logger.StateID(m.initial))
	return m.cascade(ctx, m.nodes[m.initial], nil, true)
}

// Send delivers an external event to the current state. A guard returning
// false drops the event and Send returns nil.
func (m *Machine[C, S]) Send(ctx context.Context, event any) error {
	if err := m.valid(); err != nil {
		return err
	}
	ctx, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer m.release()

	m.mu.RLock()
	started, finished, current := m.started, m.finished, m.current
	m.mu.RUnlock()

	if finished {
		return fmt.Errorf("%w: machine %s is finished", ErrInvalidTransition, m.id)
	}
	if !started {
		return ErrNotStarted
	}

	n := m.nodes[current]
	if n.guard != nil {
		ok, err := n.guard(ctx, &m.data, m.shared, event)
		if err != nil {
			return hookError(n.id, "guard", err)
		}
		if !ok {
			m.log.DebugContext(ctx, "event rejected by guard",
				logger.MachineID(m.id), logger.StateID(n.id), logger.Event(event))
			return nil
		}
	}

	return m.cascade(ctx, n, event, false)
}

// cascade alternates entering and executing states until a state waits for
// an external event, the machine finishes, or an error occurs.
func (m *Machine[C, S]) cascade(ctx context.Context, n node[C, S], event any, enter bool) error {
	for depth := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}

		if enter {
			if depth >= m.maxDepth {
				return fmt.Errorf("%w: %d states entered from %q", ErrCascadeLimit, depth, n.id)
			}
			depth++

			if err := m.enter(ctx, n, event); err != nil {
				return err
			}
			if !n.advancesOnEntry() {
				return nil
			}
			// Auto and final states execute without an event.
			event = nil
		}

		next, done, err := m.execute(ctx, n, event)
		if err != nil || done {
			return err
		}
		n, enter = next, true
	}
}

func (m *Machine[C, S]) enter(ctx context.Context, n node[C, S], event any) error {
	m.mu.Lock()
	m.current = n.id
	m.mu.Unlock()

	m.log.DebugContext(ctx, "entering state", logger.MachineID(m.id), logger.StateID(n.id), logger.Event(event))

	if n.onEntry != nil {
		if err := n.onEntry(ctx, &m.data, m.shared, event); err != nil {
			return hookError(n.id, "on entry", err)
		}
	}

	m.notify(ctx, n.id, event)
	return nil
}

// execute leaves n. For interior states the destination is resolved before
// OnExit runs, so an unknown destination leaves the machine untouched.
func (m *Machine[C, S]) execute(ctx context.Context, n node[C, S], event any) (node[C, S], bool, error) {
	if n.final {
		if n.onExit != nil {
			if err := n.onExit(ctx, &m.data, m.shared, event); err != nil {
				return node[C, S]{}, false, hookError(n.id, "on exit", err)
			}
		}
		if n.onFinal != nil {
			if err := n.onFinal(ctx, &m.data, m.shared, event); err != nil {
				return node[C, S]{}, false, hookError(n.id, "on final", err)
			}
		}

		m.mu.Lock()
		m.finished = true
		m.mu.Unlock()

		m.log.DebugContext(ctx, "state machine finished", logger.MachineID(m.id), logger.StateID(n.id))
		return node[C, S]{}, true, nil
	}

	if n.transitionTo == nil {
		return node[C, S]{}, false, fmt.Errorf("%w: state %q has no transition", ErrInvalidTransition, n.id)
	}
	destID, err := n.transitionTo(ctx, &m.data, m.shared, event)
	if err != nil {
		return node[C, S]{}, false, hookError(n.id, "transition", err)
	}
	dest, ok := m.nodes[destID]
	if !ok {
		return node[C, S]{}, false, fmt.Errorf("%w: state %q resolved unknown destination %q", ErrInvalidTransition, n.id, destID)
	}

	if n.onExit != nil {
		if err := n.onExit(ctx, &m.data, m.shared, event); err != nil {
			return node[C, S]{}, false, hookError(n.id, "on exit", err)
		}
	}

	m.log.DebugContext(ctx, "leaving state",
		logger.MachineID(m.id), logger.StateID(n.id), slog.String("destination", destID))
	return dest, false, nil
}

// Subscribe registers fn for state entry notifications and returns its id.
func (m *Machine[C, S]) Subscribe(fn Listener[C, S]) (string, error) {
	if err := m.valid(); err != nil {
		return "", err
	}
	if fn == nil {
		return "", ErrNilListener
	}

	id := m.newID()
	m.subMu.Lock()
	m.subs = append(m.subs, subscription[C, S]{id: id, fn: fn})
	m.subMu.Unlock()
	return id, nil
}

// Unsubscribe removes a listener. Unknown ids are ignored.
func (m *Machine[C, S]) Unsubscribe(id string) {
	if m == nil {
		return
	}
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subs = slices.DeleteFunc(m.subs, func(s subscription[C, S]) bool {
		return s.id == id
	})
}

// notify calls listeners in registration order. The list is copied first so
// listeners may unsubscribe while being notified.
func (m *Machine[C, S]) notify(ctx context.Context, stateID string, event any) {
	m.subMu.RLock()
	subs := slices.Clone(m.subs)
	m.subMu.RUnlock()

	if len(subs) == 0 {
		return
	}

	n := Notification[C, S]{
		MachineID:      m.id,
		CurrentStateID: stateID,
		Context:        m.data,
		SharedData:     m.shared,
		Event:          event,
	}
	for _, s := range subs {
		s.fn(ctx, n)
	}
}

func (m *Machine[C, S]) valid() error {
	if m == nil || m.nodes == nil {
		return ErrInvalidConstructor
	}
	return nil
}

// acquire takes the gate and returns ctx marked as running inside this
// machine's cascade.
func (m *Machine[C, S]) acquire(ctx context.Context) (context.Context, error) {
	if m.holds(ctx) {
		return ctx, ErrReentrantCall
	}
	select {
	case m.gate <- struct{}{}:
		return context.WithValue(ctx, cascadeKey{gate: m.gate}, struct{}{}), nil
	case <-ctx.Done():
		return ctx, ctx.Err()
	}
}

// holds reports whether ctx comes from a hook or listener of this machine,
// which means the gate is already taken on the caller's behalf.
func (m *Machine[C, S]) holds(ctx context.Context) bool {
	return ctx.Value(cascadeKey{gate: m.gate}) != nil
}

func (m *Machine[C, S]) release() {
	<-m.gate
}
