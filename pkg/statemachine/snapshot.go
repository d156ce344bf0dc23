package statemachine

import (
	"context"
	"fmt"
)

// Snapshot is a point-in-time copy of a machine: its identity, current state,
// and an independent deep copy of its context.
type Snapshot[C any] struct {
	SnapshotID string `json:"snapshot_id"`
	MachineID  string `json:"machine_id"`
	StateID    string `json:"state_id"`
	Context    C      `json:"context"`
}

// CreateSnapshot captures the machine. Later changes to the live context do
// not affect the returned snapshot.
//
// Called from another goroutine it waits for a running Start or Send to
// finish, or for ctx to be done. Hooks and listeners pass the ctx they were
// given and get a snapshot of the state being entered right away.
func (m *Machine[C, S]) CreateSnapshot(ctx context.Context) (Snapshot[C], error) {
	if err := m.valid(); err != nil {
		return Snapshot[C]{}, err
	}
	if !m.holds(ctx) {
		if _, err := m.acquire(ctx); err != nil {
			return Snapshot[C]{}, err
		}
		defer m.release()
	}

	m.mu.RLock()
	current, data := m.current, m.data
	m.mu.RUnlock()

	if current == "" {
		return Snapshot[C]{}, ErrNotStarted
	}

	var cp C
	if err := m.clone(data, &cp); err != nil {
		return Snapshot[C]{}, fmt.Errorf("%w: %w", ErrCloneFailed, err)
	}

	return Snapshot[C]{
		SnapshotID: m.newID(),
		MachineID:  m.id,
		StateID:    current,
		Context:    cp,
	}, nil
}
