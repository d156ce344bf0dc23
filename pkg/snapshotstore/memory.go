package snapshotstore

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

// MemoryStore keeps snapshots in process memory. Suitable for tests and
// single-process deployments.
type MemoryStore[C any] struct {
	mu       sync.RWMutex
	payloads map[string][]byte   // snapshot id -> encoded snapshot
	owners   map[string]string   // snapshot id -> machine id
	history  map[string][]string // machine id -> snapshot ids, oldest first
}

func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{
		payloads: make(map[string][]byte),
		owners:   make(map[string]string),
		history:  make(map[string][]string),
	}
}

func (s *MemoryStore[C]) Save(_ context.Context, snap statemachine.Snapshot[C]) error {
	if err := validate(snap); err != nil {
		return err
	}
	b, err := encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.owners[snap.SnapshotID]; ok {
		s.forget(prev, snap.SnapshotID)
	}
	s.payloads[snap.SnapshotID] = b
	s.owners[snap.SnapshotID] = snap.MachineID
	s.history[snap.MachineID] = append(s.history[snap.MachineID], snap.SnapshotID)
	return nil
}

func (s *MemoryStore[C]) Get(_ context.Context, snapshotID string) (statemachine.Snapshot[C], error) {
	s.mu.RLock()
	b, ok := s.payloads[snapshotID]
	s.mu.RUnlock()

	if !ok {
		return statemachine.Snapshot[C]{}, ErrNotFound
	}
	return decode[C](b)
}

func (s *MemoryStore[C]) Latest(ctx context.Context, machineID string) (statemachine.Snapshot[C], error) {
	s.mu.RLock()
	ids := s.history[machineID]
	var latest string
	if len(ids) > 0 {
		latest = ids[len(ids)-1]
	}
	s.mu.RUnlock()

	if latest == "" {
		return statemachine.Snapshot[C]{}, ErrNotFound
	}
	return s.Get(ctx, latest)
}

func (s *MemoryStore[C]) Delete(_ context.Context, snapshotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	machineID, ok := s.owners[snapshotID]
	if !ok {
		return ErrNotFound
	}
	s.forget(machineID, snapshotID)
	delete(s.payloads, snapshotID)
	delete(s.owners, snapshotID)
	return nil
}

// forget removes snapshotID from the machine history. Callers hold s.mu.
func (s *MemoryStore[C]) forget(machineID, snapshotID string) {
	ids := slices.DeleteFunc(s.history[machineID], func(id string) bool { return id == snapshotID })
	if len(ids) == 0 {
		delete(s.history, machineID)
		return
	}
	s.history[machineID] = ids
}
