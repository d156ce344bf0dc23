package snapshotstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

// Store persists machine snapshots. Every implementation stores an encoded
// copy, so mutating a snapshot after Save or after Get never affects the
// stored value.
type Store[C any] interface {
	// Save stores snap, replacing any snapshot with the same SnapshotID, and
	// makes it the latest snapshot of its machine.
	Save(ctx context.Context, snap statemachine.Snapshot[C]) error
	// Get returns the snapshot with the given id or ErrNotFound.
	Get(ctx context.Context, snapshotID string) (statemachine.Snapshot[C], error)
	// Latest returns the most recently saved snapshot of a machine or ErrNotFound.
	Latest(ctx context.Context, machineID string) (statemachine.Snapshot[C], error)
	// Delete removes a snapshot or returns ErrNotFound.
	Delete(ctx context.Context, snapshotID string) error
}

func validate[C any](snap statemachine.Snapshot[C]) error {
	switch {
	case snap.SnapshotID == "":
		return errors.Join(ErrInvalidSnapshot, errors.New("empty snapshot id"))
	case snap.MachineID == "":
		return errors.Join(ErrInvalidSnapshot, errors.New("empty machine id"))
	case snap.StateID == "":
		return errors.Join(ErrInvalidSnapshot, errors.New("empty state id"))
	}
	return nil
}

func encode[C any](snap statemachine.Snapshot[C]) ([]byte, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return b, nil
}

func decode[C any](b []byte) (statemachine.Snapshot[C], error) {
	var snap statemachine.Snapshot[C]
	if err := json.Unmarshal(b, &snap); err != nil {
		return statemachine.Snapshot[C]{}, errors.Join(ErrDecode, err)
	}
	return snap, nil
}

func encodeContext[C any](c C) ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return b, nil
}

func decodeContext[C any](b []byte) (C, error) {
	var c C
	if err := json.Unmarshal(b, &c); err != nil {
		return c, errors.Join(ErrDecode, err)
	}
	return c, nil
}

// sequence hands out strictly increasing values derived from a clock, so
// snapshots saved within the same clock tick still order correctly.
type sequence struct {
	last atomic.Int64
	now  func() int64
}

func (s *sequence) next() int64 {
	for {
		last := s.last.Load()
		n := max(s.now(), last+1)
		if s.last.CompareAndSwap(last, n) {
			return n
		}
	}
}
