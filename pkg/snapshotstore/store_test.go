package snapshotstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fsmkit/pkg/snapshotstore"
	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

type ticket struct {
	Title  string            `json:"title"`
	Tags   []string          `json:"tags"`
	Fields map[string]string `json:"fields"`
}

type snapshot = statemachine.Snapshot[ticket]

func newSnapshot(machineID, stateID string) snapshot {
	return snapshot{
		SnapshotID: uuid.NewString(),
		MachineID:  machineID,
		StateID:    stateID,
		Context: ticket{
			Title:  "broken login",
			Tags:   []string{"auth"},
			Fields: map[string]string{"priority": "high"},
		},
	}
}

// testStore runs the behavior every Store implementation must share.
// Ids are random so backends can share a database between runs.
func testStore(t *testing.T, store snapshotstore.Store[ticket]) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		snap := newSnapshot(uuid.NewString(), "open")
		require.NoError(t, store.Save(ctx, snap))

		got, err := store.Get(ctx, snap.SnapshotID)
		require.NoError(t, err)
		assert.Equal(t, snap, got)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.NewString())
		require.ErrorIs(t, err, snapshotstore.ErrNotFound)
		assert.True(t, snapshotstore.IsNotFoundError(err))
	})

	t.Run("invalid snapshot", func(t *testing.T) {
		for name, snap := range map[string]snapshot{
			"no snapshot id": {MachineID: "m", StateID: "open"},
			"no machine id":  {SnapshotID: "s", StateID: "open"},
			"no state id":    {SnapshotID: "s", MachineID: "m"},
		} {
			err := store.Save(ctx, snap)
			assert.ErrorIs(t, err, snapshotstore.ErrInvalidSnapshot, name)
		}
	})

	t.Run("stored copy is isolated", func(t *testing.T) {
		snap := newSnapshot(uuid.NewString(), "open")
		require.NoError(t, store.Save(ctx, snap))

		snap.Context.Tags[0] = "mutated"
		snap.Context.Fields["priority"] = "low"

		got, err := store.Get(ctx, snap.SnapshotID)
		require.NoError(t, err)
		assert.Equal(t, []string{"auth"}, got.Context.Tags)
		assert.Equal(t, "high", got.Context.Fields["priority"])

		got.Context.Tags[0] = "mutated again"
		again, err := store.Get(ctx, snap.SnapshotID)
		require.NoError(t, err)
		assert.Equal(t, []string{"auth"}, again.Context.Tags)
	})

	t.Run("latest", func(t *testing.T) {
		machineID := uuid.NewString()
		_, err := store.Latest(ctx, machineID)
		require.ErrorIs(t, err, snapshotstore.ErrNotFound)

		first := newSnapshot(machineID, "open")
		second := newSnapshot(machineID, "triage")
		third := newSnapshot(machineID, "closed")
		for _, s := range []snapshot{first, second, third} {
			require.NoError(t, store.Save(ctx, s))
		}

		// Another machine does not interfere.
		require.NoError(t, store.Save(ctx, newSnapshot(uuid.NewString(), "open")))

		got, err := store.Latest(ctx, machineID)
		require.NoError(t, err)
		assert.Equal(t, third.SnapshotID, got.SnapshotID)

		// Re-saving an older snapshot makes it the latest again.
		second.StateID = "reopened"
		require.NoError(t, store.Save(ctx, second))
		got, err = store.Latest(ctx, machineID)
		require.NoError(t, err)
		assert.Equal(t, second.SnapshotID, got.SnapshotID)
		assert.Equal(t, "reopened", got.StateID)

		require.NoError(t, store.Delete(ctx, second.SnapshotID))
		got, err = store.Latest(ctx, machineID)
		require.NoError(t, err)
		assert.Equal(t, third.SnapshotID, got.SnapshotID)
	})

	t.Run("delete", func(t *testing.T) {
		snap := newSnapshot(uuid.NewString(), "open")
		require.NoError(t, store.Save(ctx, snap))
		require.NoError(t, store.Delete(ctx, snap.SnapshotID))

		_, err := store.Get(ctx, snap.SnapshotID)
		require.ErrorIs(t, err, snapshotstore.ErrNotFound)
		_, err = store.Latest(ctx, snap.MachineID)
		require.ErrorIs(t, err, snapshotstore.ErrNotFound)

		err = store.Delete(ctx, snap.SnapshotID)
		require.ErrorIs(t, err, snapshotstore.ErrNotFound)
	})

	t.Run("snapshot moves to another machine", func(t *testing.T) {
		from, to := uuid.NewString(), uuid.NewString()
		snap := newSnapshot(from, "open")
		require.NoError(t, store.Save(ctx, snap))

		snap.MachineID = to
		require.NoError(t, store.Save(ctx, snap))

		_, err := store.Latest(ctx, from)
		require.ErrorIs(t, err, snapshotstore.ErrNotFound)
		got, err := store.Latest(ctx, to)
		require.NoError(t, err)
		assert.Equal(t, snap.SnapshotID, got.SnapshotID)
	})
}
