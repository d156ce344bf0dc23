package snapshotstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fsmkit/pkg/snapshotstore"
	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

type (
	ticketState    = statemachine.State[ticket, struct{}]
	ticketInterior = statemachine.Interior[ticket, struct{}]
	ticketFinal    = statemachine.Final[ticket, struct{}]
)

// ticketStates models open -> triage -> closed, where every event is a tag.
func ticketStates() []ticketState {
	tag := func(next string) statemachine.TransitionFunc[ticket, struct{}] {
		return func(_ context.Context, c *ticket, _ struct{}, event any) (string, error) {
			if s, ok := event.(string); ok {
				c.Tags = append(c.Tags, s)
			}
			return next, nil
		}
	}
	return []ticketState{
		ticketInterior{ID: "open", Initial: true, TransitionTo: tag("triage")},
		ticketInterior{ID: "triage", TransitionTo: tag("closed")},
		ticketFinal{ID: "closed"},
	}
}

func TestStore_ResumesMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := snapshotstore.NewMemoryStore[ticket]()

	m, err := statemachine.From(ticketStates(), ticket{Title: "broken login"}, struct{}{})
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Send(ctx, "auth"))
	require.Equal(t, "triage", m.CurrentStateID())

	snap, err := m.CreateSnapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, snap))

	// The live machine moves on; the stored snapshot does not.
	require.NoError(t, m.Send(ctx, "wontfix"))
	assert.True(t, m.IsFinished())

	loaded, err := store.Latest(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, "triage", loaded.StateID)
	assert.Equal(t, []string{"auth"}, loaded.Context.Tags)

	resumed, err := statemachine.FromSnapshot(loaded, ticketStates(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, m.ID(), resumed.ID())
	require.NoError(t, resumed.Start(ctx))
	require.NoError(t, resumed.Send(ctx, "fixed"))

	assert.True(t, resumed.IsFinished())
	assert.Equal(t, "closed", resumed.CurrentStateID())
	assert.Equal(t, []string{"auth", "fixed"}, resumed.Context().Tags)
}

func TestStore_UnknownStateRejectedOnHydration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := snapshotstore.NewMemoryStore[ticket]()

	snap := newSnapshot("machine-1", "archived")
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Get(ctx, snap.SnapshotID)
	require.NoError(t, err)

	_, err = statemachine.FromSnapshot(loaded, ticketStates(), struct{}{})
	require.ErrorIs(t, err, statemachine.ErrInvalidStateID)
}
