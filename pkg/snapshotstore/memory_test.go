package snapshotstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fsmkit/pkg/snapshotstore"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStore(t, snapshotstore.NewMemoryStore[ticket]())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := snapshotstore.NewMemoryStore[ticket]()
	ctx := context.Background()
	machineID := uuid.NewString()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := newSnapshot(machineID, "open")
			assert.NoError(t, store.Save(ctx, snap))
			_, err := store.Get(ctx, snap.SnapshotID)
			assert.NoError(t, err)
			_, err = store.Latest(ctx, machineID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	latest, err := store.Latest(ctx, machineID)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, latest.SnapshotID))
	_, err = store.Latest(ctx, machineID)
	require.NoError(t, err)
}
