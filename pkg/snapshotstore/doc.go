// Package snapshotstore persists statemachine snapshots.
//
// The statemachine package never stores anything itself: callers take a
// snapshot with Machine.CreateSnapshot, save it here, and later load it to
// hydrate a new machine with statemachine.FromSnapshot.
//
// Four Store implementations are provided:
//
//   - MemoryStore: in-process maps, for tests and single-process use.
//   - RedisStore: one key per snapshot plus a sorted-set index per machine,
//     with optional TTL (github.com/redis/go-redis/v9).
//   - PostgresStore: the fsm_snapshots table with a JSONB context column
//     (github.com/jackc/pgx/v5). Create it with the embedded Migrations.
//   - MongoStore: one document per snapshot (go.mongodb.org/mongo-driver/v2).
//
// All backends store the context JSON-encoded, so a context type must round
// trip through encoding/json, which is also what the default
// statemachine.JSONCloner requires.
//
// # Usage
//
//	store := snapshotstore.NewRedisStore[Order](client, snapshotstore.WithTTL(24*time.Hour))
//
//	snap, err := m.CreateSnapshot(ctx)
//	if err != nil {
//	    return err
//	}
//	if err := store.Save(ctx, snap); err != nil {
//	    return err
//	}
//
//	// later, possibly in another process
//	snap, err = store.Latest(ctx, machineID)
//	if snapshotstore.IsNotFoundError(err) {
//	    // nothing to resume
//	}
//	restored, err := statemachine.FromSnapshot(snap, orderStates(), deps)
package snapshotstore
