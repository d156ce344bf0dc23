package snapshotstore_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fsmkit/pkg/mongo"
	"github.com/dmitrymomot/fsmkit/pkg/pg"
	"github.com/dmitrymomot/fsmkit/pkg/redis"
	"github.com/dmitrymomot/fsmkit/pkg/snapshotstore"
)

// The backend tests need a live server and are skipped unless its
// connection url is set, e.g. REDIS_URL=redis://localhost:6379/0.

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  3,
		RetryInterval:  100 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "fsmtest-" + uuid.NewString()
	testStore(t, snapshotstore.NewRedisStore[ticket](client,
		snapshotstore.WithKeyPrefix(prefix),
		snapshotstore.WithTTL(time.Minute),
	))

	t.Run("expired payload is skipped", func(t *testing.T) {
		store := snapshotstore.NewRedisStore[ticket](client, snapshotstore.WithKeyPrefix(prefix))
		machineID := uuid.NewString()

		older := newSnapshot(machineID, "open")
		newer := newSnapshot(machineID, "closed")
		require.NoError(t, store.Save(ctx, older))
		require.NoError(t, store.Save(ctx, newer))

		// Simulate expiry of the newest payload only.
		require.NoError(t, client.Del(ctx, prefix+":snapshot:"+newer.SnapshotID).Err())

		got, err := store.Latest(ctx, machineID)
		require.NoError(t, err)
		require.Equal(t, older.SnapshotID, got.SnapshotID)
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("PG_CONN_URL")
	if url == "" {
		t.Skip("PG_CONN_URL not set")
	}
	ctx := context.Background()

	cfg := pg.Config{
		ConnectionString: url,
		RetryAttempts:    3,
		RetryInterval:    100 * time.Millisecond,
		MigrationsTable:  "fsm_schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := slog.New(slog.DiscardHandler)
	require.NoError(t, pg.Migrate(ctx, pool, cfg, snapshotstore.Migrations, snapshotstore.MigrationsDir, log))

	testStore(t, snapshotstore.NewPostgresStore[ticket](pool))
}

func TestMongoStore(t *testing.T) {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set")
	}
	ctx := context.Background()

	db, err := mongo.NewWithDatabase(ctx, mongo.Config{
		ConnectionURL:  url,
		Database:       "fsmtest",
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  3,
		RetryInterval:  100 * time.Millisecond,
	})
	require.NoError(t, err)

	coll := db.Collection("snapshots_" + uuid.NewString())
	t.Cleanup(func() {
		_ = coll.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	store := snapshotstore.NewMongoStore[ticket](coll)
	require.NoError(t, store.EnsureIndexes(ctx))
	testStore(t, store)
}
