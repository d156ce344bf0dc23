package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/fsmkit/pkg/config"
	"github.com/dmitrymomot/fsmkit/pkg/environment"
	"github.com/dmitrymomot/fsmkit/pkg/logger"
	"github.com/dmitrymomot/fsmkit/pkg/mongo"
	"github.com/dmitrymomot/fsmkit/pkg/pg"
	"github.com/dmitrymomot/fsmkit/pkg/redis"
	"github.com/dmitrymomot/fsmkit/pkg/snapshotstore"
)

var errUnknownStore = errors.New("unknown snapshot store")

// openStore connects the backend named by s.Store. The returned close func is
// never nil.
func openStore(ctx context.Context, s settings, log *slog.Logger) (snapshotstore.Store[Order], func(), error) {
	noop := func() {}

	switch s.Store {
	case storeMemory:
		if environment.IsProduction(ctx) {
			log.WarnContext(ctx, "memory snapshot store loses snapshots on exit", logger.Store(s.Store))
		}
		return snapshotstore.NewMemoryStore[Order](), noop, nil

	case storeRedis:
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, noop, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", logger.Error(err))
			}
		}
		if err := redis.Healthcheck(client)(ctx); err != nil {
			closeFn()
			return nil, noop, err
		}
		return snapshotstore.NewRedisStore[Order](client,
			snapshotstore.WithKeyPrefix(cfg.KeyPrefix),
			snapshotstore.WithTTL(s.SnapshotTTL),
		), closeFn, nil

	case storePostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, noop, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		if err := pg.Healthcheck(pool)(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		if err := pg.Migrate(ctx, pool, cfg, snapshotstore.Migrations, snapshotstore.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return snapshotstore.NewPostgresStore[Order](pool), pool.Close, nil

	case storeMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, noop, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.Error("failed to disconnect mongo client", logger.Error(err))
			}
		}
		if err := mongo.Healthcheck(db.Client())(ctx); err != nil {
			closeFn()
			return nil, noop, err
		}
		store := snapshotstore.NewMongoStore[Order](db.Collection("fsm_snapshots"))
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, noop, err
		}
		return store, closeFn, nil
	}

	return nil, noop, fmt.Errorf("%w: %q", errUnknownStore, s.Store)
}
