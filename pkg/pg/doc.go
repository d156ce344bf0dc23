// Package pg connects to PostgreSQL through a pgx pool and applies goose
// migrations from an fs.FS. It is the connection layer for
// snapshotstore.PostgresStore.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, snapshotstore.Migrations, snapshotstore.MigrationsDir, log); err != nil {
//	    return err
//	}
//
//	store := snapshotstore.NewPostgresStore[Order](pool)
//
// Migrate bridges the pool to database/sql with pgx's stdlib package because
// goose only speaks database/sql, and routes goose output to the supplied
// logger. Goose keeps its settings in package globals, so Migrate must not
// run concurrently with other goose users.
package pg
