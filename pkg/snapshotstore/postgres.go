package snapshotstore

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

// Migrations holds the goose migrations creating the fsm_snapshots table.
// Apply them with pg.Migrate(ctx, pool, cfg, Migrations, MigrationsDir, log).
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// DB is the subset of *pgxpool.Pool used by PostgresStore; pgx.Tx satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps snapshots in the fsm_snapshots table, the context as JSONB.
// A re-saved snapshot gets a new sequence number and becomes its machine's latest.
type PostgresStore[C any] struct {
	db DB
}

func NewPostgresStore[C any](db DB) *PostgresStore[C] {
	return &PostgresStore[C]{db: db}
}

const (
	upsertSnapshotQuery = `
INSERT INTO fsm_snapshots (snapshot_id, machine_id, state_id, context)
VALUES ($1, $2, $3, $4)
ON CONFLICT (snapshot_id) DO UPDATE SET
    machine_id = EXCLUDED.machine_id,
    state_id   = EXCLUDED.state_id,
    context    = EXCLUDED.context,
    seq        = nextval(pg_get_serial_sequence('fsm_snapshots', 'seq')),
    created_at = now()`

	getSnapshotQuery = `
SELECT snapshot_id, machine_id, state_id, context
FROM fsm_snapshots
WHERE snapshot_id = $1`

	latestSnapshotQuery = `
SELECT snapshot_id, machine_id, state_id, context
FROM fsm_snapshots
WHERE machine_id = $1
ORDER BY seq DESC
LIMIT 1`

	deleteSnapshotQuery = `DELETE FROM fsm_snapshots WHERE snapshot_id = $1`
)

func (s *PostgresStore[C]) Save(ctx context.Context, snap statemachine.Snapshot[C]) error {
	if err := validate(snap); err != nil {
		return err
	}
	data, err := encodeContext(snap.Context)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, upsertSnapshotQuery, snap.SnapshotID, snap.MachineID, snap.StateID, data); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore[C]) Get(ctx context.Context, snapshotID string) (statemachine.Snapshot[C], error) {
	return s.scan(s.db.QueryRow(ctx, getSnapshotQuery, snapshotID))
}

func (s *PostgresStore[C]) Latest(ctx context.Context, machineID string) (statemachine.Snapshot[C], error) {
	return s.scan(s.db.QueryRow(ctx, latestSnapshotQuery, machineID))
}

func (s *PostgresStore[C]) Delete(ctx context.Context, snapshotID string) error {
	tag, err := s.db.Exec(ctx, deleteSnapshotQuery, snapshotID)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore[C]) scan(row pgx.Row) (statemachine.Snapshot[C], error) {
	var (
		snap statemachine.Snapshot[C]
		data []byte
	)
	if err := row.Scan(&snap.SnapshotID, &snap.MachineID, &snap.StateID, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statemachine.Snapshot[C]{}, ErrNotFound
		}
		return statemachine.Snapshot[C]{}, errors.Join(ErrStorage, err)
	}

	c, err := decodeContext[C](data)
	if err != nil {
		return statemachine.Snapshot[C]{}, err
	}
	snap.Context = c
	return snap, nil
}
