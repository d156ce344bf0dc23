package snapshotstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

// RedisOption configures a RedisStore.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
	ttl    time.Duration
}

// WithKeyPrefix namespaces all keys. Defaults to "fsm".
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithTTL expires snapshots after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(o *redisOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// RedisStore keeps each snapshot under <prefix>:snapshot:<id> and indexes a
// machine's snapshots in the sorted set <prefix>:machine:<machine id>, scored
// by save time in microseconds.
type RedisStore[C any] struct {
	client redis.UniversalClient
	opts   redisOptions
	seq    *sequence
}

func NewRedisStore[C any](client redis.UniversalClient, opts ...RedisOption) *RedisStore[C] {
	o := redisOptions{prefix: "fsm"}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore[C]{
		client: client,
		opts:   o,
		seq:    &sequence{now: func() int64 { return time.Now().UnixMicro() }},
	}
}

func (s *RedisStore[C]) snapshotKey(id string) string {
	return s.opts.prefix + ":snapshot:" + id
}

func (s *RedisStore[C]) machineKey(id string) string {
	return s.opts.prefix + ":machine:" + id
}

func (s *RedisStore[C]) Save(ctx context.Context, snap statemachine.Snapshot[C]) error {
	if err := validate(snap); err != nil {
		return err
	}
	b, err := encode(snap)
	if err != nil {
		return err
	}

	// A re-saved snapshot may have moved to another machine.
	prev, err := s.Get(ctx, snap.SnapshotID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev.MachineID != "" && prev.MachineID != snap.MachineID {
			pipe.ZRem(ctx, s.machineKey(prev.MachineID), snap.SnapshotID)
		}
		pipe.Set(ctx, s.snapshotKey(snap.SnapshotID), b, s.opts.ttl)
		pipe.ZAdd(ctx, s.machineKey(snap.MachineID), redis.Z{
			Score:  float64(s.seq.next()),
			Member: snap.SnapshotID,
		})
		if s.opts.ttl > 0 {
			pipe.Expire(ctx, s.machineKey(snap.MachineID), s.opts.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisStore[C]) Get(ctx context.Context, snapshotID string) (statemachine.Snapshot[C], error) {
	b, err := s.client.Get(ctx, s.snapshotKey(snapshotID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return statemachine.Snapshot[C]{}, ErrNotFound
	}
	if err != nil {
		return statemachine.Snapshot[C]{}, errors.Join(ErrStorage, err)
	}
	return decode[C](b)
}

// Latest walks the machine index from newest to oldest and drops entries whose
// payload has expired.
func (s *RedisStore[C]) Latest(ctx context.Context, machineID string) (statemachine.Snapshot[C], error) {
	key := s.machineKey(machineID)
	for {
		ids, err := s.client.ZRevRange(ctx, key, 0, 0).Result()
		if err != nil {
			return statemachine.Snapshot[C]{}, errors.Join(ErrStorage, err)
		}
		if len(ids) == 0 {
			return statemachine.Snapshot[C]{}, ErrNotFound
		}

		snap, err := s.Get(ctx, ids[0])
		if !errors.Is(err, ErrNotFound) {
			return snap, err
		}
		if err := s.client.ZRem(ctx, key, ids[0]).Err(); err != nil {
			return statemachine.Snapshot[C]{}, errors.Join(ErrStorage, err)
		}
	}
}

func (s *RedisStore[C]) Delete(ctx context.Context, snapshotID string) error {
	snap, err := s.Get(ctx, snapshotID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.snapshotKey(snapshotID))
		pipe.ZRem(ctx, s.machineKey(snap.MachineID), snapshotID)
		return nil
	})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
