// Package redis connects to Redis with retries and exposes a health check.
// It is the connection layer for snapshotstore.RedisStore.
//
// Configuration is read from REDIS_* environment variables through the
// config package:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := snapshotstore.NewRedisStore[Order](client, snapshotstore.WithKeyPrefix(cfg.KeyPrefix))
//
// Errors are sentinel values joined with the driver error, so errors.Is
// works on them.
package redis
