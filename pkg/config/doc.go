// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv, which reads .env files into the
// process environment, with github.com/caarlos0/env/v11, which parses the
// environment into structs annotated with `env` and `envDefault` tags.
// Every struct type is parsed once and cached; ResetCache clears the cache
// in tests.
//
// Connection packages (redis, pg, mongo) define their Config structs with
// env tags so they can be loaded the same way:
//
//	var redisCfg redis.Config
//	config.MustLoad(&redisCfg)
package config
