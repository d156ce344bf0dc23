package main

import (
	"time"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
	storeMongo    = "mongo"
)

type settings struct {
	Env             string        `env:"APP_ENV" envDefault:"development"`
	Store           string        `env:"FSM_SNAPSHOT_STORE" envDefault:"memory"`
	MaxCascadeDepth int           `env:"FSM_MAX_CASCADE_DEPTH" envDefault:"1000"`
	SnapshotTTL     time.Duration `env:"FSM_SNAPSHOT_TTL" envDefault:"24h"`
}

func defaultSettings() settings {
	return settings{
		Env:             "development",
		Store:           storeMemory,
		MaxCascadeDepth: statemachine.DefaultMaxCascadeDepth,
		SnapshotTTL:     24 * time.Hour,
	}
}
