package statemachine

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// DefaultMaxCascadeDepth bounds the number of state entries a single Start or
// Send may perform before the machine gives up on an auto-transition cycle.
const DefaultMaxCascadeDepth = 1000

// IDGenerator produces collision-free identifiers for machines, snapshots and
// subscriptions.
type IDGenerator func() string

// Cloner deep-copies src into dst, where dst is a pointer to a value of the
// same type as src.
type Cloner func(src, dst any) error

// JSONCloner clones through a JSON round trip. Only exported, JSON-encodable
// fields survive the copy.
func JSONCloner(src, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// Option configures a state machine during construction.
type Option func(*options)

type options struct {
	id       string
	newID    IDGenerator
	clone    Cloner
	maxDepth int
	logger   *slog.Logger
}

func newOptions(opts ...Option) options {
	o := options{
		newID:    uuid.NewString,
		clone:    JSONCloner,
		maxDepth: DefaultMaxCascadeDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithID sets the machine id. Ignored by FromSnapshot, which always keeps the
// snapshot's machine id.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithCloner replaces the JSON cloner used for snapshots.
func WithCloner(c Cloner) Option {
	return func(o *options) {
		if c != nil {
			o.clone = c
		}
	}
}

// WithMaxCascadeDepth limits how many states one Start or Send may enter.
// Non-positive values are ignored.
func WithMaxCascadeDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogger enables debug logging of the transition protocol.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
