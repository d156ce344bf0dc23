package logger

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// MachineID records the state machine identifier under the key "machine_id".
// If id is empty, it returns an empty Attr.
func MachineID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("machine_id", id)
}

// StateID records a state identifier under the key "state_id".
// If id is empty, it returns an empty Attr.
func StateID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("state_id", id)
}

// SnapshotID records a snapshot identifier under the key "snapshot_id".
// If id is empty, it returns an empty Attr.
func SnapshotID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("snapshot_id", id)
}

// Event records the triggering event under the key "event".
// Events implementing fmt.Stringer or Name() string are logged by name,
// other values as-is. A nil event returns an empty Attr.
func Event(event any) slog.Attr {
	switch e := event.(type) {
	case nil:
		return slog.Attr{}
	case string:
		return slog.String("event", e)
	case interface{ Name() string }:
		return slog.String("event", e.Name())
	case fmt.Stringer:
		return slog.String("event", e.String())
	}
	return slog.Any("event", event)
}

// Store records the snapshot store backend under the key "store".
func Store(name string) slog.Attr {
	return slog.String("store", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
