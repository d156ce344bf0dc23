// Package logger builds *slog.Logger instances with functional options and
// provides attribute helpers with consistent keys for state machine logs.
//
// New selects a text or JSON handler, applies static attributes, and wraps
// the handler with LogHandlerDecorator, which runs registered ContextExtractor
// callbacks on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "order-workflow"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
//	m, _ := statemachine.From(states, Order{}, deps, statemachine.WithLogger(log))
//
//	log.InfoContext(ctx, "snapshot saved",
//	    logger.MachineID(m.ID()),
//	    logger.SnapshotID(snap.SnapshotID),
//	    logger.Store("redis"),
//	)
//
// # Presets
//
// WithDevelopment logs text at debug level, which includes the transition
// records emitted by the statemachine package. WithStaging and WithProduction
// log JSON at info level. WithEnvironment picks one from an APP_ENV value.
//
// # Attributes
//
// MachineID, StateID, SnapshotID and Event return an empty slog.Attr for
// empty input, and Error and Errors skip nil errors, so they can be passed
// unconditionally:
//
//	log.Info("send finished", logger.StateID(m.CurrentStateID()), logger.Error(err))
package logger
