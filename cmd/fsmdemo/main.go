// Command fsmdemo drives an order through a state machine, snapshots it
// halfway, and resumes it from the configured snapshot store.
//
// Configuration comes from the environment (or .env):
//
//	APP_ENV                development|staging|production
//	FSM_SNAPSHOT_STORE     memory|redis|postgres|mongo
//	FSM_MAX_CASCADE_DEPTH  auto-transition limit per event
//	FSM_SNAPSHOT_TTL       redis snapshot expiry
//
// plus REDIS_*, PG_* or MONGODB_* for the selected store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fsmkit/pkg/config"
	"github.com/dmitrymomot/fsmkit/pkg/environment"
	"github.com/dmitrymomot/fsmkit/pkg/logger"
	"github.com/dmitrymomot/fsmkit/pkg/snapshotstore"
	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s := defaultSettings()
	if err := config.Load(&s); err != nil {
		fmt.Fprintf(os.Stderr, "fsmdemo: %v\n", err)
		return 1
	}

	log := logger.New(logger.WithEnvironment(s.Env, "fsmdemo"))
	logger.SetAsDefault(log)
	ctx = environment.WithContext(ctx, environment.Parse(s.Env))

	store, closeStore, err := openStore(ctx, s, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to open snapshot store", logger.Store(s.Store), logger.Error(err))
		return 1
	}
	defer closeStore()

	order, err := runOrder(ctx, s, log, store, newLedger())
	if err != nil {
		log.ErrorContext(ctx, "order workflow failed", logger.Error(err))
		return 1
	}

	log.InfoContext(ctx, "order shipped",
		slog.String("order_id", order.ID),
		slog.String("payment_id", order.PaymentID),
		slog.Int("total", order.Total),
	)
	return 0
}

// runOrder fills a cart, saves a snapshot at checkout, then resumes a second
// machine from the stored snapshot and pays.
func runOrder(ctx context.Context, s settings, log *slog.Logger, store snapshotstore.Store[Order], pay Payments) (Order, error) {
	opts := []statemachine.Option{
		statemachine.WithLogger(log),
		statemachine.WithMaxCascadeDepth(s.MaxCascadeDepth),
	}

	order := Order{ID: uuid.NewString()}
	m, err := statemachine.From(orderStates(), order, pay,
		append(opts, statemachine.WithID(machineID(order.ID)))...)
	if err != nil {
		return Order{}, err
	}
	if _, err := m.Subscribe(logTransitions(log)); err != nil {
		return Order{}, err
	}

	if err := m.Start(ctx); err != nil {
		return Order{}, err
	}
	for _, event := range []any{
		AddItem{Item: Item{SKU: "book", Price: 1200}},
		AddItem{Item: Item{SKU: "pen", Price: 300}},
		Checkout{},
		// Ignored by the checkout guard.
		Checkout{},
	} {
		if err := m.Send(ctx, event); err != nil {
			return Order{}, err
		}
	}

	snap, err := m.CreateSnapshot(ctx)
	if err != nil {
		return Order{}, err
	}
	if err := store.Save(ctx, snap); err != nil {
		return Order{}, err
	}
	log.InfoContext(ctx, "snapshot saved",
		logger.SnapshotID(snap.SnapshotID),
		logger.MachineID(snap.MachineID),
		logger.StateID(snap.StateID),
		logger.Store(s.Store),
	)

	loaded, err := store.Latest(ctx, m.ID())
	if err != nil {
		return Order{}, err
	}
	resumed, err := statemachine.FromSnapshot(loaded, orderStates(), pay, opts...)
	if err != nil {
		return Order{}, err
	}
	if _, err := resumed.Subscribe(logTransitions(log)); err != nil {
		return Order{}, err
	}
	if err := resumed.Start(ctx); err != nil {
		return Order{}, err
	}
	if err := resumed.Send(ctx, Pay{}); err != nil {
		return Order{}, err
	}
	if !resumed.IsFinished() {
		return Order{}, fmt.Errorf("order %s stopped in %q", loaded.Context.ID, resumed.CurrentStateID())
	}
	return resumed.Context(), nil
}

// machineID names the machine driving an order, so its snapshots can be
// found from the order id alone.
func machineID(orderID string) string {
	return "order-" + orderID
}

func logTransitions(log *slog.Logger) statemachine.Listener[Order, Payments] {
	return func(ctx context.Context, n statemachine.Notification[Order, Payments]) {
		log.InfoContext(ctx, "state entered",
			logger.MachineID(n.MachineID),
			logger.StateID(n.CurrentStateID),
			logger.Event(n.Event),
			slog.Int("items", len(n.Context.Items)),
		)
	}
}
