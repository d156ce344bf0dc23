package statemachine_test

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

type order struct {
	Items []string `json:"items"`
	Paid  bool     `json:"paid"`
	Count int      `json:"count"`
}

// recorder is the shared data of test machines; hooks append to it.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

type (
	state    = statemachine.State[order, *recorder]
	interior = statemachine.Interior[order, *recorder]
	final    = statemachine.Final[order, *recorder]
	machine  = statemachine.Machine[order, *recorder]
)

func record(call string) statemachine.HookFunc[order, *recorder] {
	return func(_ context.Context, _ *order, r *recorder, _ any) error {
		r.add(call)
		return nil
	}
}

func goTo(id string) statemachine.TransitionFunc[order, *recorder] {
	return func(context.Context, *order, *recorder, any) (string, error) {
		return id, nil
	}
}

// orderStates models cart -> checkout (guarded on "pay") -> paid (auto) -> shipped (final).
func orderStates() []state {
	return []state{
		interior{
			ID:      "cart",
			Initial: true,
			OnEntry: record("cart:entry"),
			OnExit:  record("cart:exit"),
			TransitionTo: func(_ context.Context, o *order, _ *recorder, event any) (string, error) {
				if item, ok := event.(string); ok {
					o.Items = append(o.Items, item)
				}
				return "checkout", nil
			},
		},
		interior{
			ID:      "checkout",
			OnEntry: record("checkout:entry"),
			OnExit:  record("checkout:exit"),
			Guard: func(_ context.Context, _ *order, _ *recorder, event any) (bool, error) {
				return event == "pay", nil
			},
			TransitionTo: func(_ context.Context, o *order, _ *recorder, _ any) (string, error) {
				o.Paid = true
				o.Items = append(o.Items, "receipt")
				return "paid", nil
			},
		},
		interior{
			ID:           "paid",
			Auto:         true,
			OnEntry:      record("paid:entry"),
			OnExit:       record("paid:exit"),
			TransitionTo: goTo("shipped"),
		},
		final{
			ID:      "shipped",
			OnEntry: record("shipped:entry"),
			OnExit:  record("shipped:exit"),
			OnFinal: record("shipped:final"),
		},
	}
}

func newOrderMachine(opts ...statemachine.Option) (*machine, *recorder, error) {
	rec := &recorder{}
	m, err := statemachine.From(orderStates(), order{}, rec, opts...)
	return m, rec, err
}

// sequence returns an IDGenerator yielding prefix-1, prefix-2, ...
func sequence(prefix string) statemachine.IDGenerator {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
