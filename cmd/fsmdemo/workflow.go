package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fsmkit/pkg/statemachine"
)

const (
	stateCart     = "cart"
	stateCheckout = "checkout"
	statePaid     = "paid"
	stateShipped  = "shipped"
)

// Order is the machine context. It is what gets snapshotted.
type Order struct {
	ID        string `json:"id"`
	Items     []Item `json:"items"`
	Total     int    `json:"total"`
	PaymentID string `json:"payment_id,omitempty"`
	Shipped   bool   `json:"shipped"`
}

type Item struct {
	SKU   string `json:"sku"`
	Price int    `json:"price"`
}

// Events.
type (
	AddItem  struct{ Item Item }
	Checkout struct{}
	Pay      struct{}
)

func (AddItem) Name() string  { return "add_item" }
func (Checkout) Name() string { return "checkout" }
func (Pay) Name() string      { return "pay" }

// Payments is shared by every order machine and never snapshotted.
type Payments interface {
	Charge(ctx context.Context, orderID string, amount int) (string, error)
}

var errEmptyCharge = errors.New("nothing to charge")

// ledger is an in-memory Payments.
type ledger struct {
	mu      sync.Mutex
	charges map[string]int
}

func newLedger() *ledger {
	return &ledger{charges: make(map[string]int)}
}

func (l *ledger) Charge(_ context.Context, orderID string, amount int) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: order %s", errEmptyCharge, orderID)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.NewString()
	l.charges[id] = amount
	return id, nil
}

func (l *ledger) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum int
	for _, v := range l.charges {
		sum += v
	}
	return sum
}

type (
	orderState    = statemachine.State[Order, Payments]
	orderInterior = statemachine.Interior[Order, Payments]
	orderFinal    = statemachine.Final[Order, Payments]
)

// orderStates builds cart -> checkout -> paid -> shipped. Items are added in
// cart, checkout only accepts Pay, and paid ships on its own.
func orderStates() []orderState {
	return []orderState{
		orderInterior{
			ID:      stateCart,
			Initial: true,
			TransitionTo: func(_ context.Context, o *Order, _ Payments, event any) (string, error) {
				switch e := event.(type) {
				case AddItem:
					o.Items = append(o.Items, e.Item)
					o.Total += e.Item.Price
				case Checkout:
					if len(o.Items) > 0 {
						return stateCheckout, nil
					}
				}
				return stateCart, nil
			},
		},
		orderInterior{
			ID: stateCheckout,
			Guard: func(_ context.Context, _ *Order, _ Payments, event any) (bool, error) {
				_, ok := event.(Pay)
				return ok, nil
			},
			TransitionTo: func(ctx context.Context, o *Order, p Payments, _ any) (string, error) {
				id, err := p.Charge(ctx, o.ID, o.Total)
				if err != nil {
					return "", err
				}
				o.PaymentID = id
				return statePaid, nil
			},
		},
		orderInterior{
			ID:   statePaid,
			Auto: true,
			TransitionTo: func(context.Context, *Order, Payments, any) (string, error) {
				return stateShipped, nil
			},
		},
		orderFinal{
			ID: stateShipped,
			OnFinal: func(_ context.Context, o *Order, _ Payments, _ any) error {
				o.Shipped = true
				return nil
			},
		},
	}
}
