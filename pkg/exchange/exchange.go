// Package exchange is the order-fulfillment protocol the market adapter
// settles against: signed-intent orders offering assets in exchange for a
// consideration, filled atomically item by item.
//
// It exposes the boundary the router needs and nothing more: fulfillment
// with an explicit conduit key, batch fulfillment with a continue-or-revert
// flag, and structured events for every filled order.
package exchange

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/sluice/pkg/conduit"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
)

// ItemClass discriminates the asset class of an order item.
type ItemClass uint8

const (
	ClassNative ItemClass = iota
	ClassFungible
	ClassNonFungible
	ClassSemiFungible
)

// Item is one leg of an order. Offer items flow offerer → fulfiller side;
// consideration items flow fulfiller → Recipient.
type Item struct {
	Class  ItemClass    `json:"class"`
	Token  domain.Token `json:"token,omitempty"`
	ID     uint64       `json:"id,omitempty"`
	Amount uint64       `json:"amount,omitempty"`

	// Recipient is only meaningful on consideration items. It routes fees
	// to third parties; the zero address means "the offerer".
	Recipient domain.Address `json:"recipient,omitempty"`
}

// Status tracks an order's lifecycle.
type Status uint8

const (
	StatusOpen Status = iota
	StatusFilled
	StatusCancelled
)

// Order is a fulfillable intent.
type Order struct {
	Hash    string         `json:"hash"`
	Offerer domain.Address `json:"offerer"`

	// ConduitKey names the conduit the offerer's assets are sourced through.
	// The zero key sources from the offerer's wallet allowance to the
	// exchange.
	ConduitKey domain.ConduitKey `json:"conduit_key,omitempty"`

	Offer         []Item `json:"offer"`
	Consideration []Item `json:"consideration"`
	Status        Status `json:"status"`
}

// Exchange holds submitted orders and settles fulfillments on the ledger.
type Exchange struct {
	mu       sync.RWMutex
	ledger   *ledger.Ledger
	conduits *conduit.Controller
	addr     domain.Address
	orders   map[string]*Order
	events   []domain.FulfillmentEvent
}

// New creates an exchange settling on the given ledger under its own
// address. Wallet-sourced order legs spend allowances granted to this
// address.
func New(l *ledger.Ledger, c *conduit.Controller, addr domain.Address) *Exchange {
	return &Exchange{
		ledger:   l,
		conduits: c,
		addr:     addr,
		orders:   make(map[string]*Order),
	}
}

// Address returns the exchange's ledger identity.
func (e *Exchange) Address() domain.Address { return e.addr }

// Submit records a new open order and returns its hash.
func (e *Exchange) Submit(order Order) (string, error) {
	if order.Offerer == domain.Zero {
		return "", fmt.Errorf("order without offerer")
	}
	if len(order.Offer) == 0 {
		return "", fmt.Errorf("order without offer items")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	order.Hash = uuid.NewString()
	order.Status = StatusOpen
	e.orders[order.Hash] = &order
	return order.Hash, nil
}

// Cancel withdraws an open order. Only the offerer may cancel.
func (e *Exchange) Cancel(caller domain.Address, hash string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	order, ok := e.orders[hash]
	if !ok {
		return fmt.Errorf("cancel %s: %w", hash, domain.ErrUnknownOrder)
	}
	if order.Offerer != caller {
		return fmt.Errorf("cancel %s by %s: %w", hash, caller, domain.ErrUnauthorized)
	}
	if order.Status != StatusOpen {
		return fmt.Errorf("cancel %s: %w", hash, domain.ErrOrderUnavailable)
	}
	order.Status = StatusCancelled
	return nil
}

// Order returns a copy of the stored order.
func (e *Exchange) Order(hash string) (Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	order, ok := e.orders[hash]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", hash, domain.ErrUnknownOrder)
	}
	return *order, nil
}

// Events returns all fulfillment events emitted so far, oldest first.
func (e *Exchange) Events() []domain.FulfillmentEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.FulfillmentEvent, len(e.events))
	copy(out, e.events)
	return out
}

// Fulfill fills one order. Offer items move from the offerer to recipient;
// consideration items move from the fulfiller to each item's recipient.
// conduitKey sources the fulfiller's consideration legs; the offerer's side
// uses the key fixed at submission. Settlement is atomic per order: a
// failing leg leaves no effect behind.
func (e *Exchange) Fulfill(fulfiller, recipient domain.Address, hash string, conduitKey domain.ConduitKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fulfillLocked(fulfiller, recipient, hash, conduitKey)
}

// FulfillAvailable fills a batch of orders. With revertIfIncomplete set,
// the first unfillable order fails the whole call; otherwise unfillable
// orders are skipped and the hashes actually filled are returned.
func (e *Exchange) FulfillAvailable(fulfiller, recipient domain.Address, hashes []string, conduitKey domain.ConduitKey, revertIfIncomplete bool) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	filled := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		if err := e.fulfillLocked(fulfiller, recipient, hash, conduitKey); err != nil {
			if revertIfIncomplete {
				return nil, fmt.Errorf("order %s: %w: %w", hash, domain.ErrIncompleteFulfillment, err)
			}
			continue
		}
		filled = append(filled, hash)
	}
	return filled, nil
}

// fulfillLocked settles one order under e.mu. Ledger state is snapshotted
// so a failing leg rolls the order's partial moves back locally, keeping
// skip-on-failure batches consistent.
func (e *Exchange) fulfillLocked(fulfiller, recipient domain.Address, hash string, conduitKey domain.ConduitKey) error {
	order, ok := e.orders[hash]
	if !ok {
		return fmt.Errorf("fulfill %s: %w", hash, domain.ErrUnknownOrder)
	}
	if order.Status != StatusOpen {
		return fmt.Errorf("fulfill %s: %w", hash, domain.ErrOrderUnavailable)
	}
	if recipient == domain.Zero {
		recipient = fulfiller
	}

	undo := e.ledger.Snapshot()
	for _, item := range order.Offer {
		if err := e.moveItem(item, order.Offerer, recipient, order.ConduitKey); err != nil {
			e.ledger.Restore(undo)
			return fmt.Errorf("offer leg: %w", err)
		}
	}
	for _, item := range order.Consideration {
		to := item.Recipient
		if to == domain.Zero {
			to = order.Offerer
		}
		if err := e.moveItem(item, fulfiller, to, conduitKey); err != nil {
			e.ledger.Restore(undo)
			return fmt.Errorf("consideration leg: %w", err)
		}
	}

	order.Status = StatusFilled
	e.events = append(e.events, domain.FulfillmentEvent{
		OrderHash: hash,
		Offerer:   order.Offerer,
		Fulfiller: fulfiller,
		Recipient: recipient,
	})
	return nil
}

// moveItem settles one item leg from one party to another, honoring the
// party's sourcing conduit when given.
func (e *Exchange) moveItem(item Item, from, to domain.Address, key domain.ConduitKey) error {
	switch item.Class {
	case ClassNative:
		// Native value is committed by the act of calling fulfill; there is
		// no allowance mechanism for it.
		return e.ledger.TransferNative(from, to, item.Amount)

	case ClassFungible:
		if key != "" {
			return e.conduits.TransferFungible(e.addr, key, item.Token, from, to, item.Amount)
		}
		return e.ledger.TransferFrom(item.Token, e.addr, from, to, item.Amount)

	case ClassNonFungible:
		if key != "" {
			return e.conduits.TransferNonFungible(e.addr, key, item.Token, from, to, item.ID)
		}
		return e.ledger.TransferNFT(item.Token, e.addr, from, to, item.ID)

	case ClassSemiFungible:
		if key != "" {
			return e.conduits.TransferSemiFungible(e.addr, key, item.Token, from, to, item.ID, item.Amount)
		}
		return e.ledger.TransferSemi(item.Token, e.addr, from, to, item.ID, item.Amount)

	default:
		return fmt.Errorf("unknown item class %d", item.Class)
	}
}
