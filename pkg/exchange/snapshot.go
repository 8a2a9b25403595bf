package exchange

import "github.com/aretw0/sluice/pkg/domain"

type memento struct {
	orders map[string]Order
	events []domain.FulfillmentEvent
}

// Snapshot captures the order book and event log for rollback. Item slices
// are never mutated after submission, so copying order values is enough.
func (e *Exchange) Snapshot() any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m := &memento{
		orders: make(map[string]Order, len(e.orders)),
		events: make([]domain.FulfillmentEvent, len(e.events)),
	}
	for hash, order := range e.orders {
		m.orders[hash] = *order
	}
	copy(m.events, e.events)
	return m
}

// Restore rewinds orders and events to a snapshot taken on this instance.
func (e *Exchange) Restore(snap any) {
	m, ok := snap.(*memento)
	if !ok {
		panic("exchange: Restore called with foreign snapshot")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orders = make(map[string]*Order, len(m.orders))
	for hash, order := range m.orders {
		stored := order
		e.orders[hash] = &stored
	}
	e.events = make([]domain.FulfillmentEvent, len(m.events))
	copy(e.events, m.events)
}
