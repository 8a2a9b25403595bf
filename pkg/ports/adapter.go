package ports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
)

// Adapter is a pluggable unit of settlement logic. The router dispatches an
// opaque payload to it; the adapter decodes the payload in its own
// vocabulary and applies effects against the execution context.
//
// Adapters signal failure by returning an error; the engine translates any
// error into a step failure and rolls the whole call back.
type Adapter interface {
	// Name identifies the adapter implementation for persistence and logs.
	Name() string

	// Invoke executes one encoded call against the router's state.
	Invoke(ctx context.Context, exec *ExecContext, payload json.RawMessage) error
}

// ExecContext is the state one Execute call runs against. Every adapter in
// the sequence shares it: effects land on the router's own balances, so a
// swap's proceeds can pay for the next step's order without an intermediate
// transfer.
type ExecContext struct {
	// Caller submitted the request and receives refunds and returned assets
	// unless a step routes them elsewhere.
	Caller domain.Address

	// Router is the identity all step effects land on.
	Router domain.Address

	// Ledger is the asset state being mutated.
	Ledger *ledger.Ledger

	supplied uint64
	used     uint64
}

// NewExecContext builds the context for one execution. The supplied native
// value is expected to already sit on the router's balance.
func NewExecContext(caller, router domain.Address, l *ledger.Ledger, supplied uint64) *ExecContext {
	return &ExecContext{
		Caller:   caller,
		Router:   router,
		Ledger:   l,
		supplied: supplied,
	}
}

// UseValue consumes part of the supplied native value. Steps may never
// consume beyond what the caller attached.
func (e *ExecContext) UseValue(amount uint64) error {
	if amount > e.supplied-e.used {
		return fmt.Errorf("consume %d of %d remaining: %w", amount, e.supplied-e.used, domain.ErrInsufficientValue)
	}
	e.used += amount
	return nil
}

// ReleaseValue returns budget a step reserved with UseValue but did not
// spend, making it refundable at settlement. Never releases more than was
// consumed.
func (e *ExecContext) ReleaseValue(amount uint64) {
	if amount > e.used {
		amount = e.used
	}
	e.used -= amount
}

// Remaining reports the unconsumed supplied value, refunded at settlement.
func (e *ExecContext) Remaining() uint64 {
	return e.supplied - e.used
}

// Used reports the value consumed so far.
func (e *ExecContext) Used() uint64 {
	return e.used
}
