// Package market is the order-fulfillment adapter. It spends the router's
// attached value and balances to fill orders on the exchange, optionally
// granting the exchange the approvals it needs first, and supports batches
// that either skip or revert on unfillable orders.
package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/codec"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/exchange"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
)

// Operation names understood by the adapter.
const (
	OpFulfill              = "fulfill"
	OpApproveBeforeFulfill = "approve_before_fulfill"
	OpFulfillBatch         = "fulfill_batch"
)

// Adapter settles orders against the exchange.
type Adapter struct {
	exchange *exchange.Exchange
	ledger   *ledger.Ledger
}

// New creates the market adapter.
func New(ex *exchange.Exchange, l *ledger.Ledger) *Adapter {
	return &Adapter{exchange: ex, ledger: l}
}

// Name implements ports.Adapter.
func (a *Adapter) Name() string { return "market" }

type fulfillParams struct {
	Hash               string            `mapstructure:"hash"`
	Hashes             []string          `mapstructure:"hashes"`
	Value              uint64            `mapstructure:"value"`
	Recipient          domain.Address    `mapstructure:"recipient"`
	ConduitKey         domain.ConduitKey `mapstructure:"conduit_key"`
	ApproveTokens      []string          `mapstructure:"approve_tokens"`
	RevertIfIncomplete bool              `mapstructure:"revert_if_incomplete"`
}

// Invoke implements ports.Adapter.
func (a *Adapter) Invoke(ctx context.Context, exec *ports.ExecContext, payload json.RawMessage) error {
	call, err := domain.DecodeCall(payload)
	if err != nil {
		return err
	}
	var p fulfillParams
	if err := codec.Decode(call.Args, &p); err != nil {
		return err
	}

	// The declared value is reserved up front as the step's spending cap;
	// native order legs then draw on the router's balance. After settlement
	// the actual outflow is measured and any reserved surplus released, so
	// skipped orders in a batch never strand their value on the router.
	if err := exec.UseValue(p.Value); err != nil {
		return err
	}
	recipient := p.Recipient
	if recipient == domain.Zero {
		recipient = exec.Caller
	}
	before := a.ledger.NativeBalance(exec.Router)

	switch call.Op {
	case OpFulfill:
		err = a.exchange.Fulfill(exec.Router, recipient, p.Hash, p.ConduitKey)

	case OpApproveBeforeFulfill:
		// Grant the exchange what it needs to source the router's side,
		// then fill. Approvals are rolled back with the ledger on failure.
		a.approve(exec, p.ApproveTokens)
		err = a.exchange.Fulfill(exec.Router, recipient, p.Hash, p.ConduitKey)

	case OpFulfillBatch:
		a.approve(exec, p.ApproveTokens)
		_, err = a.exchange.FulfillAvailable(exec.Router, recipient, p.Hashes, p.ConduitKey, p.RevertIfIncomplete)

	default:
		return fmt.Errorf("market adapter: unknown op %q", call.Op)
	}
	if err != nil {
		return err
	}

	var spent uint64
	if after := a.ledger.NativeBalance(exec.Router); after < before {
		spent = before - after
	}
	if spent > p.Value {
		return fmt.Errorf("orders drew %d against a declared %d: %w", spent, p.Value, domain.ErrInsufficientValue)
	}
	exec.ReleaseValue(p.Value - spent)
	return nil
}

func (a *Adapter) approve(exec *ports.ExecContext, tokens []string) {
	for _, raw := range tokens {
		token := domain.Token(raw)
		a.ledger.Approve(token, exec.Router, a.exchange.Address(), ledger.Unlimited)
		a.ledger.SetOperator(token, exec.Router, a.exchange.Address(), true)
	}
}
