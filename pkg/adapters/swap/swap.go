// Package swap is the AMM adapter: exact-in and exact-out trades from the
// router's own balances, so earlier pulls fund the trade and the proceeds
// stay available to later steps.
package swap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/codec"
	"github.com/aretw0/sluice/pkg/amm"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
)

// Operation names understood by the adapter.
const (
	OpSwapExactIn  = "swap_exact_in"
	OpSwapExactOut = "swap_exact_out"
)

// Adapter trades on the constant-product pools.
type Adapter struct {
	pools  *amm.Pools
	ledger *ledger.Ledger
}

// New creates the swap adapter.
func New(pools *amm.Pools, l *ledger.Ledger) *Adapter {
	return &Adapter{pools: pools, ledger: l}
}

// Name implements ports.Adapter.
func (a *Adapter) Name() string { return "swap" }

type swapParams struct {
	TokenIn   domain.Token   `mapstructure:"token_in"`
	TokenOut  domain.Token   `mapstructure:"token_out"`
	AmountIn  uint64         `mapstructure:"amount_in"`
	AmountOut uint64         `mapstructure:"amount_out"`
	MinOut    uint64         `mapstructure:"min_out"`
	MaxIn     uint64         `mapstructure:"max_in"`
	To        domain.Address `mapstructure:"to"`
}

// Invoke implements ports.Adapter.
func (a *Adapter) Invoke(ctx context.Context, exec *ports.ExecContext, payload json.RawMessage) error {
	call, err := domain.DecodeCall(payload)
	if err != nil {
		return err
	}
	var p swapParams
	if err := codec.Decode(call.Args, &p); err != nil {
		return err
	}

	// The venue pulls the input leg from the router by allowance. Granted
	// here per trade; a failing trade rolls the grant back with the ledger.
	a.ledger.Approve(p.TokenIn, exec.Router, a.pools.Address(), ledger.Unlimited)

	switch call.Op {
	case OpSwapExactIn:
		out, err := a.pools.SwapExactIn(exec.Router, p.TokenIn, p.TokenOut, p.AmountIn, p.MinOut)
		if err != nil {
			return err
		}
		return a.forward(exec, p.TokenOut, out, p.To)

	case OpSwapExactOut:
		if _, err := a.pools.SwapExactOut(exec.Router, p.TokenIn, p.TokenOut, p.AmountOut, p.MaxIn); err != nil {
			return err
		}
		return a.forward(exec, p.TokenOut, p.AmountOut, p.To)

	default:
		return fmt.Errorf("swap adapter: unknown op %q", call.Op)
	}
}

// forward routes proceeds away from the router when the step asks for it.
func (a *Adapter) forward(exec *ports.ExecContext, token domain.Token, amount uint64, to domain.Address) error {
	if to == domain.Zero || to == exec.Router {
		return nil
	}
	return a.ledger.Transfer(token, exec.Router, to, amount)
}
