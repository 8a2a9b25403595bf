// Package transfer is the asset-movement adapter: it pulls assets into the
// router through any custody source, wraps and unwraps native currency, and
// returns leftover assets to the caller at the end of a sequence.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/codec"
	"github.com/aretw0/sluice/pkg/custody"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
)

// Operation names understood by the adapter.
const (
	OpPullFungible       = "pull_fungible"
	OpPullNonFungible    = "pull_non_fungible"
	OpPullSemiFungible   = "pull_semi_fungible"
	OpWrapNative         = "wrap_native"
	OpUnwrapNative       = "unwrap_native"
	OpReturnFungible     = "return_fungible"
	OpReturnNonFungible  = "return_non_fungible"
	OpReturnSemiFungible = "return_semi_fungible"
)

// Adapter moves assets between custody locations and the router.
type Adapter struct {
	resolver *custody.Resolver
	ledger   *ledger.Ledger
	wrapped  domain.Token
}

// New creates the transfer adapter. wrapped is the token native currency
// wraps into.
func New(resolver *custody.Resolver, l *ledger.Ledger, wrapped domain.Token) *Adapter {
	return &Adapter{resolver: resolver, ledger: l, wrapped: wrapped}
}

// Name implements ports.Adapter.
func (a *Adapter) Name() string { return "transfer" }

type pullParams struct {
	Token  domain.Token   `mapstructure:"token"`
	To     domain.Address `mapstructure:"to"`
	ID     uint64         `mapstructure:"id"`
	Amount uint64         `mapstructure:"amount"`
	Source domain.Source  `mapstructure:"source"`
}

type wrapParams struct {
	Amount uint64         `mapstructure:"amount"`
	To     domain.Address `mapstructure:"to"`
}

type returnParams struct {
	Token domain.Token `mapstructure:"token"`
	ID    uint64       `mapstructure:"id"`
}

// Invoke implements ports.Adapter.
func (a *Adapter) Invoke(ctx context.Context, exec *ports.ExecContext, payload json.RawMessage) error {
	call, err := domain.DecodeCall(payload)
	if err != nil {
		return err
	}

	switch call.Op {
	case OpPullFungible:
		var p pullParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		return a.resolver.PullFungible(p.Token, exec.Caller, orRouter(p.To, exec), p.Amount, p.Source)

	case OpPullNonFungible:
		var p pullParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		return a.resolver.PullNonFungible(p.Token, exec.Caller, orRouter(p.To, exec), p.ID, p.Source)

	case OpPullSemiFungible:
		var p pullParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		return a.resolver.PullSemiFungible(p.Token, exec.Caller, orRouter(p.To, exec), p.ID, p.Amount, p.Source)

	case OpWrapNative:
		var p wrapParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		// Wrapping spends attached value.
		if err := exec.UseValue(p.Amount); err != nil {
			return err
		}
		return a.ledger.Wrap(a.wrapped, exec.Router, p.Amount)

	case OpUnwrapNative:
		var p wrapParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		if err := a.ledger.Unwrap(a.wrapped, exec.Router, p.Amount); err != nil {
			return err
		}
		if to := p.To; to != domain.Zero && to != exec.Router {
			return a.ledger.TransferNative(exec.Router, to, p.Amount)
		}
		return nil

	case OpReturnFungible:
		var p returnParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		balance := a.ledger.Balance(p.Token, exec.Router)
		if balance == 0 {
			return nil
		}
		return a.ledger.Transfer(p.Token, exec.Router, exec.Caller, balance)

	case OpReturnNonFungible:
		var p returnParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		owner, err := a.ledger.OwnerOf(p.Token, p.ID)
		if err != nil || owner != exec.Router {
			// Nothing of ours to return.
			return nil
		}
		return a.ledger.TransferNFT(p.Token, exec.Router, exec.Router, exec.Caller, p.ID)

	case OpReturnSemiFungible:
		var p returnParams
		if err := codec.Decode(call.Args, &p); err != nil {
			return err
		}
		balance := a.ledger.SemiBalance(p.Token, p.ID, exec.Router)
		if balance == 0 {
			return nil
		}
		return a.ledger.TransferSemi(p.Token, exec.Router, exec.Router, exec.Caller, p.ID, balance)

	default:
		return fmt.Errorf("transfer adapter: unknown op %q", call.Op)
	}
}

func orRouter(to domain.Address, exec *ports.ExecContext) domain.Address {
	if to == domain.Zero {
		return exec.Router
	}
	return to
}
