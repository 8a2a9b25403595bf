// Package bank is the custodial-vault adapter: it deposits router-held
// tokens into the vault for the caller and withdraws vault balances back
// out, addressed by raw amount or by share.
package bank

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/codec"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/vault"
)

// Operation names understood by the adapter.
const (
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
)

// Adapter moves balances between the router and the custodial vault.
type Adapter struct {
	vault  *vault.Vault
	ledger *ledger.Ledger
}

// New creates the bank adapter.
func New(v *vault.Vault, l *ledger.Ledger) *Adapter {
	return &Adapter{vault: v, ledger: l}
}

// Name implements ports.Adapter.
func (a *Adapter) Name() string { return "bank" }

type bankParams struct {
	Token  domain.Token   `mapstructure:"token"`
	To     domain.Address `mapstructure:"to"`
	Amount uint64         `mapstructure:"amount"`
	Share  uint64         `mapstructure:"share"`
}

// Invoke implements ports.Adapter.
func (a *Adapter) Invoke(ctx context.Context, exec *ports.ExecContext, payload json.RawMessage) error {
	call, err := domain.DecodeCall(payload)
	if err != nil {
		return err
	}
	var p bankParams
	if err := codec.Decode(call.Args, &p); err != nil {
		return err
	}
	to := p.To
	if to == domain.Zero {
		to = exec.Caller
	}

	switch call.Op {
	case OpDeposit:
		// Tokens leave the router's ledger balance; shares land with the
		// recipient (the caller unless redirected). The vault pulls by
		// allowance, granted here; a failing deposit rolls the grant back
		// with the ledger.
		a.ledger.Approve(p.Token, exec.Router, a.vault.Address(), ledger.Unlimited)
		_, _, err := a.vault.Deposit(exec.Router, exec.Router, to, p.Token, p.Amount, p.Share)
		return err

	case OpWithdraw:
		_, _, err := a.vault.Withdraw(exec.Router, exec.Router, to, p.Token, p.Amount, p.Share)
		return err

	default:
		return fmt.Errorf("bank adapter: unknown op %q", call.Op)
	}
}
