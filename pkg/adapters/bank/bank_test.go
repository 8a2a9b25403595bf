package bank_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/bank"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/vault"
)

const (
	gold   = domain.Token("GOLD")
	router = domain.Address("router")
	caller = domain.Address("alice")
)

func newAdapter(t *testing.T) (*ledger.Ledger, *vault.Vault, *bank.Adapter) {
	t.Helper()
	l := ledger.New()
	v := vault.New(l, "vault")
	// No venue approval is seeded for the router: the adapter grants it
	// per deposit.
	return l, v, bank.New(v, l)
}

func invoke(t *testing.T, a *bank.Adapter, l *ledger.Ledger, op string, args map[string]any) error {
	t.Helper()
	e := ports.NewExecContext(caller, router, l, 0)
	return a.Invoke(context.Background(), e, domain.EncodeCall(op, args))
}

func TestBank_Deposit(t *testing.T) {
	l, v, a := newAdapter(t)
	l.Mint(gold, router, 500)

	err := invoke(t, a, l, bank.OpDeposit, map[string]any{
		"token":  gold,
		"amount": 300,
	})
	require.NoError(t, err)

	// Shares land with the caller by default.
	assert.Equal(t, uint64(300), v.BalanceOf(gold, caller))
	assert.Equal(t, uint64(200), l.Balance(gold, router))

	t.Run("explicit recipient", func(t *testing.T) {
		err := invoke(t, a, l, bank.OpDeposit, map[string]any{
			"token":  gold,
			"amount": 200,
			"to":     "bob",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(200), v.BalanceOf(gold, "bob"))
	})
}

func TestBank_Withdraw(t *testing.T) {
	l, v, a := newAdapter(t)
	l.Mint(gold, router, 500)
	err := invoke(t, a, l, bank.OpDeposit, map[string]any{
		"token":  gold,
		"amount": 500,
		"to":     router,
	})
	require.NoError(t, err)

	err = invoke(t, a, l, bank.OpWithdraw, map[string]any{
		"token": gold,
		"share": 200,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(200), l.Balance(gold, caller))
	assert.Equal(t, uint64(300), v.BalanceOf(gold, router))

	t.Run("overdraw", func(t *testing.T) {
		err := invoke(t, a, l, bank.OpWithdraw, map[string]any{
			"token":  gold,
			"amount": 1_000,
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientVaultBalance)
	})
}

func TestBank_UnknownOp(t *testing.T) {
	l, _, a := newAdapter(t)
	err := invoke(t, a, l, "rob", nil)
	assert.Error(t, err)
}
