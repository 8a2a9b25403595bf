package swap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/swap"
	"github.com/aretw0/sluice/pkg/amm"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
)

const (
	gold   = domain.Token("GOLD")
	silver = domain.Token("SILVER")
	router = domain.Address("router")
	caller = domain.Address("alice")
)

func newAdapter(t *testing.T) (*ledger.Ledger, *swap.Adapter) {
	t.Helper()
	l := ledger.New()
	pools := amm.New(l, "amm")

	l.Mint(gold, "lp", 20_000)
	l.Mint(silver, "lp", 20_000)
	l.Approve(gold, "lp", "amm", ledger.Unlimited)
	l.Approve(silver, "lp", "amm", ledger.Unlimited)
	require.NoError(t, pools.CreatePair("lp", gold, silver, 10_000, 10_000))

	// No venue approval is seeded for the router: the adapter grants it
	// per trade.
	return l, swap.New(pools, l)
}

func invoke(t *testing.T, a *swap.Adapter, l *ledger.Ledger, op string, args map[string]any) error {
	t.Helper()
	e := ports.NewExecContext(caller, router, l, 0)
	return a.Invoke(context.Background(), e, domain.EncodeCall(op, args))
}

func TestSwap_ExactIn(t *testing.T) {
	l, a := newAdapter(t)
	l.Mint(gold, router, 1_000)

	err := invoke(t, a, l, swap.OpSwapExactIn, map[string]any{
		"token_in":  gold,
		"token_out": silver,
		"amount_in": 1_000,
		"min_out":   900,
	})
	require.NoError(t, err)

	// Proceeds stay with the router for the next step.
	assert.Equal(t, uint64(906), l.Balance(silver, router))
	assert.Equal(t, uint64(0), l.Balance(gold, router))
}

func TestSwap_ExactIn_Forwarded(t *testing.T) {
	l, a := newAdapter(t)
	l.Mint(gold, router, 1_000)

	err := invoke(t, a, l, swap.OpSwapExactIn, map[string]any{
		"token_in":  gold,
		"token_out": silver,
		"amount_in": 1_000,
		"min_out":   900,
		"to":        "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(906), l.Balance(silver, "bob"))
	assert.Equal(t, uint64(0), l.Balance(silver, router))
}

func TestSwap_ExactOut(t *testing.T) {
	l, a := newAdapter(t)
	l.Mint(gold, router, 2_000)

	err := invoke(t, a, l, swap.OpSwapExactOut, map[string]any{
		"token_in":   gold,
		"token_out":  silver,
		"amount_out": 1_000,
		"max_in":     1_200,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), l.Balance(silver, router))
	assert.Equal(t, uint64(885), l.Balance(gold, router))
}

func TestSwap_SlippageSurfaces(t *testing.T) {
	l, a := newAdapter(t)
	l.Mint(gold, router, 1_000)

	err := invoke(t, a, l, swap.OpSwapExactIn, map[string]any{
		"token_in":  gold,
		"token_out": silver,
		"amount_in": 1_000,
		"min_out":   10_000,
	})
	assert.ErrorIs(t, err, amm.ErrSlippage)
}

func TestSwap_UnknownOp(t *testing.T) {
	l, a := newAdapter(t)
	err := invoke(t, a, l, "arbitrage", nil)
	assert.Error(t, err)
}
