package transfer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/transfer"
	"github.com/aretw0/sluice/pkg/conduit"
	"github.com/aretw0/sluice/pkg/custody"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/vault"
)

const (
	gold    = domain.Token("GOLD")
	art     = domain.Token("ART")
	wnative = domain.Token("WNATIVE")
	router  = domain.Address("router")
	caller  = domain.Address("alice")
)

func newAdapter(t *testing.T) (*ledger.Ledger, *transfer.Adapter) {
	t.Helper()
	l := ledger.New()
	c := conduit.NewController(l)
	v := vault.New(l, "vault")
	resolver := custody.NewResolver(l, c, v, router)
	return l, transfer.New(resolver, l, wnative)
}

func exec(l *ledger.Ledger, supplied uint64) *ports.ExecContext {
	return ports.NewExecContext(caller, router, l, supplied)
}

func invoke(t *testing.T, a *transfer.Adapter, e *ports.ExecContext, op string, args map[string]any) error {
	t.Helper()
	return a.Invoke(context.Background(), e, domain.EncodeCall(op, args))
}

func TestTransfer_PullFungible(t *testing.T) {
	l, a := newAdapter(t)
	l.Mint(gold, caller, 100)
	l.Approve(gold, caller, router, 100)

	err := invoke(t, a, exec(l, 0), transfer.OpPullFungible, map[string]any{
		"token":  gold,
		"amount": 60,
		"source": map[string]any{"kind": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(60), l.Balance(gold, router))

	t.Run("explicit destination", func(t *testing.T) {
		err := invoke(t, a, exec(l, 0), transfer.OpPullFungible, map[string]any{
			"token":  gold,
			"amount": 40,
			"to":     "bob",
			"source": map[string]any{"kind": 0},
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(40), l.Balance(gold, "bob"))
	})
}

func TestTransfer_PullNonFungible(t *testing.T) {
	l, a := newAdapter(t)
	require.NoError(t, l.MintNFT(art, caller, 5))
	l.SetOperator(art, caller, router, true)

	err := invoke(t, a, exec(l, 0), transfer.OpPullNonFungible, map[string]any{
		"token":  art,
		"id":     5,
		"source": map[string]any{"kind": 0},
	})
	require.NoError(t, err)
	owner, err := l.OwnerOf(art, 5)
	require.NoError(t, err)
	assert.Equal(t, router, owner)
}

func TestTransfer_WrapNative(t *testing.T) {
	l, a := newAdapter(t)
	l.MintNative(router, 100)

	e := exec(l, 100)
	err := invoke(t, a, e, transfer.OpWrapNative, map[string]any{"amount": 80})
	require.NoError(t, err)
	assert.Equal(t, uint64(80), l.Balance(wnative, router))
	assert.Equal(t, uint64(20), e.Remaining())

	t.Run("cannot exceed attached value", func(t *testing.T) {
		err := invoke(t, a, e, transfer.OpWrapNative, map[string]any{"amount": 21})
		assert.ErrorIs(t, err, domain.ErrInsufficientValue)
	})
}

func TestTransfer_UnwrapNative(t *testing.T) {
	l, a := newAdapter(t)
	l.MintNative(router, 100)
	require.NoError(t, l.Wrap(wnative, router, 100))

	err := invoke(t, a, exec(l, 0), transfer.OpUnwrapNative, map[string]any{
		"amount": 100,
		"to":     "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), l.NativeBalance("bob"))
	assert.Equal(t, uint64(0), l.Balance(wnative, router))
}

func TestTransfer_ReturnFungible(t *testing.T) {
	l, a := newAdapter(t)

	t.Run("empty balance is a no-op", func(t *testing.T) {
		err := invoke(t, a, exec(l, 0), transfer.OpReturnFungible, map[string]any{"token": gold})
		require.NoError(t, err)
	})

	l.Mint(gold, router, 75)
	err := invoke(t, a, exec(l, 0), transfer.OpReturnFungible, map[string]any{"token": gold})
	require.NoError(t, err)
	assert.Equal(t, uint64(75), l.Balance(gold, caller))
	assert.Equal(t, uint64(0), l.Balance(gold, router))
}

func TestTransfer_ReturnNonFungible(t *testing.T) {
	l, a := newAdapter(t)
	require.NoError(t, l.MintNFT(art, router, 9))

	err := invoke(t, a, exec(l, 0), transfer.OpReturnNonFungible, map[string]any{
		"token": art,
		"id":    9,
	})
	require.NoError(t, err)
	owner, err := l.OwnerOf(art, 9)
	require.NoError(t, err)
	assert.Equal(t, caller, owner)

	t.Run("not ours is a no-op", func(t *testing.T) {
		require.NoError(t, l.MintNFT(art, "bob", 10))
		err := invoke(t, a, exec(l, 0), transfer.OpReturnNonFungible, map[string]any{
			"token": art,
			"id":    10,
		})
		require.NoError(t, err)
		owner, _ := l.OwnerOf(art, 10)
		assert.Equal(t, domain.Address("bob"), owner)
	})
}

func TestTransfer_ReturnSemiFungible(t *testing.T) {
	l, a := newAdapter(t)
	l.MintSemi(art, router, 2, 30)

	err := invoke(t, a, exec(l, 0), transfer.OpReturnSemiFungible, map[string]any{
		"token": art,
		"id":    2,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), l.SemiBalance(art, 2, caller))
}

func TestTransfer_UnknownOp(t *testing.T) {
	l, a := newAdapter(t)
	err := invoke(t, a, exec(l, 0), "burn_everything", nil)
	assert.Error(t, err)
}

func TestTransfer_MalformedPayload(t *testing.T) {
	l, a := newAdapter(t)
	err := a.Invoke(context.Background(), exec(l, 0), []byte(`{"op":`))
	assert.Error(t, err)
}
