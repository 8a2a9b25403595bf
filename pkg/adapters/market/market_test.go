package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/market"
	"github.com/aretw0/sluice/pkg/conduit"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/exchange"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
)

const (
	gold   = domain.Token("GOLD")
	art    = domain.Token("ART")
	router = domain.Address("router")
	caller = domain.Address("alice")
	seller = domain.Address("seller")
)

type fixture struct {
	ledger   *ledger.Ledger
	exchange *exchange.Exchange
	adapter  *market.Adapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := ledger.New()
	e := exchange.New(l, conduit.NewController(l), "exchange")
	return &fixture{ledger: l, exchange: e, adapter: market.New(e, l)}
}

// listNFT lists ART #id for `price` native.
func (f *fixture) listNFT(t *testing.T, id, price uint64) string {
	t.Helper()
	require.NoError(t, f.ledger.MintNFT(art, seller, id))
	f.ledger.SetOperator(art, seller, f.exchange.Address(), true)
	hash, err := f.exchange.Submit(exchange.Order{
		Offerer:       seller,
		Offer:         []exchange.Item{{Class: exchange.ClassNonFungible, Token: art, ID: id}},
		Consideration: []exchange.Item{{Class: exchange.ClassNative, Amount: price}},
	})
	require.NoError(t, err)
	return hash
}

func (f *fixture) invoke(t *testing.T, e *ports.ExecContext, op string, args map[string]any) error {
	t.Helper()
	return f.adapter.Invoke(context.Background(), e, domain.EncodeCall(op, args))
}

func TestMarket_Fulfill(t *testing.T) {
	f := newFixture(t)
	hash := f.listNFT(t, 7, 100)

	// The engine moves attached value to the router before dispatch.
	f.ledger.MintNative(router, 120)
	e := ports.NewExecContext(caller, router, f.ledger, 120)

	err := f.invoke(t, e, market.OpFulfill, map[string]any{
		"hash":  hash,
		"value": 100,
	})
	require.NoError(t, err)

	// The item lands with the caller, not the router.
	owner, err := f.ledger.OwnerOf(art, 7)
	require.NoError(t, err)
	assert.Equal(t, caller, owner)
	assert.Equal(t, uint64(100), f.ledger.NativeBalance(seller))
	assert.Equal(t, uint64(20), e.Remaining())
}

func TestMarket_Fulfill_ExcessValueReleased(t *testing.T) {
	f := newFixture(t)
	hash := f.listNFT(t, 7, 100)
	f.ledger.MintNative(router, 200)

	// Declared 150 but the order only costs 100: the surplus goes back to
	// the refundable budget instead of sticking to the router.
	e := ports.NewExecContext(caller, router, f.ledger, 200)
	err := f.invoke(t, e, market.OpFulfill, map[string]any{
		"hash":  hash,
		"value": 150,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), e.Used())
	assert.Equal(t, uint64(100), e.Remaining())
}

func TestMarket_Fulfill_OverdrawRejected(t *testing.T) {
	f := newFixture(t)
	hash := f.listNFT(t, 7, 100)
	f.ledger.MintNative(router, 200)

	// The order draws 100 from the router's balance but the step only
	// declared 50.
	e := ports.NewExecContext(caller, router, f.ledger, 200)
	err := f.invoke(t, e, market.OpFulfill, map[string]any{
		"hash":  hash,
		"value": 50,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientValue)
}

func TestMarket_Fulfill_ValueBudget(t *testing.T) {
	f := newFixture(t)
	hash := f.listNFT(t, 7, 100)
	f.ledger.MintNative(router, 50)

	e := ports.NewExecContext(caller, router, f.ledger, 50)
	err := f.invoke(t, e, market.OpFulfill, map[string]any{
		"hash":  hash,
		"value": 100,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientValue)
}

func TestMarket_ApproveBeforeFulfill(t *testing.T) {
	f := newFixture(t)

	// Seller offers native for the router's GOLD: the exchange needs an
	// allowance from the router to source the consideration leg.
	f.ledger.MintNative(seller, 200)
	hash, err := f.exchange.Submit(exchange.Order{
		Offerer:       seller,
		Offer:         []exchange.Item{{Class: exchange.ClassNative, Amount: 200}},
		Consideration: []exchange.Item{{Class: exchange.ClassFungible, Token: gold, Amount: 80}},
	})
	require.NoError(t, err)

	f.ledger.Mint(gold, router, 80)
	e := ports.NewExecContext(caller, router, f.ledger, 0)

	t.Run("without approval the leg fails", func(t *testing.T) {
		err := f.invoke(t, e, market.OpFulfill, map[string]any{"hash": hash})
		assert.ErrorIs(t, err, domain.ErrInsufficientAuthorization)
	})

	t.Run("approve then fulfill", func(t *testing.T) {
		err := f.invoke(t, e, market.OpApproveBeforeFulfill, map[string]any{
			"hash":           hash,
			"approve_tokens": []string{string(gold)},
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(80), f.ledger.Balance(gold, seller))
		assert.Equal(t, uint64(200), f.ledger.NativeBalance(caller))
	})
}

func TestMarket_FulfillBatch(t *testing.T) {
	f := newFixture(t)
	h1 := f.listNFT(t, 1, 100)
	h2 := f.listNFT(t, 2, 100)
	require.NoError(t, f.exchange.Cancel(seller, h2))

	f.ledger.MintNative(router, 500)

	t.Run("skip mode", func(t *testing.T) {
		e := ports.NewExecContext(caller, router, f.ledger, 500)
		err := f.invoke(t, e, market.OpFulfillBatch, map[string]any{
			"hashes": []string{h1, h2},
			"value":  200,
		})
		require.NoError(t, err)
		owner, err := f.ledger.OwnerOf(art, 1)
		require.NoError(t, err)
		assert.Equal(t, caller, owner)

		// The cancelled order's share of the declared value is released,
		// not stranded.
		assert.Equal(t, uint64(100), e.Used())
		assert.Equal(t, uint64(400), e.Remaining())
	})

	t.Run("revert mode", func(t *testing.T) {
		h3 := f.listNFT(t, 3, 100)
		e := ports.NewExecContext(caller, router, f.ledger, 300)
		err := f.invoke(t, e, market.OpFulfillBatch, map[string]any{
			"hashes":               []string{h3, h2},
			"value":                300,
			"revert_if_incomplete": true,
		})
		assert.ErrorIs(t, err, domain.ErrIncompleteFulfillment)
	})
}

func TestMarket_UnknownOp(t *testing.T) {
	f := newFixture(t)
	e := ports.NewExecContext(caller, router, f.ledger, 0)
	err := f.invoke(t, e, "speculate", nil)
	assert.Error(t, err)
}
