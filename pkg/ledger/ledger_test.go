package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
)

const (
	gold = domain.Token("GOLD")
	art  = domain.Token("ART")
)

func TestLedger_Native(t *testing.T) {
	l := ledger.New()
	l.MintNative("alice", 100)

	require.NoError(t, l.TransferNative("alice", "bob", 60))
	assert.Equal(t, uint64(40), l.NativeBalance("alice"))
	assert.Equal(t, uint64(60), l.NativeBalance("bob"))

	err := l.TransferNative("alice", "bob", 41)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, uint64(40), l.NativeBalance("alice"))
}

func TestLedger_FungibleTransfer(t *testing.T) {
	l := ledger.New()
	l.Mint(gold, "alice", 100)

	require.NoError(t, l.Transfer(gold, "alice", "bob", 30))
	assert.Equal(t, uint64(70), l.Balance(gold, "alice"))
	assert.Equal(t, uint64(30), l.Balance(gold, "bob"))

	t.Run("overdraft", func(t *testing.T) {
		err := l.Transfer(gold, "bob", "alice", 31)
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	})

	t.Run("zero amount is a no-op", func(t *testing.T) {
		require.NoError(t, l.Transfer(gold, "carol", "bob", 0))
		assert.Equal(t, uint64(0), l.Balance(gold, "carol"))
	})
}

func TestLedger_Allowance(t *testing.T) {
	l := ledger.New()
	l.Mint(gold, "alice", 100)

	t.Run("spend decrements", func(t *testing.T) {
		l.Approve(gold, "alice", "router", 50)
		require.NoError(t, l.TransferFrom(gold, "router", "alice", "bob", 20))
		assert.Equal(t, uint64(30), l.Allowance(gold, "alice", "router"))
		assert.Equal(t, uint64(20), l.Balance(gold, "bob"))
	})

	t.Run("over-spend fails", func(t *testing.T) {
		err := l.TransferFrom(gold, "router", "alice", "bob", 31)
		assert.ErrorIs(t, err, domain.ErrInsufficientAuthorization)
	})

	t.Run("unlimited never decrements", func(t *testing.T) {
		l.Approve(gold, "alice", "router", ledger.Unlimited)
		require.NoError(t, l.TransferFrom(gold, "router", "alice", "bob", 40))
		assert.Equal(t, uint64(ledger.Unlimited), l.Allowance(gold, "alice", "router"))
	})

	t.Run("own balance needs no allowance", func(t *testing.T) {
		require.NoError(t, l.TransferFrom(gold, "bob", "bob", "alice", 10))
	})
}

func TestLedger_NonFungible(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.MintNFT(art, "alice", 7))

	owner, err := l.OwnerOf(art, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.Address("alice"), owner)

	t.Run("double mint rejected", func(t *testing.T) {
		assert.Error(t, l.MintNFT(art, "bob", 7))
	})

	t.Run("owner can transfer", func(t *testing.T) {
		require.NoError(t, l.TransferNFT(art, "alice", "alice", "bob", 7))
		owner, err := l.OwnerOf(art, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.Address("bob"), owner)
	})

	t.Run("stranger cannot transfer", func(t *testing.T) {
		err := l.TransferNFT(art, "alice", "bob", "alice", 7)
		assert.ErrorIs(t, err, domain.ErrInsufficientAuthorization)
	})

	t.Run("operator can transfer", func(t *testing.T) {
		l.SetOperator(art, "bob", "router", true)
		require.NoError(t, l.TransferNFT(art, "router", "bob", "alice", 7))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := l.OwnerOf(art, 99)
		assert.Error(t, err)
	})
}

func TestLedger_SemiFungible(t *testing.T) {
	l := ledger.New()
	l.MintSemi(art, "alice", 1, 50)

	require.NoError(t, l.TransferSemi(art, "alice", "alice", "bob", 1, 20))
	assert.Equal(t, uint64(30), l.SemiBalance(art, 1, "alice"))
	assert.Equal(t, uint64(20), l.SemiBalance(art, 1, "bob"))

	err := l.TransferSemi(art, "bob", "bob", "alice", 1, 21)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	err = l.TransferSemi(art, "router", "alice", "bob", 1, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientAuthorization)

	l.SetOperator(art, "alice", "router", true)
	require.NoError(t, l.TransferSemi(art, "router", "alice", "bob", 1, 5))
}

func TestLedger_WrapUnwrap(t *testing.T) {
	l := ledger.New()
	l.MintNative("alice", 100)

	require.NoError(t, l.Wrap("WNATIVE", "alice", 80))
	assert.Equal(t, uint64(20), l.NativeBalance("alice"))
	assert.Equal(t, uint64(80), l.Balance("WNATIVE", "alice"))

	assert.ErrorIs(t, l.Wrap("WNATIVE", "alice", 21), domain.ErrInsufficientBalance)

	require.NoError(t, l.Unwrap("WNATIVE", "alice", 50))
	assert.Equal(t, uint64(70), l.NativeBalance("alice"))
	assert.Equal(t, uint64(30), l.Balance("WNATIVE", "alice"))

	assert.ErrorIs(t, l.Unwrap("WNATIVE", "alice", 31), domain.ErrInsufficientBalance)
}

func TestLedger_SnapshotRestore(t *testing.T) {
	l := ledger.New()
	l.MintNative("alice", 100)
	l.Mint(gold, "alice", 50)
	l.Approve(gold, "alice", "router", 25)
	require.NoError(t, l.MintNFT(art, "alice", 1))
	l.MintSemi(art, "alice", 2, 10)
	l.SetOperator(art, "alice", "router", true)

	snap := l.Snapshot()

	require.NoError(t, l.TransferNative("alice", "bob", 100))
	require.NoError(t, l.TransferFrom(gold, "router", "alice", "bob", 25))
	require.NoError(t, l.TransferNFT(art, "alice", "alice", "bob", 1))
	require.NoError(t, l.TransferSemi(art, "router", "alice", "bob", 2, 10))

	l.Restore(snap)

	assert.Equal(t, uint64(100), l.NativeBalance("alice"))
	assert.Equal(t, uint64(0), l.NativeBalance("bob"))
	assert.Equal(t, uint64(50), l.Balance(gold, "alice"))
	assert.Equal(t, uint64(25), l.Allowance(gold, "alice", "router"))
	owner, err := l.OwnerOf(art, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Address("alice"), owner)
	assert.Equal(t, uint64(10), l.SemiBalance(art, 2, "alice"))

	// A snapshot can be restored more than once.
	require.NoError(t, l.TransferNative("alice", "bob", 10))
	l.Restore(snap)
	assert.Equal(t, uint64(100), l.NativeBalance("alice"))
}
