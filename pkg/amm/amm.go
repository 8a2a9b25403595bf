// Package amm provides constant-product token pairs for the swap adapter:
// classic x*y=k pools with a 0.3% fee, quoted exact-in or exact-out.
package amm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
)

var (
	// ErrUnknownPair is returned when no pool exists for a token pair.
	ErrUnknownPair = errors.New("unknown pair")

	// ErrInsufficientLiquidity is returned when a pool cannot quote the
	// requested output.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrSlippage is returned when a swap violates its caller's bound.
	ErrSlippage = errors.New("price outside slippage bound")
)

// Pools is the pair factory and swap venue.
type Pools struct {
	mu     sync.RWMutex
	ledger *ledger.Ledger
	addr   domain.Address
	pairs  map[pairKey]*pairState
}

type pairKey struct {
	token0 domain.Token
	token1 domain.Token
}

type pairState struct {
	addr     domain.Address
	reserve0 uint64
	reserve1 uint64
}

// New creates an empty pool set. Traders grant allowances to addr; pools
// pull swap input through it.
func New(l *ledger.Ledger, addr domain.Address) *Pools {
	return &Pools{
		ledger: l,
		addr:   addr,
		pairs:  make(map[pairKey]*pairState),
	}
}

// Address returns the venue's ledger identity.
func (p *Pools) Address() domain.Address { return p.addr }

// CreatePair seeds a pool with initial liquidity pulled from the provider,
// who must have approved the venue for both tokens.
func (p *Pools) CreatePair(provider domain.Address, tokenA, tokenB domain.Token, amountA, amountB uint64) error {
	if tokenA == tokenB {
		return fmt.Errorf("pair of identical tokens %s", tokenA)
	}
	if amountA == 0 || amountB == 0 {
		return fmt.Errorf("pair %s/%s seeded with zero liquidity: %w", tokenA, tokenB, ErrInsufficientLiquidity)
	}
	key, flipped := normalize(tokenA, tokenB)
	if flipped {
		amountA, amountB = amountB, amountA
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pairs[key]; exists {
		return fmt.Errorf("pair %s/%s already exists", key.token0, key.token1)
	}
	pair := &pairState{addr: pairAddress(key)}
	if err := p.ledger.TransferFrom(key.token0, p.addr, provider, pair.addr, amountA); err != nil {
		return fmt.Errorf("seed %s: %w", key.token0, err)
	}
	if err := p.ledger.TransferFrom(key.token1, p.addr, provider, pair.addr, amountB); err != nil {
		return fmt.Errorf("seed %s: %w", key.token1, err)
	}
	pair.reserve0 = amountA
	pair.reserve1 = amountB
	p.pairs[key] = pair
	return nil
}

// Reserves returns the current reserves for a pair in (tokenA, tokenB) order.
func (p *Pools) Reserves(tokenA, tokenB domain.Token) (uint64, uint64, error) {
	key, flipped := normalize(tokenA, tokenB)
	p.mu.RLock()
	defer p.mu.RUnlock()
	pair, ok := p.pairs[key]
	if !ok {
		return 0, 0, fmt.Errorf("pair %s/%s: %w", tokenA, tokenB, ErrUnknownPair)
	}
	if flipped {
		return pair.reserve1, pair.reserve0, nil
	}
	return pair.reserve0, pair.reserve1, nil
}

// SwapExactIn trades a fixed input for as much output as the pool quotes,
// failing when the quote falls under minOut.
func (p *Pools) SwapExactIn(trader domain.Address, tokenIn, tokenOut domain.Token, amountIn, minOut uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pair, rIn, rOut, flipped, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return 0, err
	}
	amountOut := quoteOut(amountIn, rIn, rOut)
	if amountOut == 0 || amountOut >= rOut {
		return 0, fmt.Errorf("swap %d %s: %w", amountIn, tokenIn, ErrInsufficientLiquidity)
	}
	if amountOut < minOut {
		return 0, fmt.Errorf("quoted %d, need at least %d: %w", amountOut, minOut, ErrSlippage)
	}
	if err := p.settle(pair, trader, tokenIn, tokenOut, amountIn, amountOut, flipped); err != nil {
		return 0, err
	}
	return amountOut, nil
}

// SwapExactOut trades as little input as the pool quotes for a fixed
// output, failing when the quote exceeds maxIn.
func (p *Pools) SwapExactOut(trader domain.Address, tokenIn, tokenOut domain.Token, amountOut, maxIn uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pair, rIn, rOut, flipped, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return 0, err
	}
	if amountOut >= rOut {
		return 0, fmt.Errorf("swap for %d %s: %w", amountOut, tokenOut, ErrInsufficientLiquidity)
	}
	amountIn := quoteIn(amountOut, rIn, rOut)
	if amountIn > maxIn {
		return 0, fmt.Errorf("quoted %d, cap %d: %w", amountIn, maxIn, ErrSlippage)
	}
	if err := p.settle(pair, trader, tokenIn, tokenOut, amountIn, amountOut, flipped); err != nil {
		return 0, err
	}
	return amountIn, nil
}

// pair resolves the pool and orients its reserves to the swap direction.
func (p *Pools) pair(tokenIn, tokenOut domain.Token) (*pairState, uint64, uint64, bool, error) {
	key, flipped := normalize(tokenIn, tokenOut)
	pair, ok := p.pairs[key]
	if !ok {
		return nil, 0, 0, false, fmt.Errorf("pair %s/%s: %w", tokenIn, tokenOut, ErrUnknownPair)
	}
	if flipped {
		return pair, pair.reserve1, pair.reserve0, true, nil
	}
	return pair, pair.reserve0, pair.reserve1, false, nil
}

// settle moves both legs and updates reserves. Caller holds p.mu.
func (p *Pools) settle(pair *pairState, trader domain.Address, tokenIn, tokenOut domain.Token, amountIn, amountOut uint64, flipped bool) error {
	if err := p.ledger.TransferFrom(tokenIn, p.addr, trader, pair.addr, amountIn); err != nil {
		return fmt.Errorf("swap input: %w", err)
	}
	if err := p.ledger.Transfer(tokenOut, pair.addr, trader, amountOut); err != nil {
		return fmt.Errorf("swap output: %w", err)
	}
	if flipped {
		pair.reserve1 += amountIn
		pair.reserve0 -= amountOut
	} else {
		pair.reserve0 += amountIn
		pair.reserve1 -= amountOut
	}
	return nil
}

// quoteOut implements getAmountOut with the 0.3% fee on input.
func quoteOut(amountIn, reserveIn, reserveOut uint64) uint64 {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0
	}
	inWithFee := amountIn * 997
	return inWithFee * reserveOut / (reserveIn*1000 + inWithFee)
}

// quoteIn implements getAmountIn, rounding against the trader.
func quoteIn(amountOut, reserveIn, reserveOut uint64) uint64 {
	return reserveIn*amountOut*1000/((reserveOut-amountOut)*997) + 1
}

func normalize(a, b domain.Token) (pairKey, bool) {
	if a < b {
		return pairKey{token0: a, token1: b}, false
	}
	return pairKey{token0: b, token1: a}, true
}

func pairAddress(key pairKey) domain.Address {
	return domain.Address("pool:" + string(key.token0) + "/" + string(key.token1))
}
