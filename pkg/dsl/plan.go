package dsl

import (
	"github.com/aretw0/sluice/pkg/adapters/bank"
	"github.com/aretw0/sluice/pkg/adapters/market"
	"github.com/aretw0/sluice/pkg/adapters/swap"
	"github.com/aretw0/sluice/pkg/adapters/transfer"
	"github.com/aretw0/sluice/pkg/domain"
)

// Plan accumulates steps against the bundled adapters.
type Plan struct {
	steps []domain.Step

	transferID uint64
	swapID     uint64
	marketID   uint64
	bankID     uint64
}

// NewPlan creates a plan targeting the default adapter ids assigned by
// RegisterBuiltins: transfer 0, swap 1, market 2, bank 3.
func NewPlan() *Plan {
	return &Plan{transferID: 0, swapID: 1, marketID: 2, bankID: 3}
}

// Bind overrides the adapter ids when the registry was populated in a
// different order.
func (p *Plan) Bind(transferID, swapID, marketID, bankID uint64) *Plan {
	p.transferID = transferID
	p.swapID = swapID
	p.marketID = marketID
	p.bankID = bankID
	return p
}

// Step appends a raw step. Escape hatch for adapters the helpers do not
// cover.
func (p *Plan) Step(adapterID uint64, op string, args map[string]any) *Plan {
	p.steps = append(p.steps, domain.Step{
		AdapterID: adapterID,
		Payload:   domain.EncodeCall(op, args),
	})
	return p
}

// Steps returns the accumulated steps.
func (p *Plan) Steps() []domain.Step {
	return p.steps
}

// PullFungible pulls tokens from the caller's custody source into the
// router.
func (p *Plan) PullFungible(token domain.Token, amount uint64, source domain.Source) *Plan {
	return p.Step(p.transferID, transfer.OpPullFungible, map[string]any{
		"token":  token,
		"amount": amount,
		"source": source,
	})
}

// PullNonFungible pulls a collection item from the caller's custody source
// into the router.
func (p *Plan) PullNonFungible(token domain.Token, id uint64, source domain.Source) *Plan {
	return p.Step(p.transferID, transfer.OpPullNonFungible, map[string]any{
		"token":  token,
		"id":     id,
		"source": source,
	})
}

// PullSemiFungible pulls a semi-fungible balance from the caller's custody
// source into the router.
func (p *Plan) PullSemiFungible(token domain.Token, id, amount uint64, source domain.Source) *Plan {
	return p.Step(p.transferID, transfer.OpPullSemiFungible, map[string]any{
		"token":  token,
		"id":     id,
		"amount": amount,
		"source": source,
	})
}

// WrapNative spends attached value and credits the router with the wrapped
// token.
func (p *Plan) WrapNative(amount uint64) *Plan {
	return p.Step(p.transferID, transfer.OpWrapNative, map[string]any{
		"amount": amount,
	})
}

// UnwrapNative burns the router's wrapped tokens for native value, sent to
// `to` when non-zero.
func (p *Plan) UnwrapNative(amount uint64, to domain.Address) *Plan {
	return p.Step(p.transferID, transfer.OpUnwrapNative, map[string]any{
		"amount": amount,
		"to":     to,
	})
}

// ReturnFungible sends the router's whole balance of the token back to the
// caller.
func (p *Plan) ReturnFungible(token domain.Token) *Plan {
	return p.Step(p.transferID, transfer.OpReturnFungible, map[string]any{
		"token": token,
	})
}

// ReturnNonFungible sends the item back to the caller when the router holds
// it.
func (p *Plan) ReturnNonFungible(token domain.Token, id uint64) *Plan {
	return p.Step(p.transferID, transfer.OpReturnNonFungible, map[string]any{
		"token": token,
		"id":    id,
	})
}

// ReturnSemiFungible sends the router's whole balance of the item back to
// the caller.
func (p *Plan) ReturnSemiFungible(token domain.Token, id uint64) *Plan {
	return p.Step(p.transferID, transfer.OpReturnSemiFungible, map[string]any{
		"token": token,
		"id":    id,
	})
}

// SwapExactIn trades a fixed input amount, requiring at least minOut.
// Proceeds go to `to` when non-zero, otherwise stay with the router.
func (p *Plan) SwapExactIn(tokenIn, tokenOut domain.Token, amountIn, minOut uint64, to domain.Address) *Plan {
	return p.Step(p.swapID, swap.OpSwapExactIn, map[string]any{
		"token_in":  tokenIn,
		"token_out": tokenOut,
		"amount_in": amountIn,
		"min_out":   minOut,
		"to":        to,
	})
}

// SwapExactOut trades for a fixed output amount, spending at most maxIn.
func (p *Plan) SwapExactOut(tokenIn, tokenOut domain.Token, amountOut, maxIn uint64, to domain.Address) *Plan {
	return p.Step(p.swapID, swap.OpSwapExactOut, map[string]any{
		"token_in":   tokenIn,
		"token_out":  tokenOut,
		"amount_out": amountOut,
		"max_in":     maxIn,
		"to":         to,
	})
}

// Fulfill fills a single order, spending `value` of the attached native
// budget. Assets land with the caller unless recipient is set.
func (p *Plan) Fulfill(hash string, value uint64, recipient domain.Address) *Plan {
	return p.Step(p.marketID, market.OpFulfill, map[string]any{
		"hash":      hash,
		"value":     value,
		"recipient": recipient,
	})
}

// ApproveBeforeFulfill grants the venue spending rights on the listed
// tokens before filling the order.
func (p *Plan) ApproveBeforeFulfill(hash string, value uint64, approveTokens []string) *Plan {
	return p.Step(p.marketID, market.OpApproveBeforeFulfill, map[string]any{
		"hash":           hash,
		"value":          value,
		"approve_tokens": approveTokens,
	})
}

// FulfillBatch fills several orders. With revertIfIncomplete the whole call
// fails when any order cannot be filled; otherwise unavailable orders are
// skipped.
func (p *Plan) FulfillBatch(hashes []string, value uint64, revertIfIncomplete bool) *Plan {
	return p.Step(p.marketID, market.OpFulfillBatch, map[string]any{
		"hashes":               hashes,
		"value":                value,
		"revert_if_incomplete": revertIfIncomplete,
	})
}

// Deposit moves the router's tokens into the vault, crediting `to` (the
// caller when zero).
func (p *Plan) Deposit(token domain.Token, amount uint64, to domain.Address) *Plan {
	return p.Step(p.bankID, bank.OpDeposit, map[string]any{
		"token":  token,
		"amount": amount,
		"to":     to,
	})
}

// Withdraw redeems vault shares held by the router, paying out to `to`.
func (p *Plan) Withdraw(token domain.Token, amount uint64, to domain.Address) *Plan {
	return p.Step(p.bankID, bank.OpWithdraw, map[string]any{
		"token":  token,
		"amount": amount,
		"to":     to,
	})
}
