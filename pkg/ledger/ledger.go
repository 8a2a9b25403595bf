// Package ledger is the in-memory asset state the router executes against:
// native balances, fungible balances with allowances, non-fungible ownership
// and semi-fungible balances with operator approvals.
//
// All balance effects of an execution land here, which is what lets one
// step's output become the next step's input without intermediate transfers.
package ledger

import (
	"fmt"
	"math"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
)

// Unlimited is the allowance sentinel that is never decremented on spend.
const Unlimited = math.MaxUint64

// Ledger tracks asset ownership for every account the router touches.
type Ledger struct {
	mu sync.RWMutex

	native    map[domain.Address]uint64
	fungible  map[domain.Token]map[domain.Address]uint64
	allowance map[domain.Token]map[domain.Address]map[domain.Address]uint64
	nft       map[domain.Token]map[uint64]domain.Address
	semi      map[domain.Token]map[uint64]map[domain.Address]uint64
	operator  map[domain.Token]map[domain.Address]map[domain.Address]bool
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		native:    make(map[domain.Address]uint64),
		fungible:  make(map[domain.Token]map[domain.Address]uint64),
		allowance: make(map[domain.Token]map[domain.Address]map[domain.Address]uint64),
		nft:       make(map[domain.Token]map[uint64]domain.Address),
		semi:      make(map[domain.Token]map[uint64]map[domain.Address]uint64),
		operator:  make(map[domain.Token]map[domain.Address]map[domain.Address]bool),
	}
}

// --- native currency ---

// MintNative credits native currency out of thin air. Test and genesis use.
func (l *Ledger) MintNative(to domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.native[to] += amount
}

// NativeBalance returns the native balance of an account.
func (l *Ledger) NativeBalance(addr domain.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.native[addr]
}

// TransferNative moves native currency between accounts.
func (l *Ledger) TransferNative(from, to domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.native[from] < amount {
		return fmt.Errorf("native transfer of %d from %s: %w", amount, from, domain.ErrInsufficientBalance)
	}
	l.native[from] -= amount
	l.native[to] += amount
	return nil
}

// --- fungible tokens ---

// Mint credits fungible tokens. Test and genesis use.
func (l *Ledger) Mint(token domain.Token, to domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditFungible(token, to, amount)
}

// Balance returns the fungible balance of an account.
func (l *Ledger) Balance(token domain.Token, addr domain.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fungible[token][addr]
}

// Transfer moves fungible tokens out of the caller's own balance.
func (l *Ledger) Transfer(token domain.Token, from, to domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveFungible(token, from, to, amount)
}

// Approve grants spender an allowance over owner's balance. Unlimited
// allowances are never decremented.
func (l *Ledger) Approve(token domain.Token, owner, spender domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byOwner, ok := l.allowance[token]
	if !ok {
		byOwner = make(map[domain.Address]map[domain.Address]uint64)
		l.allowance[token] = byOwner
	}
	bySpender, ok := byOwner[owner]
	if !ok {
		bySpender = make(map[domain.Address]uint64)
		byOwner[owner] = bySpender
	}
	bySpender[spender] = amount
}

// Allowance returns the remaining allowance of spender over owner's balance.
func (l *Ledger) Allowance(token domain.Token, owner, spender domain.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowance[token][owner][spender]
}

// TransferFrom spends an allowance: spender moves tokens from owner to a
// destination. Spending your own balance needs no allowance.
func (l *Ledger) TransferFrom(token domain.Token, spender, from, to domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if spender != from {
		granted := l.allowance[token][from][spender]
		if granted < amount {
			return fmt.Errorf("spender %s over token %s of %s: %w", spender, token, from, domain.ErrInsufficientAuthorization)
		}
		if granted != Unlimited {
			l.allowance[token][from][spender] = granted - amount
		}
	}
	return l.moveFungible(token, from, to, amount)
}

// --- non-fungible tokens ---

// MintNFT assigns a fresh token id to an owner.
func (l *Ledger) MintNFT(token domain.Token, to domain.Address, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	byID, ok := l.nft[token]
	if !ok {
		byID = make(map[uint64]domain.Address)
		l.nft[token] = byID
	}
	if _, exists := byID[id]; exists {
		return fmt.Errorf("nft %s/%d already minted", token, id)
	}
	byID[id] = to
	return nil
}

// OwnerOf returns the owner of a non-fungible token id.
func (l *Ledger) OwnerOf(token domain.Token, id uint64) (domain.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.nft[token][id]
	if !ok {
		return domain.Zero, fmt.Errorf("nft %s/%d: %w", token, id, domain.ErrInsufficientBalance)
	}
	return owner, nil
}

// TransferNFT moves a non-fungible token. The operator must be the owner or
// an approved operator for the owner on this token.
func (l *Ledger) TransferNFT(token domain.Token, operator, from, to domain.Address, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.nft[token][id]
	if !ok || owner != from {
		return fmt.Errorf("nft %s/%d not held by %s: %w", token, id, from, domain.ErrInsufficientBalance)
	}
	if operator != from && !l.operator[token][from][operator] {
		return fmt.Errorf("operator %s over nft %s of %s: %w", operator, token, from, domain.ErrInsufficientAuthorization)
	}
	l.nft[token][id] = to
	return nil
}

// --- semi-fungible tokens ---

// MintSemi credits semi-fungible units of one id to an owner.
func (l *Ledger) MintSemi(token domain.Token, to domain.Address, id, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byID, ok := l.semi[token]
	if !ok {
		byID = make(map[uint64]map[domain.Address]uint64)
		l.semi[token] = byID
	}
	byOwner, ok := byID[id]
	if !ok {
		byOwner = make(map[domain.Address]uint64)
		byID[id] = byOwner
	}
	byOwner[to] += amount
}

// SemiBalance returns the semi-fungible balance of an account for one id.
func (l *Ledger) SemiBalance(token domain.Token, id uint64, addr domain.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.semi[token][id][addr]
}

// TransferSemi moves semi-fungible units. Authorization follows the same
// operator rule as TransferNFT.
func (l *Ledger) TransferSemi(token domain.Token, operator, from, to domain.Address, id, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if operator != from && !l.operator[token][from][operator] {
		return fmt.Errorf("operator %s over semi %s of %s: %w", operator, token, from, domain.ErrInsufficientAuthorization)
	}
	byOwner := l.semi[token][id]
	if byOwner[from] < amount {
		return fmt.Errorf("semi %s/%d transfer of %d from %s: %w", token, id, amount, from, domain.ErrInsufficientBalance)
	}
	if amount == 0 {
		return nil
	}
	byOwner[from] -= amount
	byOwner[to] += amount
	return nil
}

// --- operator approvals (non-fungible and semi-fungible) ---

// SetOperator grants or revokes an approval-for-all on one token.
func (l *Ledger) SetOperator(token domain.Token, owner, operator domain.Address, approved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byOwner, ok := l.operator[token]
	if !ok {
		byOwner = make(map[domain.Address]map[domain.Address]bool)
		l.operator[token] = byOwner
	}
	byOperator, ok := byOwner[owner]
	if !ok {
		byOperator = make(map[domain.Address]bool)
		byOwner[owner] = byOperator
	}
	byOperator[operator] = approved
}

// IsOperator reports whether operator holds an approval-for-all from owner.
func (l *Ledger) IsOperator(token domain.Token, owner, operator domain.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.operator[token][owner][operator]
}

// --- wrapped native ---

// Wrap converts native currency into the wrapped token, credited to owner.
func (l *Ledger) Wrap(wrapped domain.Token, owner domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.native[owner] < amount {
		return fmt.Errorf("wrap %d for %s: %w", amount, owner, domain.ErrInsufficientBalance)
	}
	l.native[owner] -= amount
	l.creditFungible(wrapped, owner, amount)
	return nil
}

// Unwrap converts wrapped tokens back into native currency.
func (l *Ledger) Unwrap(wrapped domain.Token, owner domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fungible[wrapped][owner] < amount {
		return fmt.Errorf("unwrap %d for %s: %w", amount, owner, domain.ErrInsufficientBalance)
	}
	l.fungible[wrapped][owner] -= amount
	l.native[owner] += amount
	return nil
}

// --- internals ---

func (l *Ledger) creditFungible(token domain.Token, to domain.Address, amount uint64) {
	byOwner, ok := l.fungible[token]
	if !ok {
		byOwner = make(map[domain.Address]uint64)
		l.fungible[token] = byOwner
	}
	byOwner[to] += amount
}

func (l *Ledger) moveFungible(token domain.Token, from, to domain.Address, amount uint64) error {
	if l.fungible[token][from] < amount {
		return fmt.Errorf("transfer of %d %s from %s: %w", amount, token, from, domain.ErrInsufficientBalance)
	}
	if amount == 0 {
		return nil
	}
	l.fungible[token][from] -= amount
	l.creditFungible(token, to, amount)
	return nil
}
