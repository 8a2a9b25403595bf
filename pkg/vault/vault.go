// Package vault implements the shared custodial vault: a balance-sheet
// holding deposited fungible tokens on behalf of users, addressable by raw
// amount or by proportional share.
//
// Third parties (like the router) act on a user's vault balance only after
// the user grants a master approval, authorized by a signed, nonce-scoped
// message and revocable the same way.
package vault

import (
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
)

// Vault custodies fungible tokens under share accounting.
type Vault struct {
	mu      sync.RWMutex
	ledger  *ledger.Ledger
	addr    domain.Address
	totals  map[domain.Token]rebase
	shares  map[domain.Token]map[domain.Address]uint64
	masters map[domain.Address]map[domain.Address]bool
	nonces  map[domain.Address]uint64
	keys    map[domain.Address]ed25519.PublicKey
}

// rebase tracks the elastic (token) vs base (share) totals of one token.
type rebase struct {
	elastic uint64
	base    uint64
}

// New creates a vault holding its token balances under the given address.
func New(l *ledger.Ledger, addr domain.Address) *Vault {
	return &Vault{
		ledger:  l,
		addr:    addr,
		totals:  make(map[domain.Token]rebase),
		shares:  make(map[domain.Token]map[domain.Address]uint64),
		masters: make(map[domain.Address]map[domain.Address]bool),
		nonces:  make(map[domain.Address]uint64),
		keys:    make(map[domain.Address]ed25519.PublicKey),
	}
}

// Address returns the vault's own ledger identity. Users approve this
// address to deposit.
func (v *Vault) Address() domain.Address { return v.addr }

// BalanceOf returns the share balance of an account for a token.
func (v *Vault) BalanceOf(token domain.Token, owner domain.Address) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.shares[token][owner]
}

// Totals returns the elastic (token) and base (share) totals of a token.
func (v *Vault) Totals(token domain.Token) (elastic, base uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	r := v.totals[token]
	return r.elastic, r.base
}

// ToShare converts a token amount into shares at the current rate.
func (v *Vault) ToShare(token domain.Token, amount uint64, roundUp bool) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.totals[token].toBase(amount, roundUp)
}

// ToAmount converts shares into a token amount at the current rate.
func (v *Vault) ToAmount(token domain.Token, share uint64, roundUp bool) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.totals[token].toElastic(share, roundUp)
}

// Deposit pulls tokens from `from` into the vault and credits shares to
// `to`. Exactly one of amount/share should be non-zero; the other is derived
// at the current rate. The depositor must have approved the vault on the
// ledger, and a third-party caller must hold a master approval from `from`.
func (v *Vault) Deposit(caller, from, to domain.Address, token domain.Token, amount, share uint64) (uint64, uint64, error) {
	if err := v.authorize(caller, from); err != nil {
		return 0, 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	r := v.totals[token]
	if share == 0 {
		share = r.toBase(amount, false)
	} else {
		amount = r.toElastic(share, true)
	}
	if err := v.ledger.TransferFrom(token, v.addr, from, v.addr, amount); err != nil {
		return 0, 0, fmt.Errorf("vault deposit: %w", err)
	}
	r.elastic += amount
	r.base += share
	v.totals[token] = r
	v.credit(token, to, share)
	return amount, share, nil
}

// Withdraw burns shares from `from` and pays tokens out to `to`.
func (v *Vault) Withdraw(caller, from, to domain.Address, token domain.Token, amount, share uint64) (uint64, uint64, error) {
	if err := v.authorize(caller, from); err != nil {
		return 0, 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	r := v.totals[token]
	if share == 0 {
		share = r.toBase(amount, true)
	} else {
		amount = r.toElastic(share, false)
	}
	if v.shares[token][from] < share {
		return 0, 0, fmt.Errorf("vault withdraw of %d shares from %s: %w", share, from, domain.ErrInsufficientVaultBalance)
	}
	// Pay out before burning, so a failed ledger transfer leaves shares
	// and totals untouched.
	if err := v.ledger.Transfer(token, v.addr, to, amount); err != nil {
		return 0, 0, fmt.Errorf("vault payout: %w", err)
	}
	v.shares[token][from] -= share
	r.elastic -= amount
	r.base -= share
	v.totals[token] = r
	return amount, share, nil
}

// Transfer moves shares between vault balances without touching tokens.
// This is the cheap internal settlement path custody pulls use.
func (v *Vault) Transfer(caller domain.Address, token domain.Token, from, to domain.Address, share uint64) error {
	if err := v.authorize(caller, from); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.shares[token][from] < share {
		return fmt.Errorf("vault transfer of %d shares from %s: %w", share, from, domain.ErrInsufficientVaultBalance)
	}
	v.shares[token][from] -= share
	v.credit(token, to, share)
	return nil
}

func (v *Vault) authorize(caller, from domain.Address) error {
	if caller == from {
		return nil
	}
	v.mu.RLock()
	approved := v.masters[from][caller]
	v.mu.RUnlock()
	if !approved {
		return fmt.Errorf("vault access to %s by %s: %w", from, caller, domain.ErrInsufficientAuthorization)
	}
	return nil
}

func (v *Vault) credit(token domain.Token, to domain.Address, share uint64) {
	byOwner, ok := v.shares[token]
	if !ok {
		byOwner = make(map[domain.Address]uint64)
		v.shares[token] = byOwner
	}
	byOwner[to] += share
}

func (r rebase) toBase(elastic uint64, roundUp bool) uint64 {
	if r.elastic == 0 {
		return elastic
	}
	base := elastic * r.base / r.elastic
	if roundUp && base*r.elastic/r.base < elastic {
		base++
	}
	return base
}

func (r rebase) toElastic(base uint64, roundUp bool) uint64 {
	if r.base == 0 {
		return base
	}
	elastic := base * r.elastic / r.base
	if roundUp && elastic*r.base/r.elastic < base {
		elastic++
	}
	return elastic
}
