package vault

import (
	"crypto/ed25519"
	"fmt"

	"github.com/aretw0/sluice/pkg/domain"
)

// RegisterKey binds a signing key to an account. Master approvals for the
// account must be signed by this key.
func (v *Vault) RegisterKey(owner domain.Address, key ed25519.PublicKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys[owner] = key
}

// Nonce returns the next expected approval nonce for an account.
func (v *Vault) Nonce(owner domain.Address) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.nonces[owner]
}

// MasterApproved reports whether master may act on owner's vault balances.
func (v *Vault) MasterApproved(owner, master domain.Address) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.masters[owner][master]
}

// ApprovalMessage builds the exact bytes an owner signs to grant or revoke a
// master approval. The nonce scopes each message to a single use.
func ApprovalMessage(owner, master domain.Address, approved bool, nonce uint64) []byte {
	return fmt.Appendf(nil, "sluice-vault/master-approval|%s|%s|%t|%d", owner, master, approved, nonce)
}

// SetMasterApproval grants or revokes master's access to owner's balances.
// The signature must cover ApprovalMessage with the owner's current nonce
// and verify against the owner's registered key; the nonce is consumed
// either way the flag goes, so an old approval can never be replayed to
// undo a revocation.
func (v *Vault) SetMasterApproval(owner, master domain.Address, approved bool, nonce uint64, sig []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	key, ok := v.keys[owner]
	if !ok {
		return fmt.Errorf("no signing key registered for %s: %w", owner, domain.ErrInsufficientAuthorization)
	}
	if nonce != v.nonces[owner] {
		return fmt.Errorf("approval nonce %d, expected %d: %w", nonce, v.nonces[owner], domain.ErrInsufficientAuthorization)
	}
	if !ed25519.Verify(key, ApprovalMessage(owner, master, approved, nonce), sig) {
		return fmt.Errorf("approval signature for %s: %w", owner, domain.ErrInsufficientAuthorization)
	}

	v.nonces[owner]++
	byMaster, ok := v.masters[owner]
	if !ok {
		byMaster = make(map[domain.Address]bool)
		v.masters[owner] = byMaster
	}
	byMaster[master] = approved
	return nil
}
