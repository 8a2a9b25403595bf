package vault

import "github.com/aretw0/sluice/pkg/domain"

type memento struct {
	totals  map[domain.Token]rebase
	shares  map[domain.Token]map[domain.Address]uint64
	masters map[domain.Address]map[domain.Address]bool
	nonces  map[domain.Address]uint64
}

// Snapshot captures vault accounting state for rollback. Approvals and
// nonces are included so a rolled-back execution cannot burn a nonce.
func (v *Vault) Snapshot() any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.capture()
}

// Restore rewinds the vault to a snapshot taken on this instance. The
// memento is copied again so the same snapshot can be restored repeatedly.
func (v *Vault) Restore(snap any) {
	m, ok := snap.(*memento)
	if !ok {
		panic("vault: Restore called with foreign snapshot")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.totals = copyTotals(m.totals)
	v.shares = copyShares(m.shares)
	v.masters = copyMasters(m.masters)
	v.nonces = copyNonces(m.nonces)
}

// capture assumes the caller holds at least a read lock.
func (v *Vault) capture() *memento {
	return &memento{
		totals:  copyTotals(v.totals),
		shares:  copyShares(v.shares),
		masters: copyMasters(v.masters),
		nonces:  copyNonces(v.nonces),
	}
}

func copyTotals(src map[domain.Token]rebase) map[domain.Token]rebase {
	dst := make(map[domain.Token]rebase, len(src))
	for token, r := range src {
		dst[token] = r
	}
	return dst
}

func copyShares(src map[domain.Token]map[domain.Address]uint64) map[domain.Token]map[domain.Address]uint64 {
	dst := make(map[domain.Token]map[domain.Address]uint64, len(src))
	for token, byOwner := range src {
		inner := make(map[domain.Address]uint64, len(byOwner))
		for owner, share := range byOwner {
			inner[owner] = share
		}
		dst[token] = inner
	}
	return dst
}

func copyMasters(src map[domain.Address]map[domain.Address]bool) map[domain.Address]map[domain.Address]bool {
	dst := make(map[domain.Address]map[domain.Address]bool, len(src))
	for owner, byMaster := range src {
		inner := make(map[domain.Address]bool, len(byMaster))
		for master, ok := range byMaster {
			inner[master] = ok
		}
		dst[owner] = inner
	}
	return dst
}

func copyNonces(src map[domain.Address]uint64) map[domain.Address]uint64 {
	dst := make(map[domain.Address]uint64, len(src))
	for owner, nonce := range src {
		dst[owner] = nonce
	}
	return dst
}
