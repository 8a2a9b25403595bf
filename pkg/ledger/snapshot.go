package ledger

import "github.com/aretw0/sluice/pkg/domain"

// Snapshot captures the full ledger state. It returns an opaque value to be
// handed back to Restore, satisfying ports.Snapshotter.
func (l *Ledger) Snapshot() any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &memento{
		native:    copyFlat(l.native),
		fungible:  copyNested(l.fungible),
		allowance: copyTriple(l.allowance),
		nft:       copyOwners(l.nft),
		semi:      copySemi(l.semi),
		operator:  copyOperators(l.operator),
	}
}

// Restore rewinds the ledger to a previously captured snapshot. A snapshot
// may only be restored onto the ledger that produced it.
func (l *Ledger) Restore(snap any) {
	m, ok := snap.(*memento)
	if !ok {
		panic("ledger: Restore called with foreign snapshot")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.native = copyFlat(m.native)
	l.fungible = copyNested(m.fungible)
	l.allowance = copyTriple(m.allowance)
	l.nft = copyOwners(m.nft)
	l.semi = copySemi(m.semi)
	l.operator = copyOperators(m.operator)
}

type memento struct {
	native    map[domain.Address]uint64
	fungible  map[domain.Token]map[domain.Address]uint64
	allowance map[domain.Token]map[domain.Address]map[domain.Address]uint64
	nft       map[domain.Token]map[uint64]domain.Address
	semi      map[domain.Token]map[uint64]map[domain.Address]uint64
	operator  map[domain.Token]map[domain.Address]map[domain.Address]bool
}

func copyFlat[K comparable, V uint64 | bool | domain.Address](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyNested(src map[domain.Token]map[domain.Address]uint64) map[domain.Token]map[domain.Address]uint64 {
	dst := make(map[domain.Token]map[domain.Address]uint64, len(src))
	for token, byOwner := range src {
		dst[token] = copyFlat(byOwner)
	}
	return dst
}

func copyTriple(src map[domain.Token]map[domain.Address]map[domain.Address]uint64) map[domain.Token]map[domain.Address]map[domain.Address]uint64 {
	dst := make(map[domain.Token]map[domain.Address]map[domain.Address]uint64, len(src))
	for token, byOwner := range src {
		inner := make(map[domain.Address]map[domain.Address]uint64, len(byOwner))
		for owner, bySpender := range byOwner {
			inner[owner] = copyFlat(bySpender)
		}
		dst[token] = inner
	}
	return dst
}

func copyOwners(src map[domain.Token]map[uint64]domain.Address) map[domain.Token]map[uint64]domain.Address {
	dst := make(map[domain.Token]map[uint64]domain.Address, len(src))
	for token, byID := range src {
		dst[token] = copyFlat(byID)
	}
	return dst
}

func copySemi(src map[domain.Token]map[uint64]map[domain.Address]uint64) map[domain.Token]map[uint64]map[domain.Address]uint64 {
	dst := make(map[domain.Token]map[uint64]map[domain.Address]uint64, len(src))
	for token, byID := range src {
		inner := make(map[uint64]map[domain.Address]uint64, len(byID))
		for id, byOwner := range byID {
			inner[id] = copyFlat(byOwner)
		}
		dst[token] = inner
	}
	return dst
}

func copyOperators(src map[domain.Token]map[domain.Address]map[domain.Address]bool) map[domain.Token]map[domain.Address]map[domain.Address]bool {
	dst := make(map[domain.Token]map[domain.Address]map[domain.Address]bool, len(src))
	for token, byOwner := range src {
		inner := make(map[domain.Address]map[domain.Address]bool, len(byOwner))
		for owner, byOperator := range byOwner {
			inner[owner] = copyFlat(byOperator)
		}
		dst[token] = inner
	}
	return dst
}
