package amm

// Snapshot captures all pool reserves for rollback. Pool token balances
// live on the ledger and roll back with it; only reserves are local.
func (p *Pools) Snapshot() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m := make(map[pairKey]pairState, len(p.pairs))
	for key, pair := range p.pairs {
		m[key] = *pair
	}
	return m
}

// Restore rewinds reserves to a snapshot taken on this instance.
func (p *Pools) Restore(snap any) {
	m, ok := snap.(map[pairKey]pairState)
	if !ok {
		panic("amm: Restore called with foreign snapshot")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pairs = make(map[pairKey]*pairState, len(m))
	for key, pair := range m {
		stored := pair
		p.pairs[key] = &stored
	}
}
