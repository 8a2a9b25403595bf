package ports

// Snapshotter is implemented by every stateful collaborator whose state can
// change during an execution (ledger, vault, exchange, pools). The engine
// snapshots all of them before the first step and restores all of them when
// any step fails, which is what makes the all-or-nothing property hold
// across heterogeneous stores rather than relying on error propagation.
type Snapshotter interface {
	// Snapshot captures current state as an opaque value.
	Snapshot() any

	// Restore rewinds to a value previously produced by Snapshot on the
	// same instance.
	Restore(snap any)
}
