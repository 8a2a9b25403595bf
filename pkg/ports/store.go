package ports

import (
	"context"
	"errors"
)

// ErrNoEntries is returned by LoadEntries when nothing has been persisted.
var ErrNoEntries = errors.New("no registry entries persisted")

// AdapterRecord is the persisted projection of a registry entry. The
// implementation itself is code, so only the registered name survives a
// restart; the registry rehydrates it through a constructor table.
type AdapterRecord struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// RegistryStore persists the adapter table so ids stay stable across
// restarts (ids are append-only and never reused, so persisted references
// in long-lived payloads keep their meaning).
type RegistryStore interface {
	// SaveEntry upserts one record keyed by id.
	SaveEntry(ctx context.Context, rec AdapterRecord) error

	// LoadEntries returns all records ordered by id.
	// Returns ErrNoEntries when the store is empty.
	LoadEntries(ctx context.Context) ([]AdapterRecord, error)
}
