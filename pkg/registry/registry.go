// Package registry owns the adapter table: an append-only arena of adapter
// implementations addressed by stable integer ids.
//
// Ids are assigned monotonically from zero and never reused; an entry can be
// disabled or have its implementation swapped, but it is never deleted. That
// keeps every already-encoded step sequence meaningful for the lifetime of
// the router.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Entry is one row of the adapter table.
type Entry struct {
	ID      uint64
	Adapter ports.Adapter
	Active  bool
}

// Registry manages the adapter table. All mutations are gated on the
// administrator address; Lookup is open to the engine's dispatch path.
type Registry struct {
	mu            sync.RWMutex
	admin         domain.Address
	entries       []Entry
	defaultActive bool
	store         ports.RegistryStore
	logger        *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore persists the table through the given store.
func WithStore(store ports.RegistryStore) Option {
	return func(r *Registry) { r.store = store }
}

// WithDefaultActive controls whether freshly registered adapters dispatch
// immediately. Defaults to true.
func WithDefaultActive(active bool) Option {
	return func(r *Registry) { r.defaultActive = active }
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates a registry administered by admin.
func New(admin domain.Address, opts ...Option) *Registry {
	r := &Registry{
		admin:         admin,
		defaultActive: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a new adapter and returns its assigned id.
func (r *Registry) Register(ctx context.Context, caller domain.Address, adapter ports.Adapter) (uint64, error) {
	if err := r.authorize(caller); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uint64(len(r.entries))
	entry := Entry{ID: id, Adapter: adapter, Active: r.defaultActive}
	r.entries = append(r.entries, entry)
	if err := r.persist(ctx, entry); err != nil {
		// The table and the store must agree on the arena; an entry the
		// store never saw would vanish on rehydration.
		r.entries = r.entries[:id]
		return 0, err
	}
	r.logger.InfoContext(ctx, "adapter registered", "id", id, "name", adapter.Name(), "active", entry.Active)
	return id, nil
}

// SetAdapter replaces the implementation behind an id in place, so
// previously encoded step references pick up the upgrade.
func (r *Registry) SetAdapter(ctx context.Context, caller domain.Address, id uint64, adapter ports.Adapter) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if id >= uint64(len(r.entries)) {
		return fmt.Errorf("set adapter %d: %w", id, domain.ErrUnknownAdapter)
	}
	r.entries[id].Adapter = adapter
	r.logger.InfoContext(ctx, "adapter replaced", "id", id, "name", adapter.Name())
	return r.persist(ctx, r.entries[id])
}

// SetActive toggles dispatchability. Setting the current value again is not
// an error.
func (r *Registry) SetActive(ctx context.Context, caller domain.Address, id uint64, active bool) error {
	if err := r.authorize(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if id >= uint64(len(r.entries)) {
		return fmt.Errorf("set active %d: %w", id, domain.ErrUnknownAdapter)
	}
	r.entries[id].Active = active
	r.logger.InfoContext(ctx, "adapter status set", "id", id, "active", active)
	return r.persist(ctx, r.entries[id])
}

// Lookup returns the entry for an id. Read-only; used on every dispatched
// step.
func (r *Registry) Lookup(id uint64) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.entries)) {
		return Entry{}, fmt.Errorf("lookup %d: %w", id, domain.ErrUnknownAdapter)
	}
	return r.entries[id], nil
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns a copy of the table for inspection surfaces.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Rehydrate rebuilds the table from the configured store. The resolve
// function maps persisted adapter names back to implementations; records
// whose name cannot be resolved keep their id but come back disabled, so
// the arena stays dense and ids stay stable.
func (r *Registry) Rehydrate(ctx context.Context, resolve func(name string) (ports.Adapter, error)) error {
	if r.store == nil {
		return nil
	}
	records, err := r.store.LoadEntries(ctx)
	if err != nil {
		if err == ports.ErrNoEntries {
			return nil
		}
		return fmt.Errorf("load registry entries: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make([]Entry, 0, len(records))
	for _, rec := range records {
		if rec.ID != uint64(len(r.entries)) {
			return fmt.Errorf("registry store is not dense: got id %d at position %d", rec.ID, len(r.entries))
		}
		adapter, err := resolve(rec.Name)
		if err != nil {
			r.logger.WarnContext(ctx, "adapter not resolvable, disabling entry", "id", rec.ID, "name", rec.Name, "err", err)
			r.entries = append(r.entries, Entry{ID: rec.ID, Adapter: unresolved{name: rec.Name}, Active: false})
			continue
		}
		r.entries = append(r.entries, Entry{ID: rec.ID, Adapter: adapter, Active: rec.Active})
	}
	return nil
}

func (r *Registry) authorize(caller domain.Address) error {
	if caller != r.admin {
		return fmt.Errorf("registry call by %s: %w", caller, domain.ErrUnauthorized)
	}
	return nil
}

func (r *Registry) persist(ctx context.Context, entry Entry) error {
	if r.store == nil {
		return nil
	}
	rec := ports.AdapterRecord{ID: entry.ID, Name: entry.Adapter.Name(), Active: entry.Active}
	if err := r.store.SaveEntry(ctx, rec); err != nil {
		return fmt.Errorf("persist registry entry %d: %w", entry.ID, err)
	}
	return nil
}
