package registry_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
)

const admin = domain.Address("admin")

type stubAdapter struct {
	name string
}

func (a stubAdapter) Name() string { return a.name }

func (a stubAdapter) Invoke(context.Context, *ports.ExecContext, json.RawMessage) error {
	return nil
}

// memStore is an in-memory ports.RegistryStore for rehydration tests.
type memStore struct {
	records map[uint64]ports.AdapterRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uint64]ports.AdapterRecord)}
}

func (s *memStore) SaveEntry(_ context.Context, rec ports.AdapterRecord) error {
	s.records[rec.ID] = rec
	return nil
}

func (s *memStore) LoadEntries(context.Context) ([]ports.AdapterRecord, error) {
	if len(s.records) == 0 {
		return nil, ports.ErrNoEntries
	}
	out := make([]ports.AdapterRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func TestRegistry_Register(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(admin)

	id0, err := reg.Register(ctx, admin, stubAdapter{name: "first"})
	require.NoError(t, err)
	id1, err := reg.Register(ctx, admin, stubAdapter{name: "second"})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), id0)
	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, 2, reg.Len())

	entry, err := reg.Lookup(id1)
	require.NoError(t, err)
	assert.Equal(t, "second", entry.Adapter.Name())
	assert.True(t, entry.Active)
}

func TestRegistry_AdminGate(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(admin)
	id, err := reg.Register(ctx, admin, stubAdapter{name: "first"})
	require.NoError(t, err)

	_, err = reg.Register(ctx, "mallory", stubAdapter{name: "evil"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.ErrorIs(t, reg.SetActive(ctx, "mallory", id, false), domain.ErrUnauthorized)
	assert.ErrorIs(t, reg.SetAdapter(ctx, "mallory", id, stubAdapter{name: "evil"}), domain.ErrUnauthorized)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_SetAdapter(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(admin)
	id, err := reg.Register(ctx, admin, stubAdapter{name: "v1"})
	require.NoError(t, err)

	require.NoError(t, reg.SetAdapter(ctx, admin, id, stubAdapter{name: "v2"}))

	entry, err := reg.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, "v2", entry.Adapter.Name())
	assert.Equal(t, id, entry.ID)

	assert.ErrorIs(t, reg.SetAdapter(ctx, admin, 99, stubAdapter{name: "v3"}), domain.ErrUnknownAdapter)
}

func TestRegistry_SetActive(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(admin, registry.WithDefaultActive(false))
	id, err := reg.Register(ctx, admin, stubAdapter{name: "gated"})
	require.NoError(t, err)

	entry, err := reg.Lookup(id)
	require.NoError(t, err)
	assert.False(t, entry.Active)

	require.NoError(t, reg.SetActive(ctx, admin, id, true))
	entry, _ = reg.Lookup(id)
	assert.True(t, entry.Active)

	// Setting the current value again is fine.
	require.NoError(t, reg.SetActive(ctx, admin, id, true))

	assert.ErrorIs(t, reg.SetActive(ctx, admin, 99, true), domain.ErrUnknownAdapter)
}

// failingStore rejects the first fail writes, standing in for a store that
// comes back after an outage.
type failingStore struct {
	*memStore
	fail int
}

func (s *failingStore) SaveEntry(ctx context.Context, rec ports.AdapterRecord) error {
	if s.fail > 0 {
		s.fail--
		return assert.AnError
	}
	return s.memStore.SaveEntry(ctx, rec)
}

func TestRegistry_RegisterRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{memStore: newMemStore(), fail: 1}
	reg := registry.New(admin, registry.WithStore(store))

	_, err := reg.Register(ctx, admin, stubAdapter{name: "transfer"})
	require.ErrorIs(t, err, assert.AnError)

	// The failed entry must not linger in the table, or it would silently
	// vanish on the next rehydration.
	assert.Equal(t, 0, reg.Len())
	_, err = reg.Lookup(0)
	assert.ErrorIs(t, err, domain.ErrUnknownAdapter)

	// The arena stays dense: the next registration takes the freed id.
	id, err := reg.Register(ctx, admin, stubAdapter{name: "transfer"})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := registry.New(admin)
	_, err := reg.Lookup(0)
	assert.ErrorIs(t, err, domain.ErrUnknownAdapter)
}

func TestRegistry_Rehydrate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	seed := registry.New(admin, registry.WithStore(store))
	_, err := seed.Register(ctx, admin, stubAdapter{name: "transfer"})
	require.NoError(t, err)
	id1, err := seed.Register(ctx, admin, stubAdapter{name: "swap"})
	require.NoError(t, err)
	require.NoError(t, seed.SetActive(ctx, admin, id1, false))

	t.Run("restores ids and status", func(t *testing.T) {
		fresh := registry.New(admin, registry.WithStore(store))
		err := fresh.Rehydrate(ctx, func(name string) (ports.Adapter, error) {
			return stubAdapter{name: name}, nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, fresh.Len())

		entry, err := fresh.Lookup(0)
		require.NoError(t, err)
		assert.Equal(t, "transfer", entry.Adapter.Name())
		assert.True(t, entry.Active)

		entry, err = fresh.Lookup(1)
		require.NoError(t, err)
		assert.Equal(t, "swap", entry.Adapter.Name())
		assert.False(t, entry.Active)
	})

	t.Run("unresolved names come back disabled", func(t *testing.T) {
		fresh := registry.New(admin, registry.WithStore(store))
		err := fresh.Rehydrate(ctx, func(name string) (ports.Adapter, error) {
			if name == "swap" {
				return nil, assert.AnError
			}
			return stubAdapter{name: name}, nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, fresh.Len())

		entry, err := fresh.Lookup(1)
		require.NoError(t, err)
		assert.False(t, entry.Active)
		assert.Equal(t, "swap", entry.Adapter.Name())
	})

	t.Run("empty store is a no-op", func(t *testing.T) {
		fresh := registry.New(admin, registry.WithStore(newMemStore()))
		err := fresh.Rehydrate(ctx, func(name string) (ports.Adapter, error) {
			return stubAdapter{name: name}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 0, fresh.Len())
	})
}
