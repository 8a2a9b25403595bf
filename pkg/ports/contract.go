package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRegistryStoreContract runs a suite of tests verifying that a
// RegistryStore implementation adheres to the interface contract.
func RunRegistryStoreContract(t *testing.T, store RegistryStore) {
	ctx := context.Background()

	t.Run("Empty store", func(t *testing.T) {
		_, err := store.LoadEntries(ctx)
		assert.ErrorIs(t, err, ErrNoEntries)
	})

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.SaveEntry(ctx, AdapterRecord{ID: 0, Name: "transfer", Active: true}))
		require.NoError(t, store.SaveEntry(ctx, AdapterRecord{ID: 1, Name: "market", Active: true}))

		records, err := store.LoadEntries(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, AdapterRecord{ID: 0, Name: "transfer", Active: true}, records[0])
		assert.Equal(t, AdapterRecord{ID: 1, Name: "market", Active: true}, records[1])
	})

	t.Run("Upsert keeps id stable", func(t *testing.T) {
		require.NoError(t, store.SaveEntry(ctx, AdapterRecord{ID: 1, Name: "market", Active: false}))

		records, err := store.LoadEntries(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.False(t, records[1].Active)
		assert.Equal(t, "market", records[1].Name)
	})

	t.Run("Ordered by id", func(t *testing.T) {
		require.NoError(t, store.SaveEntry(ctx, AdapterRecord{ID: 2, Name: "swap", Active: true}))

		records, err := store.LoadEntries(ctx)
		require.NoError(t, err)
		for i, rec := range records {
			assert.Equal(t, uint64(i), rec.ID)
		}
	})
}
