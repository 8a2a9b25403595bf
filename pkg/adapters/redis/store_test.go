package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/pkg/adapters/redis"
	"github.com/aretw0/sluice/pkg/ports"
)

func newClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisStore_Contract(t *testing.T) {
	client := newClient(t)
	store := redis.NewStore(client, "sluice:")
	ports.RunRegistryStoreContract(t, store)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	a := redis.NewStore(client, "a:")
	b := redis.NewStore(client, "b:")

	require.NoError(t, a.SaveEntry(ctx, ports.AdapterRecord{ID: 0, Name: "transfer", Active: true}))

	_, err := b.LoadEntries(ctx)
	assert.ErrorIs(t, err, ports.ErrNoEntries)

	records, err := a.LoadEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
