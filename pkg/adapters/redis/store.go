// Package redis provides the redis-backed infrastructure adapters: registry
// persistence and the distributed execute lock.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/sluice/pkg/ports"
)

// Store implements ports.RegistryStore on a redis hash keyed by adapter id.
type Store struct {
	client *backend.Client
	key    string
}

// NewStore creates a store under the given key prefix.
func NewStore(client *backend.Client, prefix string) *Store {
	return &Store{
		client: client,
		key:    prefix + "registry",
	}
}

// SaveEntry implements ports.RegistryStore.
func (s *Store) SaveEntry(ctx context.Context, rec ports.AdapterRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal registry entry: %w", err)
	}
	field := strconv.FormatUint(rec.ID, 10)
	if err := s.client.HSet(ctx, s.key, field, raw).Err(); err != nil {
		return fmt.Errorf("redis error saving registry entry: %w", err)
	}
	return nil
}

// LoadEntries implements ports.RegistryStore.
func (s *Store) LoadEntries(ctx context.Context) ([]ports.AdapterRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error loading registry: %w", err)
	}
	if len(fields) == 0 {
		return nil, ports.ErrNoEntries
	}

	records := make([]ports.AdapterRecord, 0, len(fields))
	for _, raw := range fields {
		var rec ports.AdapterRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("corrupt registry entry: %w", err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
