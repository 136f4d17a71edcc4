package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupStore provides idempotency checks backed by Redis. It guards both
// inbound bot messages (keyed by transport update id) and notification
// fan-outs (keyed by checkpoint id). Keys expire after dedupTTL, well past
// any realistic redelivery window.
type DedupStore struct {
	client *redis.Client
	prefix string
}

// NewDedupStore creates a DedupStore; prefix namespaces its keys, e.g. "bot"
// or "notify".
func NewDedupStore(client *redis.Client, prefix string) *DedupStore {
	return &DedupStore{client: client, prefix: prefix}
}

// Seen reports whether key has already been marked.
func (d *DedupStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records key as processed (expires after dedupTTL).
func (d *DedupStore) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.key(key), "1", dedupTTL).Err()
}

func (d *DedupStore) key(key string) string {
	return fmt.Sprintf("dedup:%s:%s", d.prefix, key)
}
