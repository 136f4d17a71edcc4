package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CursorStore persists the bot poller's consumption offset in Redis, keyed by
// a digest of the bot token so the cursor is scoped to one bot. The poller
// owns the only writer; durability here is what lets a restarted process
// resume without re-consuming acknowledged messages.
type CursorStore struct {
	client *redis.Client
	key    string
}

func NewCursorStore(client *redis.Client, botToken string) *CursorStore {
	sum := sha256.Sum256([]byte(botToken))
	return &CursorStore{
		client: client,
		key:    "bot:cursor:" + hex.EncodeToString(sum[:8]),
	}
}

// Load returns the persisted offset, or 0 when none exists yet.
func (c *CursorStore) Load(ctx context.Context) (int, error) {
	offset, err := c.client.Get(ctx, c.key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	return offset, nil
}

// Store persists the offset. No TTL: the cursor must outlive any idle period.
func (c *CursorStore) Store(ctx context.Context, offset int) error {
	return c.client.Set(ctx, c.key, offset, 0).Err()
}
