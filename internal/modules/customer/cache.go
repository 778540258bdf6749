// README: Customer cache backed by Redis, keyed by phone.
package customer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courierdash/internal/modules/draft"
)

const (
	phoneKeyPrefix = "customer:phone:%s"
	// Customer records change rarely; a short TTL keeps edits visible without
	// hammering the platform on every keystroke.
	cacheTTL = 5 * time.Minute
)

type Cache struct {
	redis *redis.Client
}

func NewCache(redis *redis.Client) *Cache {
	return &Cache{redis: redis}
}

// Get returns the cached record for a phone, or (nil, false) on a miss.
func (c *Cache) Get(ctx context.Context, phone string) (draft.RawRecord, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	val, err := c.redis.Get(ctx, phoneKey(phone)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	var rec draft.RawRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, false
	}
	return rec, true
}

// Put stores a record under the phone key. Cache failures are swallowed: the
// cache is an optimization, never a source of truth.
func (c *Cache) Put(ctx context.Context, phone string, rec draft.RawRecord) {
	if c == nil || c.redis == nil {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, phoneKey(phone), string(b), cacheTTL).Err()
}

func phoneKey(phone string) string {
	return fmt.Sprintf(phoneKeyPrefix, phone)
}
