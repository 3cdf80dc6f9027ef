package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper gives worker handlers at-most-once processing per event under
// RabbitMQ's at-least-once redelivery.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce returns true the first time (handler, eventType, id) is seen
// within the TTL window. When Redis is unavailable it fails open: processing
// proceeds rather than stalls.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, eventType string, id uint64) bool {
	key := fmt.Sprintf("dedup:%s:%s:%d", handler, eventType, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
