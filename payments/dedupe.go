package payments

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers which processor events were already reconciled.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisDeduper keeps markers for ttl. Stripe retries for up to three days,
// so anything shorter only narrows the window.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl, prefix: "clubify:stripe-event:"}
}

func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, eventID string) error {
	return d.client.SetNX(ctx, d.prefix+eventID, time.Now().Unix(), d.ttl).Err()
}
