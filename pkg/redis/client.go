// Package redis is the thin Redis binding cmd/linkbridge uses to fan
// received port traffic out to subscribers and to pull outbound payloads
// from a list-backed queue. It is deliberately not a general Redis client:
// the bridge needs exactly one publish channel and one blocking queue.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bridge holds the connection the demo application shares between its
// telemetry fan-out and its outbound command queue.
type Bridge struct {
	rdb *redis.Client
	ctx context.Context
}

// New connects and pings, so a bad address fails at startup rather than on
// the first publish.
func New(addr, password string, db int) (*Bridge, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: connect %s: %w", addr, err)
	}
	return &Bridge{rdb: rdb, ctx: ctx}, nil
}

// Publish fans one payload received off the link out to channel's
// subscribers.
func (b *Bridge) Publish(channel string, payload []byte) error {
	if err := b.rdb.Publish(b.ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// PopOutbound blocks on the list-backed outbound queue for up to timeout
// (0 blocks indefinitely) and returns the oldest queued payload. ok is
// false when the wait expired with nothing queued.
func (b *Bridge) PopOutbound(queue string, timeout time.Duration) (payload []byte, ok bool, err error) {
	res, err := b.rdb.BRPop(b.ctx, timeout, queue).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: brpop %s: %w", queue, err)
	}
	// BRPOP replies [key, value].
	if len(res) != 2 {
		return nil, false, fmt.Errorf("redis: brpop %s: unexpected reply length %d", queue, len(res))
	}
	return []byte(res[1]), true, nil
}

// Close releases the underlying connection pool.
func (b *Bridge) Close() error {
	return b.rdb.Close()
}
