package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatLock is the best-effort distributed mutex taken before touching a
// seat row. It exists to thin out row-lock contention, not to guarantee
// exclusion; the database row lock remains authoritative. Keys carry no
// ownership token, so Release after the TTL has lapsed may delete a lock
// now held by someone else.
type SeatLock struct {
	client *redis.Client
}

func NewSeatLock(client *redis.Client) *SeatLock {
	return &SeatLock{client: client}
}

// Acquire sets the key only if absent, with expiry. The boolean reports
// whether this caller now owns the lock.
func (l *SeatLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	res := l.client.SetNX(ctx, key, "1", ttl)
	return res.Val(), res.Err()
}

// Release deletes the key unconditionally.
func (l *SeatLock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

func (l *SeatLock) Client() *redis.Client {
	return l.client
}
