package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type placingLock struct {
	rdb *redis.Client
}

// NewPlacingLock is a SET NX gate on checkout:placing:{id}. The TTL frees sessions whose holder died.
func NewPlacingLock(rdb *redis.Client) *placingLock {
	return &placingLock{rdb: rdb}
}

func (l *placingLock) Acquire(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key("placing", sessionID.String()), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (l *placingLock) Release(ctx context.Context, sessionID uuid.UUID) error {
	return l.rdb.Del(ctx, key("placing", sessionID.String())).Err()
}

func (l *placingLock) Held(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := l.rdb.Exists(ctx, key("placing", sessionID.String())).Result()
	return n > 0, err
}
