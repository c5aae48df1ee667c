package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type sequencer struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSequencer issues location request numbers with INCR on checkout:seq:{scope}.
// Counters expire with ttl so abandoned sessions do not leave keys behind.
func NewSequencer(rdb *redis.Client, ttl time.Duration) *sequencer {
	return &sequencer{rdb: rdb, ttl: ttl}
}

func (s *sequencer) Next(ctx context.Context, scope string) (int64, error) {
	k := key("seq", scope)
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *sequencer) Latest(ctx context.Context, scope string) (int64, error) {
	n, err := s.rdb.Get(ctx, key("seq", scope)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
