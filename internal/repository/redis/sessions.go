package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

type sessionStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewSessionStore keeps sessions as JSON under checkout:session:{id}
func NewSessionStore(rdb *redis.Client, logger *zap.Logger) *sessionStore {
	return &sessionStore{rdb: rdb, logger: logger}
}

func (s *sessionStore) Get(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	raw, err := s.rdb.Get(ctx, key("session", id.String())).Bytes()
	if err == redis.Nil {
		return nil, &errors.ErrNotFound{Resource: "checkout_session", ID: id.String()}
	}
	if err != nil {
		s.logger.Error("Failed to load checkout session", zap.Error(err), zap.String("session_id", id.String()))
		return nil, err
	}

	var session checkout.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *sessionStore) Save(ctx context.Context, session *checkout.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := s.rdb.Set(ctx, key("session", session.Key()), raw, ttl).Err(); err != nil {
		s.logger.Error("Failed to save checkout session", zap.Error(err), zap.String("session_id", session.Key()))
		return err
	}
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, key("session", id.String())).Err()
}
