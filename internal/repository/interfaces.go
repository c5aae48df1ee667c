package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/domain"
)

// PendingOrderRepository defines pending order data access methods
type PendingOrderRepository interface {
	Create(ctx context.Context, order *domain.PendingOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PendingOrder, error)
	// Take loads and deletes the pending order in one step; a second Take returns ErrNotFound
	Take(ctx context.Context, id uuid.UUID) (*domain.PendingOrder, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// CheckoutEventRepository defines checkout audit event data access methods
type CheckoutEventRepository interface {
	Create(ctx context.Context, event *domain.CheckoutEvent) error
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*domain.CheckoutEvent, error)
}

// SessionStore keeps checkout sessions between requests
type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*checkout.Session, error)
	Save(ctx context.Context, session *checkout.Session, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlacingLock guards a session against concurrent order submission
type PlacingLock interface {
	// Acquire returns false when another submission holds the lock
	Acquire(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sessionID uuid.UUID) error
	Held(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	PendingOrder   PendingOrderRepository
	IdempotencyKey IdempotencyKeyRepository
	CheckoutEvent  CheckoutEventRepository
	Session        SessionStore
	Sequencer      checkout.Sequencer
	PlacingLock    PlacingLock
}
