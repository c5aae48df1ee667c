package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

type idempotencyKeyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIdempotencyKeyRepository creates a new idempotency key repository
func NewIdempotencyKeyRepository(db *sql.DB, logger *zap.Logger) *idempotencyKeyRepository {
	return &idempotencyKeyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByKey returns nil, nil when the key has not been used
func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	query := `
		SELECT key, session_id, request_hash, response, created_at
		FROM idempotency_keys
		WHERE key = $1
	`

	var idempotencyKey domain.IdempotencyKey

	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&idempotencyKey.Key,
		&idempotencyKey.SessionID,
		&idempotencyKey.RequestHash,
		&idempotencyKey.Response,
		&idempotencyKey.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get idempotency key", zap.Error(err))
		return nil, err
	}

	return &idempotencyKey, nil
}

// Create stores the key; a key written concurrently by another request is an ErrConflict
func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	query := `
		INSERT INTO idempotency_keys (key, session_id, request_hash, response, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO NOTHING
	`

	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, query,
		key.Key,
		key.SessionID,
		key.RequestHash,
		key.Response,
		key.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create idempotency key", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrConflict{Message: "idempotency key already used"}
	}

	return nil
}
