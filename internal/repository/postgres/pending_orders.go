package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

const pendingOrderColumns = `id, session_id, payload, resume_token_hash, created_at, expires_at`

type pendingOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPendingOrderRepository creates a new pending order repository
func NewPendingOrderRepository(db *sql.DB, logger *zap.Logger) *pendingOrderRepository {
	return &pendingOrderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *pendingOrderRepository) Create(ctx context.Context, order *domain.PendingOrder) error {
	query := `
		INSERT INTO pending_orders (` + pendingOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	payloadJSON, err := json.Marshal(order.Payload)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.SessionID,
		payloadJSON,
		order.ResumeTokenHash,
		order.CreatedAt,
		order.ExpiresAt,
	)
	if err != nil {
		r.logger.Error("Failed to create pending order", zap.Error(err))
		return err
	}

	return nil
}

func (r *pendingOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PendingOrder, error) {
	query := `SELECT ` + pendingOrderColumns + ` FROM pending_orders WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// Take deletes the row and returns it, so concurrent resumes see it at most once
func (r *pendingOrderRepository) Take(ctx context.Context, id uuid.UUID) (*domain.PendingOrder, error) {
	query := `DELETE FROM pending_orders WHERE id = $1 RETURNING ` + pendingOrderColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *pendingOrderRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_orders WHERE expires_at < $1`, now)
	if err != nil {
		r.logger.Error("Failed to delete expired pending orders", zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}

func (r *pendingOrderRepository) scanOne(row *sql.Row, id uuid.UUID) (*domain.PendingOrder, error) {
	var order domain.PendingOrder
	var sessionID uuid.NullUUID
	var payloadJSON []byte

	err := row.Scan(
		&order.ID,
		&sessionID,
		&payloadJSON,
		&order.ResumeTokenHash,
		&order.CreatedAt,
		&order.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "pending_order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to read pending order", zap.Error(err), zap.String("id", id.String()))
		return nil, err
	}

	if sessionID.Valid {
		order.SessionID = &sessionID.UUID
	}
	if len(payloadJSON) > 0 {
		order.Payload = &domain.OrderPayload{}
		if err := json.Unmarshal(payloadJSON, order.Payload); err != nil {
			return nil, err
		}
	}

	return &order, nil
}
