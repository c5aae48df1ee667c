package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/repository"
)

// NewRepositories creates the postgres-backed repositories. Session, Sequencer and PlacingLock
// are left for the caller to fill from redis or memory.
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		PendingOrder:   NewPendingOrderRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
		CheckoutEvent:  NewCheckoutEventRepository(db, logger),
	}
}
