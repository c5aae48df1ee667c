package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

func TestCheckoutEventRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	repo := NewCheckoutEventRepository(db, zap.NewNop())
	sessionID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkout_events")).
		WithArgs(sqlmock.AnyArg(), sessionID, domain.EventCouponsChanged, []byte(`{"codes":["WELCOME10"]}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &domain.CheckoutEvent{
		SessionID: sessionID,
		EventType: domain.EventCouponsChanged,
		EventData: map[string]interface{}{"codes": []string{"WELCOME10"}},
	}
	if err := repo.Create(context.Background(), event); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rows := sqlmock.NewRows([]string{"id", "session_id", "event_type", "event_data", "created_at"}).
		AddRow(uuid.New().String(), sessionID.String(), "coupons_changed", []byte(`{"codes":["WELCOME10"]}`), time.Now()).
		AddRow(uuid.New().String(), sessionID.String(), "order_placed", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkout_events")).
		WithArgs(sessionID).
		WillReturnRows(rows)

	events, err := repo.GetBySessionID(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("GetBySessionID() error = %v", err)
	}
	if len(events) != 2 || events[1].EventType != domain.EventOrderPlaced {
		t.Fatalf("events = %+v", events)
	}
	if events[0].EventData["codes"] == nil || events[1].EventData != nil {
		t.Errorf("event data = %v / %v", events[0].EventData, events[1].EventData)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
