package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/marketplace"
	"github.com/jafarshop/checkoutapi/internal/metrics"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// LoginRedirect is where the storefront sends a buyer who must sign in before ordering
const LoginRedirect = "/login?redirect=/checkout"

const placeOrderFallback = "We could not place your order, please try again"

// IdempotencyRequest carries the Idempotency-Key of a place-order call and the hash of its request
type IdempotencyRequest struct {
	Key         string
	RequestHash string
}

// PreviewPayload builds the order payload without submitting it
func (s *CheckoutService) PreviewPayload(ctx context.Context, id uuid.UUID) (*domain.OrderPayload, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, fieldErrs := checkout.BuildOrderPayload(session.PayloadInput())
	if err := fieldErrs.Err(); err != nil {
		return nil, err
	}
	return payload, nil
}

// PlaceOrder validates the session and submits the order. Without a buyer token the payload is
// parked as a pending order and the result asks for login. Concurrent submissions for the same
// session are rejected with ErrConflict.
func (s *CheckoutService) PlaceOrder(ctx context.Context, id uuid.UUID, idem IdempotencyRequest) (*PlaceOrderResult, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, fieldErrs := checkout.BuildOrderPayload(session.PayloadInput())
	if err := fieldErrs.Err(); err != nil {
		metrics.OrdersPlaced.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if marketplace.BearerToken(ctx) == "" {
		login, err := s.savePendingOrder(ctx, &session.ID, payload)
		if err != nil {
			return nil, err
		}
		metrics.OrdersPlaced.WithLabelValues("pending_login").Inc()
		return &PlaceOrderResult{LoginRequired: login}, nil
	}

	acquired, err := s.repos.PlacingLock.Acquire(ctx, session.ID, s.cfg.PlacingLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire placing lock: %w", err)
	}
	if !acquired {
		return nil, &errors.ErrConflict{Message: "this order is already being placed"}
	}
	defer func() {
		if err := s.repos.PlacingLock.Release(context.WithoutCancel(ctx), session.ID); err != nil {
			s.logger.Warn("Failed to release placing lock", zap.Error(err), zap.String("session_id", session.Key()))
		}
	}()

	result, err := s.submit(ctx, session.ID, payload)
	if err != nil {
		return nil, err
	}

	if idem.Key != "" {
		s.storeIdempotentResult(ctx, session.ID, idem, result)
	}
	return result, nil
}

// ResumePendingOrder submits a parked order once the buyer has signed in. The resume token must
// match; the pending order is removed before submission so it can be used only once.
func (s *CheckoutService) ResumePendingOrder(ctx context.Context, id uuid.UUID, resumeToken string) (*PlaceOrderResult, error) {
	if marketplace.BearerToken(ctx) == "" {
		return nil, &errors.ErrUnauthorized{Message: "sign in to place the order"}
	}

	pending, err := s.repos.PendingOrder.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(pending.ResumeTokenHash), []byte(resumeToken)) != nil {
		s.logger.Warn("Pending order resume with wrong token", zap.String("pending_order_id", id.String()))
		return nil, &errors.ErrUnauthorized{Message: "invalid resume token"}
	}

	pending, err = s.repos.PendingOrder.Take(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending.IsExpired(s.now()) {
		return nil, &errors.ErrNotFound{Resource: "pending_order", ID: id.String()}
	}
	if pending.Payload == nil {
		return nil, fmt.Errorf("pending order %s has no payload", id)
	}

	sessionID := uuid.Nil
	if pending.SessionID != nil {
		sessionID = *pending.SessionID
	}
	s.recordEvent(ctx, sessionID, domain.EventPendingOrderResume, map[string]interface{}{
		"pending_order_id": id.String(),
	})

	return s.submit(ctx, sessionID, pending.Payload)
}

// submit sends the payload to the marketplace. It is never retried.
func (s *CheckoutService) submit(ctx context.Context, sessionID uuid.UUID, payload *domain.OrderPayload) (*PlaceOrderResult, error) {
	order, err := s.market.PlaceOrder(ctx, payload)
	if err != nil {
		var upstream *errors.ErrUpstream
		if stderrors.As(err, &upstream) {
			metrics.OrdersPlaced.WithLabelValues("failed").Inc()
			s.recordEvent(ctx, sessionID, domain.EventOrderFailed, map[string]interface{}{
				"status":  upstream.StatusCode,
				"message": upstream.Message,
			})
			return nil, &errors.ErrUpstream{
				StatusCode: upstream.StatusCode,
				Message:    checkout.UpstreamMessage(upstream, placeOrderFallback),
				Issues:     upstream.Issues,
			}
		}
		var unauthorized *errors.ErrUnauthorized
		if !stderrors.As(err, &unauthorized) {
			metrics.OrdersPlaced.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues("placed").Inc()
	s.recordEvent(ctx, sessionID, domain.EventOrderPlaced, map[string]interface{}{
		"order_id":       order.OrderID,
		"payment_method": string(payload.PaymentMethod),
		"gateway":        order.PaymentURL != "",
	})
	s.logger.Info("Order placed",
		zap.String("session_id", sessionID.String()),
		zap.Int64("order_id", order.OrderID),
		zap.String("payment_method", string(payload.PaymentMethod)),
	)
	return &PlaceOrderResult{Order: order}, nil
}

func (s *CheckoutService) savePendingOrder(ctx context.Context, sessionID *uuid.UUID, payload *domain.OrderPayload) (*LoginRequired, error) {
	token, err := newResumeToken()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash resume token: %w", err)
	}

	now := s.now()
	pending := &domain.PendingOrder{
		SessionID:       sessionID,
		Payload:         payload,
		ResumeTokenHash: string(hash),
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.cfg.PendingOrderTTL),
	}
	if err := s.repos.PendingOrder.Create(ctx, pending); err != nil {
		return nil, err
	}

	if sessionID != nil {
		s.recordEvent(ctx, *sessionID, domain.EventPendingOrderSaved, map[string]interface{}{
			"pending_order_id": pending.ID.String(),
		})
	}
	s.logger.Info("Saved pending order until login", zap.String("pending_order_id", pending.ID.String()))

	return &LoginRequired{
		PendingOrderID: pending.ID.String(),
		ResumeToken:    token,
		Redirect:       LoginRedirect,
	}, nil
}

func (s *CheckoutService) storeIdempotentResult(ctx context.Context, sessionID uuid.UUID, idem IdempotencyRequest, result *PlaceOrderResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("Failed to encode order result for idempotency", zap.Error(err))
		return
	}
	key := &domain.IdempotencyKey{
		Key:         idem.Key,
		SessionID:   sessionID,
		RequestHash: idem.RequestHash,
		Response:    raw,
	}
	if err := s.repos.IdempotencyKey.Create(ctx, key); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.Error(err), zap.String("key", idem.Key))
	}
}

// PurgeExpiredPendingOrders removes pending orders past their resume window
func (s *CheckoutService) PurgeExpiredPendingOrders(ctx context.Context) (int64, error) {
	n, err := s.repos.PendingOrder.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Purged expired pending orders", zap.Int64("count", n))
	}
	return n, nil
}

func newResumeToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate resume token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
