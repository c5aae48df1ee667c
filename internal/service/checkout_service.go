package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/internal/metrics"
	"github.com/jafarshop/checkoutapi/internal/repository"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// Marketplace is the part of the marketplace API the checkout calls
type Marketplace interface {
	checkout.PartnerLookup
	checkout.CouponValidator
	checkout.LocationFetcher
	PaymentMethods(ctx context.Context, amount decimal.Decimal, currency string) ([]domain.PaymentMethodOption, error)
	PlaceOrder(ctx context.Context, payload *domain.OrderPayload) (*domain.OrderResult, error)
}

// CheckoutService runs the checkout session: cart, form, location cascade, couriers,
// coupons, payment methods and order placement.
type CheckoutService struct {
	repos    *repository.Repositories
	market   Marketplace
	cascade  *checkout.LocationCascade
	couriers *checkout.CourierResolver
	cfg      config.CheckoutConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, market Marketplace, cfg config.CheckoutConfig, logger *zap.Logger) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "SAR"
	}
	return &CheckoutService{
		repos:    repos,
		market:   market,
		cascade:  checkout.NewLocationCascade(market, repos.Sequencer, logger),
		couriers: checkout.NewCourierResolver(market),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *CheckoutService) load(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	return s.repos.Session.Get(ctx, id)
}

func (s *CheckoutService) save(ctx context.Context, session *checkout.Session) error {
	session.UpdatedAt = s.now().UTC()
	return s.repos.Session.Save(ctx, session, s.cfg.SessionTTL)
}

func (s *CheckoutService) view(ctx context.Context, session *checkout.Session) *SessionView {
	placing, err := s.repos.PlacingLock.Held(ctx, session.ID)
	if err != nil {
		s.logger.Warn("Failed to read placing lock", zap.Error(err), zap.String("session_id", session.Key()))
	}
	return newSessionView(session, placing)
}

func (s *CheckoutService) recordEvent(ctx context.Context, sessionID uuid.UUID, eventType domain.CheckoutEventType, data map[string]interface{}) {
	event := &domain.CheckoutEvent{SessionID: sessionID, EventType: eventType, EventData: data}
	if err := s.repos.CheckoutEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record checkout event", zap.Error(err), zap.String("event_type", string(eventType)))
	}
}

// CreateSession opens a checkout for the cart and loads the country list
func (s *CheckoutService) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionView, error) {
	session := checkout.NewSession(toCartItems(req.Items), s.cfg.Currency)

	ticket, err := s.cascade.Start(ctx, session.Key(), &session.Locations)
	if err != nil {
		return nil, err
	}
	if _, err := s.cascade.Apply(ctx, session.Key(), &session.Locations, ticket, s.cascade.Fetch(ctx, ticket)); err != nil {
		return nil, err
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("Checkout session created",
		zap.String("session_id", session.Key()),
		zap.Int("item_count", len(session.Items)),
	)
	return s.view(ctx, session), nil
}

// GetSession returns the session with its derived totals and flags
func (s *CheckoutService) GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, session), nil
}

// UpdateCart replaces the cart. Courier groups depend on the items so they are fetched
// again for the selected city, and applied coupons are revalidated.
func (s *CheckoutService) UpdateCart(ctx context.Context, id uuid.UUID, req UpdateCartRequest) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Items = toCartItems(req.Items)
	session.PaymentMethods = nil

	if len(session.Coupons) > 0 {
		applier := checkout.NewCouponApplier(s.market, session.Coupons)
		before := applier.Codes()
		if err := applier.Revalidate(ctx, session.Items); err != nil {
			var validation *errors.ErrValidation
			if !stderrors.As(err, &validation) {
				return nil, err
			}
			// the set no longer applies to this cart
			s.logger.Info("Dropping coupons after cart change", zap.Strings("codes", before), zap.Error(err))
			session.Coupons = nil
		} else {
			session.Coupons = applier.Coupons()
		}
		s.recordEvent(ctx, session.ID, domain.EventCouponsChanged, map[string]interface{}{
			"reason": "cart_updated",
			"before": before,
			"after":  couponCodes(session.Coupons),
		})
	}

	session.Courier.Reset()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	session, err = s.resolveCouriers(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, session), nil
}

// UpdateForm patches the contact and payment fields
func (s *CheckoutService) UpdateForm(ctx context.Context, id uuid.UUID, req UpdateFormRequest) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	form := &session.Form
	if req.Name != nil {
		form.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		form.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		form.Address = strings.TrimSpace(*req.Address)
	}
	if req.PaymentMethod != nil {
		method := domain.ParsePaymentMethod(*req.PaymentMethod)
		if !method.IsValid() {
			return nil, &errors.ErrValidation{Fields: map[string]string{"payment_method": "Unsupported payment method"}}
		}
		form.PaymentMethod = method
		if method.IsCOD() {
			form.PaymentMethodID = nil
			form.PaymentMethodCode = ""
		}
	}
	if req.PaymentMethodID != nil {
		form.PaymentMethodID = req.PaymentMethodID
		form.PaymentMethodCode = ""
		for _, m := range session.PaymentMethods {
			if m.ID == *req.PaymentMethodID {
				form.PaymentMethodCode = m.Code
			}
		}
	}
	if req.PaymentMethodCode != nil {
		form.PaymentMethodCode = strings.TrimSpace(*req.PaymentMethodCode)
	}
	if req.ShippingMethod != nil {
		switch m := domain.ShippingMethod(strings.ToLower(strings.TrimSpace(*req.ShippingMethod))); m {
		case domain.ShippingMethodTorod, domain.ShippingMethodStandard:
			form.ShippingMethod = m
		default:
			return nil, &errors.ErrValidation{Fields: map[string]string{"shipping_method": "Unsupported shipping method"}}
		}
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(ctx, session), nil
}

// SelectLocation records a cascade choice and loads the next level. The selection is saved
// before the lookup so a newer request for the same level wins; a result is applied only
// while its sequence number is the latest and its parent is still selected.
func (s *CheckoutService) SelectLocation(ctx context.Context, id uuid.UUID, level domain.LocationLevel, locationID int64) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket, err := s.cascade.Select(ctx, session.Key(), &session.Locations, level, locationID)
	if err != nil {
		return nil, err
	}
	if session.Locations.CityID() != session.Courier.CityID {
		session.Courier.Reset()
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	if ticket != nil {
		options := s.cascade.Fetch(ctx, ticket)

		// reload: another request may have changed the session while we were fetching
		session, err = s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		applied, err := s.cascade.Apply(ctx, session.Key(), &session.Locations, ticket, options)
		if err != nil {
			return nil, err
		}
		if !applied {
			metrics.StaleResults.WithLabelValues(string(ticket.Level)).Inc()
			return s.view(ctx, session), nil
		}
	}

	if ticket != nil {
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}

	if level == domain.LocationCity {
		session, err = s.resolveCouriers(ctx, session)
		if err != nil {
			return nil, err
		}
	}
	return s.view(ctx, session), nil
}

// ResolveCouriers fetches courier groups for the selected city; a repeat call for the same city is a no-op
func (s *CheckoutService) ResolveCouriers(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Locations.CityID() == 0 {
		return nil, &errors.ErrValidation{Fields: map[string]string{"city": "City is required"}}
	}

	session, err = s.resolveCouriers(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, session), nil
}

// resolveCouriers runs the partner lookup for the session's city and returns the session as
// stored afterwards. The session is saved with CourierLoading set before the call; the result
// is applied to a freshly loaded copy, and only while the same city and cart are selected, so
// edits made during the lookup are kept. Lookup failures leave the session without groups
// (shipping through the provider is then disabled) and are only logged.
func (s *CheckoutService) resolveCouriers(ctx context.Context, session *checkout.Session) (*checkout.Session, error) {
	cityID := session.Locations.CityID()
	if cityID == 0 {
		return session, nil
	}
	if !checkout.ShouldFetchCourierPartners(session.Courier.CityID, cityID) {
		metrics.CourierLookups.WithLabelValues("skipped").Inc()
		return session, nil
	}

	// the backend applies discounts itself; order_total is the cart value before coupons
	subtotal := session.Subtotal()
	req := checkout.CourierRequest{
		CustomerCityID: cityID,
		OrderTotal:     &subtotal,
		Items:          session.GroupItems(),
	}

	session.CourierLoading = true
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	state := session.Courier
	_, lookupErr := s.couriers.Resolve(ctx, &state, req)

	// the loading flag must be cleared even when the request was cancelled mid-lookup
	ctx = context.WithoutCancel(ctx)
	latest, err := s.load(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	latest.CourierLoading = false

	switch {
	case latest.Locations.CityID() != cityID || !sameCart(latest, req):
		metrics.StaleResults.WithLabelValues("courier").Inc()
		s.logger.Info("Discarding courier lookup for a changed city or cart",
			zap.String("session_id", latest.Key()),
			zap.Int64("city_id", cityID),
			zap.Int64("current_city_id", latest.Locations.CityID()),
		)
	case latest.Courier.CityID == cityID:
		// a concurrent lookup for the same city was applied first; keep its selections
		metrics.CourierLookups.WithLabelValues("skipped").Inc()
	case lookupErr != nil:
		metrics.CourierLookups.WithLabelValues("failed").Inc()
		s.logger.Warn("Courier partner lookup failed",
			zap.Error(lookupErr),
			zap.String("session_id", latest.Key()),
			zap.Int64("city_id", cityID),
		)
		latest.Courier = state
		latest.PaymentMethods = nil
	default:
		metrics.CourierLookups.WithLabelValues("fetched").Inc()
		metrics.SelectionModes.WithLabelValues(state.Selection.Mode).Inc()
		s.logger.Info("Courier partners resolved",
			zap.String("session_id", latest.Key()),
			zap.Int64("city_id", cityID),
			zap.Int("groups", len(state.Lookup.Groups)),
			zap.String("mode", state.Selection.Mode),
		)
		latest.Courier = state
		latest.PaymentMethods = nil
		s.warnUnpriced(latest)
	}

	if err := s.save(ctx, latest); err != nil {
		return nil, err
	}
	return latest, nil
}

// sameCart reports whether the session still holds the cart the lookup was made for
func sameCart(session *checkout.Session, req checkout.CourierRequest) bool {
	if req.OrderTotal == nil || !session.Subtotal().Equal(*req.OrderTotal) {
		return false
	}
	items := session.GroupItems()
	if len(items) != len(req.Items) {
		return false
	}
	for i := range items {
		if items[i] != req.Items[i] {
			return false
		}
	}
	return true
}

// warnUnpriced logs groups whose selected partner has no rate. Such groups add nothing to the
// shipping total and the payload then carries no shipping fee.
func (s *CheckoutService) warnUnpriced(session *checkout.Session) {
	ship := session.Shipping()
	if ship == nil || len(ship.Unpriced) == 0 {
		return
	}
	s.logger.Warn("Selected courier has no rate",
		zap.String("session_id", session.Key()),
		zap.Strings("group_keys", ship.Unpriced),
	)
}

func (s *CheckoutService) withReconciler(ctx context.Context, id uuid.UUID, fn func(r *checkout.Reconciler) error) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	r := session.Reconciler()
	if r == nil {
		return nil, &errors.ErrInvalidSelection{Message: "select a city to load couriers first"}
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	session.SaveReconciler(r)
	session.PaymentMethods = nil
	s.warnUnpriced(session)

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(ctx, session), nil
}

// SelectUnifiedPartner applies one shared partner to every group it covers
func (s *CheckoutService) SelectUnifiedPartner(ctx context.Context, id uuid.UUID, partnerID string) (*SessionView, error) {
	return s.withReconciler(ctx, id, func(r *checkout.Reconciler) error {
		return r.SelectUnified(partnerID)
	})
}

// SelectGroupPartner picks the partner for one shipment group
func (s *CheckoutService) SelectGroupPartner(ctx context.Context, id uuid.UUID, groupKey, partnerID string) (*SessionView, error) {
	return s.withReconciler(ctx, id, func(r *checkout.Reconciler) error {
		return r.SelectGroup(groupKey, partnerID)
	})
}

// SetAdvancedMode toggles per-group selection
func (s *CheckoutService) SetAdvancedMode(ctx context.Context, id uuid.UUID, advanced bool) (*SessionView, error) {
	return s.withReconciler(ctx, id, func(r *checkout.Reconciler) error {
		return r.SetAdvanced(advanced)
	})
}

// LoadPaymentMethods fetches the gateway methods for the payable total.
// A selected method that is no longer offered is cleared.
func (s *CheckoutService) LoadPaymentMethods(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	methods, err := s.market.PaymentMethods(ctx, session.PayableTotal(), session.Currency)
	if err != nil {
		return nil, err
	}
	session.PaymentMethods = methods

	if selected := session.Form.PaymentMethodID; selected != nil {
		found := false
		for _, m := range methods {
			if m.ID == *selected {
				found = true
				session.Form.PaymentMethodCode = m.Code
				break
			}
		}
		if !found {
			s.logger.Info("Selected payment method no longer offered",
				zap.String("session_id", session.Key()),
				zap.Int64("payment_method_id", *selected),
			)
			session.Form.PaymentMethodID = nil
			session.Form.PaymentMethodCode = ""
		}
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(ctx, session), nil
}

// ApplyCoupon adds a code and revalidates the whole set with the marketplace
func (s *CheckoutService) ApplyCoupon(ctx context.Context, id uuid.UUID, code string) (*SessionView, error) {
	return s.changeCoupons(ctx, id, "applied", code, func(a *checkout.CouponApplier, items []domain.CartItem) error {
		return a.Apply(ctx, code, items)
	})
}

// RemoveCoupon drops a code and revalidates the rest
func (s *CheckoutService) RemoveCoupon(ctx context.Context, id uuid.UUID, code string) (*SessionView, error) {
	return s.changeCoupons(ctx, id, "removed", code, func(a *checkout.CouponApplier, items []domain.CartItem) error {
		return a.Remove(ctx, code, items)
	})
}

func (s *CheckoutService) changeCoupons(ctx context.Context, id uuid.UUID, action, code string, fn func(*checkout.CouponApplier, []domain.CartItem) error) (*SessionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	applier := checkout.NewCouponApplier(s.market, session.Coupons)
	if err := fn(applier, session.Items); err != nil {
		return nil, err
	}
	session.Coupons = applier.Coupons()
	session.PaymentMethods = nil

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, session.ID, domain.EventCouponsChanged, map[string]interface{}{
		"action": action,
		"code":   checkout.NormalizeCouponCode(code),
		"after":  applier.Codes(),
		"total":  applier.TotalDiscount().String(),
	})
	return s.view(ctx, session), nil
}

func couponCodes(coupons []domain.Coupon) []string {
	codes := make([]string, 0, len(coupons))
	for _, c := range coupons {
		codes = append(codes, c.Code)
	}
	return codes
}
