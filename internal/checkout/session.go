package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

// Session is the state of one buyer's checkout. It is re-derived whenever the city or cart changes.
type Session struct {
	ID             uuid.UUID                    `json:"id"`
	Currency       string                       `json:"currency"`
	Items          []domain.CartItem            `json:"items"`
	Form           Form                         `json:"form"`
	Locations      LocationState                `json:"locations"`
	Courier        CourierState                 `json:"courier"`
	CourierLoading bool                         `json:"courier_loading"`
	Coupons        []domain.Coupon              `json:"coupons"`
	PaymentMethods []domain.PaymentMethodOption `json:"payment_methods"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// NewSession creates an empty session for a cart
func NewSession(items []domain.CartItem, currency string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:       uuid.New(),
		Currency: currency,
		Items:    items,
		Form: Form{
			PaymentMethod:  domain.PaymentMethodCOD,
			ShippingMethod: domain.ShippingMethodTorod,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key is the scope used for sequence numbers and locks
func (s *Session) Key() string {
	return s.ID.String()
}

// Reconciler rebuilds the courier reconciler, nil before any lookup
func (s *Session) Reconciler() *Reconciler {
	if s.Courier.Lookup == nil {
		return nil
	}
	return RestoreReconciler(*s.Courier.Lookup, s.Courier.Selection)
}

// SaveReconciler stores the reconciler's state back into the session
func (s *Session) SaveReconciler(r *Reconciler) {
	s.Courier.Selection = r.State()
}

// Subtotal is the cart value before discounts and shipping
func (s *Session) Subtotal() decimal.Decimal {
	return Subtotal(s.Items)
}

// Shipping returns the courier cost for the current selection
func (s *Session) Shipping() *ShippingTotal {
	r := s.Reconciler()
	if r == nil || s.Form.ShippingMethod != domain.ShippingMethodTorod {
		return nil
	}
	common := ""
	if u, ok := r.UnifiedPartner(); ok {
		common = u.ID
	}
	total := ComputeShippingTotal(r.Groups(), r.Selections(), common)
	return &total
}

// PayableTotal is subtotal minus coupon discounts plus shipping, never below zero
func (s *Session) PayableTotal() decimal.Decimal {
	total := s.Subtotal().Sub(DiscountTotal(s.Coupons))
	if ship := s.Shipping(); ship != nil {
		total = total.Add(ship.Amount)
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// GroupItems converts the cart into the lookup item list
func (s *Session) GroupItems() []domain.GroupItem {
	out := make([]domain.GroupItem, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, domain.GroupItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// PayloadInput collects the builder input from the session
func (s *Session) PayloadInput() PayloadInput {
	in := PayloadInput{
		Form:      s.Form,
		Locations: s.Locations,
		Courier:   s.Reconciler(),
		Items:     s.Items,
		Coupons:   s.Coupons,
	}
	if ship := s.Shipping(); ship != nil && len(ship.Unpriced) == 0 {
		fee := ship.Amount
		in.ShippingFee = &fee
	}
	return in
}

// Flags are the derived booleans the storefront uses to enable controls
type Flags struct {
	CourierCount          int  `json:"courier_count"`
	HasCity               bool `json:"has_city"`
	DisableTorodShipping  bool `json:"disable_torod_shipping"`
	DisablePlaceOrder     bool `json:"disable_place_order"`
	ShowUnifiedSelect     bool `json:"show_unified_select"`
	IsPartialIntersection bool `json:"is_partial_intersection"`
}

// Flags derives the control state; placing comes from the place-order gate
func (s *Session) Flags(placing bool) Flags {
	f := Flags{HasCity: s.Locations.CityID() != 0}
	r := s.Reconciler()
	if r != nil {
		f.CourierCount = CourierCount(r.Groups())
		f.ShowUnifiedSelect = r.ShowUnifiedSelect()
		f.IsPartialIntersection = r.IsPartial()
	}
	f.DisableTorodShipping = ShouldDisableTorodShipping(f.CourierCount, f.HasCity, s.CourierLoading)
	f.DisablePlaceOrder = ShouldDisablePlaceOrder(s.Form.ShippingMethod, f.CourierCount, f.HasCity, s.CourierLoading, placing)
	return f
}
