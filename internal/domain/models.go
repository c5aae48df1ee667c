package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of the buyer's cart as the checkout sees it
type CartItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// GroupItem is a cart line attributed to a shipment group
type GroupItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ShipmentGroup is the subset of cart items shipped from one seller warehouse,
// with the courier partners that can serve it for the selected city.
type ShipmentGroup struct {
	GroupKey      string      `json:"group_key"`
	WarehouseCode string      `json:"warehouse_code,omitempty"`
	Items         []GroupItem `json:"items"`
	Partners      PartnerList `json:"partners"`
}

// HasPartners reports whether a courier must be selected for this group
func (g ShipmentGroup) HasPartners() bool {
	return len(g.Partners) > 0
}

// FindPartner returns the partner with the given id offered for this group
func (g ShipmentGroup) FindPartner(id string) (CourierPartner, bool) {
	for _, p := range g.Partners {
		if p.ID == id {
			return p, true
		}
	}
	return CourierPartner{}, false
}

// PartnerCoverage maps a partner id to the shipment groups it services
type PartnerCoverage struct {
	ID        string   `json:"id"`
	GroupKeys []string `json:"group_keys"`
}

// Covers reports whether the partner services the group
func (c PartnerCoverage) Covers(groupKey string) bool {
	for _, k := range c.GroupKeys {
		if k == groupKey {
			return true
		}
	}
	return false
}

// CourierLookup is the answer of the checkout partner lookup for one city
type CourierLookup struct {
	Groups          []ShipmentGroup   `json:"groups"`
	CommonPartners  PartnerList       `json:"common_partners"`
	PartnerCoverage []PartnerCoverage `json:"partner_coverage"`
}

// GroupSelections maps group_key to the selected partner id
type GroupSelections map[string]string

// Clone returns an independent copy
func (s GroupSelections) Clone() GroupSelections {
	out := make(GroupSelections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Location is one entry of the country/region/city/district cascade
type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NameAr   string `json:"name_ar,omitempty"`
	CityCode string `json:"city_code,omitempty"`
}

// CouponMeta carries the coupon definition as returned by the marketplace
type CouponMeta struct {
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	SellerID      *int64          `json:"seller_id,omitempty"`
}

// Coupon is one applied coupon with the discount the marketplace computed for it
type Coupon struct {
	Code               string                     `json:"code"`
	Amount             decimal.Decimal            `json:"amount"`
	Meta               CouponMeta                 `json:"meta"`
	PerSellerDiscounts map[string]decimal.Decimal `json:"per_seller_discounts,omitempty"`
}

// CouponValidation is the marketplace breakdown for a whole coupon set
type CouponValidation struct {
	Coupons            []Coupon                   `json:"coupons"`
	TotalDiscount      decimal.Decimal            `json:"total_discount"`
	PerSellerDiscounts map[string]decimal.Decimal `json:"per_seller_discounts,omitempty"`
}

// PaymentMethodOption is one gateway payment method available for an amount
type PaymentMethodOption struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	NameEn        string          `json:"nameEn"`
	NameAr        string          `json:"nameAr"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	ImageURL      string          `json:"imageUrl,omitempty"`
}

// PendingOrder is a checkout payload parked until the buyer signs in
type PendingOrder struct {
	ID              uuid.UUID
	SessionID       *uuid.UUID
	Payload         *OrderPayload
	ResumeTokenHash string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// IsExpired reports whether the pending order can no longer be resumed
func (p *PendingOrder) IsExpired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// IdempotencyKey stores the result of an order placement keyed by the client's Idempotency-Key
type IdempotencyKey struct {
	Key         string
	SessionID   uuid.UUID
	RequestHash string
	Response    []byte
	CreatedAt   time.Time
}

// CheckoutEvent is an audit entry for a checkout session
type CheckoutEvent struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	EventType CheckoutEventType
	EventData map[string]interface{}
	CreatedAt time.Time
}

// OrderResult is the marketplace answer to order placement
type OrderResult struct {
	OrderID        int64  `json:"order_id,omitempty"`
	Status         string `json:"status,omitempty"`
	PaymentURL     string `json:"payment_url,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	TrackingURL    string `json:"tracking_url,omitempty"`
	LabelURL       string `json:"label_url,omitempty"`
}
