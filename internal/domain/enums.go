package domain

import "strings"

// PaymentMethod is the payment path chosen at checkout
type PaymentMethod string

const (
	// COD - cash on delivery, collected by the courier
	PaymentMethodCOD PaymentMethod = "COD"
	// MYFATOORAH - card/wallet payment through the gateway, redirect via payment_url
	PaymentMethodGateway PaymentMethod = "MYFATOORAH"
)

// IsValid checks if the payment method is known
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCOD, PaymentMethodGateway:
		return true
	default:
		return false
	}
}

// IsCOD reports whether the courier collects payment
func (p PaymentMethod) IsCOD() bool {
	return p == PaymentMethodCOD
}

// ParsePaymentMethod accepts the spellings the storefront sends ("cod", "myfatoorah", "gateway")
func ParsePaymentMethod(s string) PaymentMethod {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COD", "CASH", "CASH_ON_DELIVERY":
		return PaymentMethodCOD
	case "MYFATOORAH", "GATEWAY", "CARD":
		return PaymentMethodGateway
	default:
		return PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	}
}

// ShippingMethod is the delivery path. Only torod routes through courier partners.
type ShippingMethod string

const (
	ShippingMethodTorod    ShippingMethod = "torod"
	ShippingMethodStandard ShippingMethod = "standard"
)

// LocationLevel is one step of the shipping-provider location cascade
type LocationLevel string

const (
	LocationCountry  LocationLevel = "country"
	LocationRegion   LocationLevel = "region"
	LocationCity     LocationLevel = "city"
	LocationDistrict LocationLevel = "district"
)

// LocationLevels lists the cascade from root to leaf
var LocationLevels = []LocationLevel{LocationCountry, LocationRegion, LocationCity, LocationDistrict}

// IsValid checks if the level is part of the cascade
func (l LocationLevel) IsValid() bool {
	return l.Depth() >= 0
}

// Depth returns the position in the cascade, or -1 for unknown levels
func (l LocationLevel) Depth() int {
	for i, lvl := range LocationLevels {
		if lvl == l {
			return i
		}
	}
	return -1
}

// Child returns the next level down, or "" for districts
func (l LocationLevel) Child() LocationLevel {
	d := l.Depth()
	if d < 0 || d+1 >= len(LocationLevels) {
		return ""
	}
	return LocationLevels[d+1]
}

// CheckoutEventType names an audit event written by the checkout service
type CheckoutEventType string

const (
	EventCouponsChanged     CheckoutEventType = "coupons_changed"
	EventPendingOrderSaved  CheckoutEventType = "pending_order_saved"
	EventPendingOrderResume CheckoutEventType = "pending_order_resumed"
	EventOrderPlaced        CheckoutEventType = "order_placed"
	EventOrderFailed        CheckoutEventType = "order_failed"
)
