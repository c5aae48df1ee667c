package service

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/domain"
)

// CreateSessionRequest opens a checkout for the buyer's cart
type CreateSessionRequest struct {
	Items []CartItem `json:"items" binding:"required,min=1,dive"`
}

// UpdateCartRequest replaces the cart of an open session
type UpdateCartRequest struct {
	Items []CartItem `json:"items" binding:"required,min=1,dive"`
}

type CartItem struct {
	ProductID   int64           `json:"product_id" binding:"required,min=1"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func toCartItems(items []CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.CartItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out
}

// UpdateFormRequest patches the contact and payment fields; nil fields are left as they are
type UpdateFormRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	PaymentMethod     *string `json:"payment_method"`
	PaymentMethodID   *int64  `json:"payment_method_id" binding:"omitempty,min=1"`
	PaymentMethodCode *string `json:"payment_method_code"`
	ShippingMethod    *string `json:"shipping_method" binding:"omitempty,oneof=torod standard"`
}

type SelectLocationRequest struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

type SelectPartnerRequest struct {
	PartnerID string `json:"partner_id" binding:"required"`
}

type SetModeRequest struct {
	Advanced bool `json:"advanced"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type ResumeOrderRequest struct {
	ResumeToken string `json:"resume_token" binding:"required"`
}

// CourierView is the courier section of a session as the storefront renders it
type CourierView struct {
	Mode             string                  `json:"mode"`
	Groups           []domain.ShipmentGroup  `json:"groups"`
	SharedPartners   []domain.CourierPartner `json:"shared_partners"`
	Selections       domain.GroupSelections  `json:"selections"`
	UnifiedPartnerID string                  `json:"unified_partner_id,omitempty"`
	EditableGroups   []string                `json:"editable_groups"`
	Shipping         *checkout.ShippingTotal `json:"shipping,omitempty"`
}

// SessionView is the response for every session endpoint
type SessionView struct {
	ID             string                       `json:"id"`
	Currency       string                       `json:"currency"`
	Items          []domain.CartItem            `json:"items"`
	Form           checkout.Form                `json:"form"`
	Locations      checkout.LocationState       `json:"locations"`
	Courier        *CourierView                 `json:"courier,omitempty"`
	Coupons        []domain.Coupon              `json:"coupons"`
	PaymentMethods []domain.PaymentMethodOption `json:"payment_methods"`
	Subtotal       decimal.Decimal              `json:"subtotal"`
	Discount       decimal.Decimal              `json:"discount"`
	Total          decimal.Decimal              `json:"total"`
	Flags          checkout.Flags               `json:"flags"`
}

func newSessionView(s *checkout.Session, placing bool) *SessionView {
	v := &SessionView{
		ID:             s.Key(),
		Currency:       s.Currency,
		Items:          s.Items,
		Form:           s.Form,
		Locations:      s.Locations,
		Coupons:        s.Coupons,
		PaymentMethods: s.PaymentMethods,
		Subtotal:       s.Subtotal(),
		Discount:       checkout.DiscountTotal(s.Coupons),
		Total:          s.PayableTotal(),
		Flags:          s.Flags(placing),
	}
	if v.Coupons == nil {
		v.Coupons = []domain.Coupon{}
	}
	if v.PaymentMethods == nil {
		v.PaymentMethods = []domain.PaymentMethodOption{}
	}

	if r := s.Reconciler(); r != nil {
		cv := &CourierView{
			Mode:           r.Mode().Name(),
			Groups:         r.Groups(),
			SharedPartners: r.Shared().Partners,
			Selections:     r.Selections(),
			EditableGroups: r.EditableGroups(),
			Shipping:       s.Shipping(),
		}
		if u, ok := r.UnifiedPartner(); ok {
			cv.UnifiedPartnerID = u.ID
		}
		if cv.Groups == nil {
			cv.Groups = []domain.ShipmentGroup{}
		}
		if cv.SharedPartners == nil {
			cv.SharedPartners = []domain.CourierPartner{}
		}
		v.Courier = cv
	}
	return v
}

// PlaceOrderResult is either a placed order or a pending order waiting for login
type PlaceOrderResult struct {
	Order         *domain.OrderResult `json:"order,omitempty"`
	LoginRequired *LoginRequired      `json:"login_required,omitempty"`
}

// LoginRequired tells the storefront where to send the buyer and how to resume afterwards
type LoginRequired struct {
	PendingOrderID string `json:"pending_order_id"`
	ResumeToken    string `json:"resume_token"`
	Redirect       string `json:"redirect"`
}
