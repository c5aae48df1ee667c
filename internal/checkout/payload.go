package checkout

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

const minPhoneDigits = 8

// Form holds the contact and payment fields the buyer fills in
type Form struct {
	Name              string                `json:"name"`
	Phone             string                `json:"phone"`
	Address           string                `json:"address"`
	PaymentMethod     domain.PaymentMethod  `json:"payment_method"`
	PaymentMethodID   *int64                `json:"payment_method_id,omitempty"`
	PaymentMethodCode string                `json:"payment_method_code,omitempty"`
	ShippingMethod    domain.ShippingMethod `json:"shipping_method"`
}

// FieldErrors maps a form field to its message
type FieldErrors map[string]string

// Add keeps the first message per field
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns nil when empty, otherwise an *errors.ErrValidation carrying the fields
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &errors.ErrValidation{Message: "please correct the highlighted fields", Fields: f}
}

// PayloadInput is everything the payload builder reads
type PayloadInput struct {
	Form        Form
	Locations   LocationState
	Courier     *Reconciler
	Items       []domain.CartItem
	Coupons     []domain.Coupon
	ShippingFee *decimal.Decimal
}

// Subtotal is the sum of unit price times quantity
func Subtotal(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// DiscountTotal sums the marketplace-computed coupon amounts
func DiscountTotal(coupons []domain.Coupon) decimal.Decimal {
	total := decimal.Zero
	for _, c := range coupons {
		total = total.Add(c.Amount)
	}
	return total
}

// BuildOrderPayload validates the checkout and assembles the order request.
// It returns nil and the field errors when anything is missing. It has no side effects.
func BuildOrderPayload(in PayloadInput) (*domain.OrderPayload, FieldErrors) {
	errs := FieldErrors{}
	form := in.Form

	if strings.TrimSpace(form.Name) == "" {
		errs.Add("name", "Name is required")
	}
	if strings.TrimSpace(form.Phone) == "" {
		errs.Add("phone", "Phone is required")
	} else if countDigits(form.Phone) < minPhoneDigits {
		errs.Add("phone", "Phone must contain at least 8 digits")
	}

	loc := in.Locations
	if loc.Selected(domain.LocationCountry) == nil {
		errs.Add("country", "Country is required")
	}
	if loc.Selected(domain.LocationRegion) == nil {
		errs.Add("region", "Region is required")
	}
	if loc.Selected(domain.LocationCity) == nil {
		errs.Add("city", "City is required")
	}
	if len(loc.Options[domain.LocationDistrict]) > 0 && loc.Selected(domain.LocationDistrict) == nil {
		errs.Add("district", "District is required")
	}
	if strings.TrimSpace(form.Address) == "" {
		errs.Add("address", "Address is required")
	}

	if len(in.Items) == 0 {
		errs.Add("items", "Your cart is empty")
	}

	method := form.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCOD
	}
	if !method.IsValid() {
		errs.Add("payment_method", "Unsupported payment method")
	} else if method == domain.PaymentMethodGateway && form.PaymentMethodID == nil {
		errs.Add("payment_method", "Please choose a payment method")
	}

	subtotal := Subtotal(in.Items)
	shippingType := form.ShippingMethod
	if shippingType == "" {
		shippingType = domain.ShippingMethodTorod
	}

	var groupSelections []domain.GroupSelection
	var companyID string
	if shippingType == domain.ShippingMethodTorod {
		if in.Courier == nil {
			errs.Add("courier", MsgChooseCourier)
		} else {
			check := CourierCheck{
				Groups:        in.Courier.Groups(),
				Selections:    in.Courier.Selections(),
				PaymentMethod: method,
				OrderTotal:    subtotal,
			}
			if unified, ok := in.Courier.UnifiedPartner(); ok {
				check.Unified = &unified
			}
			if msg := ValidateCourierSelection(check); msg != "" {
				errs.Add("courier", msg)
			} else {
				groupSelections, companyID = courierAssignments(in.Courier)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	payload := &domain.OrderPayload{
		PaymentMethod:     method,
		PaymentMethodCode: form.PaymentMethodCode,
		Shipping: domain.ShippingBlock{
			Name:                   strings.TrimSpace(form.Name),
			Phone:                  strings.TrimSpace(form.Phone),
			Country:                loc.Selected(domain.LocationCountry).Name,
			Region:                 loc.Selected(domain.LocationRegion).Name,
			City:                   loc.Selected(domain.LocationCity).Name,
			Address:                strings.TrimSpace(form.Address),
			Type:                   shippingType,
			CustomerCityCode:       loc.Selected(domain.LocationCity).CityCode,
			TorodCountryID:         idOf(loc.Selected(domain.LocationCountry)),
			TorodRegionID:          idOf(loc.Selected(domain.LocationRegion)),
			TorodCityID:            idOf(loc.Selected(domain.LocationCity)),
			TorodShippingCompanyID: companyID,
			TorodGroupSelections:   groupSelections,
			DeferTorodShipment:     false,
		},
		DiscountAmount: DiscountTotal(in.Coupons),
		ShippingFee:    in.ShippingFee,
	}
	if method == domain.PaymentMethodGateway {
		payload.PaymentMethodID = form.PaymentMethodID
	}
	if d := loc.Selected(domain.LocationDistrict); d != nil {
		payload.Shipping.District = d.Name
		payload.Shipping.TorodDistrictID = idOf(d)
	}
	if payload.Shipping.CustomerCityCode == "" && payload.Shipping.TorodCityID != nil {
		payload.Shipping.CustomerCityCode = strconv.FormatInt(*payload.Shipping.TorodCityID, 10)
	}

	for _, it := range in.Items {
		payload.Items = append(payload.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	for i, c := range in.Coupons {
		if i == 0 {
			payload.CouponCode = c.Code
		}
		payload.CouponCodes = append(payload.CouponCodes, c.Code)
	}

	return payload, nil
}

// courierAssignments lists one entry per group with partners, in group order. The
// top-level company id is the unified partner, or the first group's choice.
func courierAssignments(r *Reconciler) ([]domain.GroupSelection, string) {
	selections := r.Selections()
	var out []domain.GroupSelection
	for _, g := range r.Groups() {
		if !g.HasPartners() {
			continue
		}
		out = append(out, domain.GroupSelection{
			GroupKey:               g.GroupKey,
			WarehouseCode:          g.WarehouseCode,
			TorodShippingCompanyID: selections[g.GroupKey],
		})
	}
	if unified, ok := r.UnifiedPartner(); ok {
		return out, unified.ID
	}
	if len(out) > 0 {
		return out, out[0].TorodShippingCompanyID
	}
	return out, ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func idOf(l *domain.Location) *int64 {
	if l == nil {
		return nil
	}
	id := l.ID
	return &id
}
