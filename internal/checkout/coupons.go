package checkout

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// MaxCoupons is how many codes the marketplace validates in one set
const MaxCoupons = 5

// CouponValidator revalidates a whole coupon set against the cart
type CouponValidator interface {
	ValidateCoupons(ctx context.Context, codes []string, items []domain.CartItem) (*domain.CouponValidation, error)
}

// NormalizeCouponCode trims and upper-cases a code the way the marketplace stores it
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponApplier keeps the applied coupon list in the marketplace's order.
// Discount amounts always come from the marketplace.
type CouponApplier struct {
	validator CouponValidator
	coupons   []domain.Coupon
}

// NewCouponApplier starts from the coupons already applied to a session
func NewCouponApplier(validator CouponValidator, applied []domain.Coupon) *CouponApplier {
	return &CouponApplier{validator: validator, coupons: append([]domain.Coupon(nil), applied...)}
}

// Coupons returns the applied coupons
func (a *CouponApplier) Coupons() []domain.Coupon {
	return append([]domain.Coupon(nil), a.coupons...)
}

// TotalDiscount sums the applied coupon amounts
func (a *CouponApplier) TotalDiscount() decimal.Decimal {
	return DiscountTotal(a.coupons)
}

// Codes returns the applied codes in order
func (a *CouponApplier) Codes() []string {
	codes := make([]string, 0, len(a.coupons))
	for _, c := range a.coupons {
		codes = append(codes, c.Code)
	}
	return codes
}

func (a *CouponApplier) has(code string) bool {
	for _, c := range a.coupons {
		if strings.EqualFold(c.Code, code) {
			return true
		}
	}
	return false
}

// Apply adds a code and revalidates the whole set. Empty codes, an empty cart,
// duplicates and an over-full set are rejected without calling the marketplace.
// On failure the list is unchanged.
func (a *CouponApplier) Apply(ctx context.Context, code string, items []domain.CartItem) error {
	code = NormalizeCouponCode(code)
	if code == "" {
		return couponError("Please enter a coupon code")
	}
	if len(items) == 0 {
		return couponError("Your cart is empty")
	}
	if a.has(code) {
		return &errors.ErrConflict{Message: "coupon " + code + " is already applied"}
	}
	if len(a.coupons) >= MaxCoupons {
		return couponError("At most 5 coupons can be combined")
	}

	return a.revalidate(ctx, append(a.Codes(), code), items)
}

// Remove drops a code and revalidates the remaining set, since amounts depend on each other.
// Removing the last coupon clears the list locally.
func (a *CouponApplier) Remove(ctx context.Context, code string, items []domain.CartItem) error {
	code = NormalizeCouponCode(code)
	if !a.has(code) {
		return &errors.ErrNotFound{Resource: "coupon", ID: code}
	}

	remaining := make([]string, 0, len(a.coupons))
	for _, c := range a.coupons {
		if !strings.EqualFold(c.Code, code) {
			remaining = append(remaining, c.Code)
		}
	}
	if len(remaining) == 0 {
		a.coupons = nil
		return nil
	}
	return a.revalidate(ctx, remaining, items)
}

// Revalidate re-checks the current set, e.g. after the cart changed
func (a *CouponApplier) Revalidate(ctx context.Context, items []domain.CartItem) error {
	if len(a.coupons) == 0 {
		return nil
	}
	return a.revalidate(ctx, a.Codes(), items)
}

func (a *CouponApplier) revalidate(ctx context.Context, codes []string, items []domain.CartItem) error {
	result, err := a.validator.ValidateCoupons(ctx, codes, items)
	if err != nil {
		var upstream *errors.ErrUpstream
		if stderrors.As(err, &upstream) {
			return &errors.ErrValidation{
				Message: upstream.MessageOr("Invalid coupon code"),
				Fields:  map[string]string{"coupon": upstream.MessageOr("Invalid coupon code")},
			}
		}
		return err
	}
	a.coupons = append([]domain.Coupon(nil), result.Coupons...)
	return nil
}

func couponError(msg string) error {
	return &errors.ErrValidation{Message: msg, Fields: map[string]string{"coupon": msg}}
}
