package checkout

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// fakeCouponValidator discounts 10 per code and records each call
type fakeCouponValidator struct {
	calls [][]string
	err   error
}

func (f *fakeCouponValidator) ValidateCoupons(ctx context.Context, codes []string, items []domain.CartItem) (*domain.CouponValidation, error) {
	f.calls = append(f.calls, append([]string(nil), codes...))
	if f.err != nil {
		return nil, f.err
	}
	out := &domain.CouponValidation{TotalDiscount: decimal.Zero}
	for _, c := range codes {
		out.Coupons = append(out.Coupons, domain.Coupon{Code: c, Amount: decimal.NewFromInt(10)})
		out.TotalDiscount = out.TotalDiscount.Add(decimal.NewFromInt(10))
	}
	return out, nil
}

func TestCouponApplier_DuplicateRejectedWithoutNetwork(t *testing.T) {
	validator := &fakeCouponValidator{}
	applier := NewCouponApplier(validator, []domain.Coupon{{Code: "WELCOME10", Amount: decimal.NewFromInt(10)}})

	err := applier.Apply(context.Background(), " welcome10 ", twoItemCart())

	var conflict *errors.ErrConflict
	if !stderrors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(validator.calls) != 0 {
		t.Fatalf("validator called %d times, want 0", len(validator.calls))
	}
}

func TestCouponApplier_ApplyRevalidatesWholeSet(t *testing.T) {
	validator := &fakeCouponValidator{}
	applier := NewCouponApplier(validator, nil)
	ctx := context.Background()

	if err := applier.Apply(ctx, "welcome10", twoItemCart()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := applier.Apply(ctx, "oud5", twoItemCart()); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := [][]string{{"WELCOME10"}, {"WELCOME10", "OUD5"}}
	if !reflect.DeepEqual(validator.calls, want) {
		t.Fatalf("calls = %v, want %v", validator.calls, want)
	}
	if !applier.TotalDiscount().Equal(decimal.NewFromInt(20)) {
		t.Fatalf("total discount = %s, want 20", applier.TotalDiscount())
	}
}

func TestCouponApplier_RejectsLocally(t *testing.T) {
	full := make([]domain.Coupon, MaxCoupons)
	for i := range full {
		full[i] = domain.Coupon{Code: string(rune('A' + i))}
	}

	tests := []struct {
		name    string
		applied []domain.Coupon
		code    string
		items   []domain.CartItem
	}{
		{name: "empty code", code: "   ", items: twoItemCart()},
		{name: "empty cart", code: "SAVE", items: nil},
		{name: "too many coupons", applied: full, code: "SAVE", items: twoItemCart()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &fakeCouponValidator{}
			applier := NewCouponApplier(validator, tt.applied)

			err := applier.Apply(context.Background(), tt.code, tt.items)

			var validation *errors.ErrValidation
			if !stderrors.As(err, &validation) || validation.Fields["coupon"] == "" {
				t.Fatalf("expected coupon validation error, got %v", err)
			}
			if len(validator.calls) != 0 {
				t.Fatal("validator must not be called")
			}
		})
	}
}

func TestCouponApplier_RemoveRevalidatesRemaining(t *testing.T) {
	validator := &fakeCouponValidator{}
	applier := NewCouponApplier(validator, []domain.Coupon{{Code: "A1"}, {Code: "B2"}, {Code: "C3"}})

	if err := applier.Remove(context.Background(), "b2", twoItemCart()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !reflect.DeepEqual(validator.calls, [][]string{{"A1", "C3"}}) {
		t.Fatalf("calls = %v", validator.calls)
	}
	if !reflect.DeepEqual(applier.Codes(), []string{"A1", "C3"}) {
		t.Fatalf("codes = %v", applier.Codes())
	}
}

func TestCouponApplier_RemoveLastClearsLocally(t *testing.T) {
	validator := &fakeCouponValidator{}
	applier := NewCouponApplier(validator, []domain.Coupon{{Code: "A1"}})

	if err := applier.Remove(context.Background(), "A1", twoItemCart()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(applier.Coupons()) != 0 || len(validator.calls) != 0 {
		t.Fatalf("coupons=%v calls=%v", applier.Coupons(), validator.calls)
	}
}

func TestCouponApplier_BackendErrorKeepsList(t *testing.T) {
	validator := &fakeCouponValidator{err: &errors.ErrUpstream{StatusCode: 400, Message: "Coupon OUD5 has expired"}}
	applier := NewCouponApplier(validator, []domain.Coupon{{Code: "A1", Amount: decimal.NewFromInt(10)}})

	err := applier.Apply(context.Background(), "OUD5", twoItemCart())

	var validation *errors.ErrValidation
	if !stderrors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if validation.Message != "Coupon OUD5 has expired" {
		t.Fatalf("message = %q", validation.Message)
	}
	if !reflect.DeepEqual(applier.Codes(), []string{"A1"}) {
		t.Fatalf("codes = %v, want [A1]", applier.Codes())
	}
}
