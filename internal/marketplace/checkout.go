package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// CheckoutCourierPartners asks which courier partners serve each warehouse of the cart for a city
func (c *Client) CheckoutCourierPartners(ctx context.Context, req checkout.CourierRequest) (*domain.CourierLookup, error) {
	var out domain.CourierLookup
	if err := c.do(ctx, http.MethodPost, "/orders/torod/partners/checkout", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type couponItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type couponValidateRequest struct {
	Codes []string     `json:"codes"`
	Items []couponItem `json:"items"`
}

type couponValidateResponse struct {
	Coupons []struct {
		Coupon struct {
			Code          string          `json:"code"`
			DiscountType  string          `json:"discount_type"`
			DiscountValue decimal.Decimal `json:"discount_value"`
			SellerID      *int64          `json:"seller_id"`
		} `json:"coupon"`
		DiscountAmount     decimal.Decimal            `json:"discount_amount"`
		PerSellerDiscounts map[string]decimal.Decimal `json:"per_seller_discounts"`
	} `json:"coupons"`
	TotalDiscount      decimal.Decimal            `json:"total_discount"`
	PerSellerDiscounts map[string]decimal.Decimal `json:"per_seller_discounts"`
}

// ValidateCoupons revalidates the whole coupon set against the cart
func (c *Client) ValidateCoupons(ctx context.Context, codes []string, items []domain.CartItem) (*domain.CouponValidation, error) {
	body := couponValidateRequest{Codes: codes}
	for _, it := range items {
		body.Items = append(body.Items, couponItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	var resp couponValidateResponse
	if err := c.do(ctx, http.MethodPost, "/coupons/validate", nil, body, &resp); err != nil {
		return nil, err
	}

	out := &domain.CouponValidation{
		TotalDiscount:      resp.TotalDiscount,
		PerSellerDiscounts: resp.PerSellerDiscounts,
	}
	for _, entry := range resp.Coupons {
		out.Coupons = append(out.Coupons, domain.Coupon{
			Code:   entry.Coupon.Code,
			Amount: entry.DiscountAmount,
			Meta: domain.CouponMeta{
				DiscountType:  entry.Coupon.DiscountType,
				DiscountValue: entry.Coupon.DiscountValue,
				SellerID:      entry.Coupon.SellerID,
			},
			PerSellerDiscounts: entry.PerSellerDiscounts,
		})
	}
	return out, nil
}

type paymentMethodsRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

// PaymentMethods lists the gateway methods available for an amount
func (c *Client) PaymentMethods(ctx context.Context, amount decimal.Decimal, currency string) ([]domain.PaymentMethodOption, error) {
	var resp struct {
		Methods []domain.PaymentMethodOption `json:"methods"`
	}
	if err := c.do(ctx, http.MethodPost, "/payments/myfatoorah/methods", nil, paymentMethodsRequest{Amount: amount, Currency: currency}, &resp); err != nil {
		return nil, err
	}
	if resp.Methods == nil {
		resp.Methods = []domain.PaymentMethodOption{}
	}
	return resp.Methods, nil
}

// orderResponse accepts the order as serialised by the marketplace
type orderResponse struct {
	ID             json.Number `json:"id"`
	OrderID        json.Number `json:"order_id"`
	Status         string      `json:"status"`
	PaymentURL     string      `json:"payment_url"`
	PaymentURLAlt  string      `json:"paymentUrl"`
	TrackingNumber string      `json:"tracking_number"`
	TrackingURL    string      `json:"tracking_url"`
	LabelURL       string      `json:"label_url"`
}

// PlaceOrder submits the order with the buyer's token. It is never retried.
func (c *Client) PlaceOrder(ctx context.Context, payload *domain.OrderPayload) (*domain.OrderResult, error) {
	if BearerToken(ctx) == "" {
		return nil, &errors.ErrUnauthorized{Message: "sign in to place the order"}
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", nil, payload, &resp); err != nil {
		return nil, err
	}

	out := &domain.OrderResult{
		Status:         resp.Status,
		PaymentURL:     resp.PaymentURL,
		TrackingNumber: resp.TrackingNumber,
		TrackingURL:    resp.TrackingURL,
		LabelURL:       resp.LabelURL,
	}
	if out.PaymentURL == "" {
		out.PaymentURL = resp.PaymentURLAlt
	}
	id := resp.OrderID
	if id == "" {
		id = resp.ID
	}
	if id != "" {
		n, err := strconv.ParseInt(id.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("order id %q: %w", id, err)
		}
		out.OrderID = n
	}
	return out, nil
}
