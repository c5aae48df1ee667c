package checkout

import (
	"testing"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

func TestShouldFetchCourierPartners(t *testing.T) {
	tests := []struct {
		name string
		prev int64
		next int64
		want bool
	}{
		{name: "first city", prev: 0, next: 10, want: true},
		{name: "city changed", prev: 10, next: 11, want: true},
		{name: "same city", prev: 10, next: 10, want: false},
		{name: "no city", prev: 0, next: 0, want: false},
		{name: "city cleared", prev: 10, next: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldFetchCourierPartners(tt.prev, tt.next); got != tt.want {
				t.Fatalf("ShouldFetchCourierPartners(%d, %d) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestShouldDisableTorodShipping(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		hasCity bool
		loading bool
		want    bool
	}{
		{name: "ready", count: 2, hasCity: true, loading: false, want: false},
		{name: "no city", count: 2, hasCity: false, loading: false, want: true},
		{name: "loading", count: 2, hasCity: true, loading: true, want: true},
		{name: "no couriers", count: 0, hasCity: true, loading: false, want: true},
		{name: "negative count", count: -1, hasCity: true, loading: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldDisableTorodShipping(tt.count, tt.hasCity, tt.loading); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldDisablePlaceOrder(t *testing.T) {
	tests := []struct {
		name    string
		method  domain.ShippingMethod
		count   int
		hasCity bool
		loading bool
		placing bool
		want    bool
	}{
		{name: "placing wins over ready torod", method: domain.ShippingMethodTorod, count: 1, hasCity: true, placing: true, want: true},
		{name: "placing wins over standard", method: domain.ShippingMethodStandard, placing: true, want: true},
		{name: "standard ignores courier state", method: domain.ShippingMethodStandard, count: 0, hasCity: false, loading: true, want: false},
		{name: "torod ready", method: domain.ShippingMethodTorod, count: 1, hasCity: true, want: false},
		{name: "torod without city", method: domain.ShippingMethodTorod, count: 1, hasCity: false, want: true},
		{name: "torod loading", method: domain.ShippingMethodTorod, count: 1, hasCity: true, loading: true, want: true},
		{name: "torod without couriers", method: domain.ShippingMethodTorod, count: 0, hasCity: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldDisablePlaceOrder(tt.method, tt.count, tt.hasCity, tt.loading, tt.placing)
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
