package checkout

import "github.com/jafarshop/checkoutapi/internal/domain"

// ShouldFetchCourierPartners is true when a city is selected and differs from the last one fetched.
// A zero id means no city.
func ShouldFetchCourierPartners(prevCityID, nextCityID int64) bool {
	return nextCityID != 0 && nextCityID != prevCityID
}

// ShouldDisableTorodShipping is true unless a city is selected, the lookup is done and at least one courier exists
func ShouldDisableTorodShipping(courierCount int, hasCity, loading bool) bool {
	return !hasCity || loading || courierCount <= 0
}

// ShouldDisablePlaceOrder blocks the place-order action while placing, and for torod shipping
// while couriers are unavailable.
func ShouldDisablePlaceOrder(method domain.ShippingMethod, courierCount int, hasCity, loading, placing bool) bool {
	if placing {
		return true
	}
	if method != domain.ShippingMethodTorod {
		return false
	}
	return ShouldDisableTorodShipping(courierCount, hasCity, loading)
}
