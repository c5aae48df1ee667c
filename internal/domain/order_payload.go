package domain

import "github.com/shopspring/decimal"

// OrderPayload is the request body for POST /orders on the marketplace
type OrderPayload struct {
	PaymentMethod     PaymentMethod    `json:"payment_method"`
	PaymentMethodID   *int64           `json:"payment_method_id,omitempty"`
	PaymentMethodCode string           `json:"payment_method_code,omitempty"`
	Shipping          ShippingBlock    `json:"shipping"`
	Items             []OrderItem      `json:"items"`
	CouponCode        string           `json:"coupon_code,omitempty"`
	CouponCodes       []string         `json:"coupon_codes,omitempty"`
	DiscountAmount    decimal.Decimal  `json:"discount_amount"`
	ShippingFee       *decimal.Decimal `json:"shipping_fee,omitempty"`
}

// ShippingBlock carries the address as readable names plus the provider ids
type ShippingBlock struct {
	Name                   string           `json:"name"`
	Phone                  string           `json:"phone"`
	Country                string           `json:"country"`
	Region                 string           `json:"region"`
	City                   string           `json:"city"`
	District               string           `json:"district,omitempty"`
	Address                string           `json:"address"`
	Type                   ShippingMethod   `json:"type"`
	CustomerCityCode       string           `json:"customer_city_code,omitempty"`
	TorodCountryID         *int64           `json:"torod_country_id,omitempty"`
	TorodRegionID          *int64           `json:"torod_region_id,omitempty"`
	TorodCityID            *int64           `json:"torod_city_id,omitempty"`
	TorodDistrictID        *int64           `json:"torod_district_id,omitempty"`
	TorodShippingCompanyID string           `json:"torod_shipping_company_id,omitempty"`
	TorodGroupSelections   []GroupSelection `json:"torod_group_selections,omitempty"`
	DeferTorodShipment     bool             `json:"defer_torod_shipment"`
	CODAmount              *decimal.Decimal `json:"cod_amount,omitempty"`
	CODCurrency            string           `json:"cod_currency,omitempty"`
}

// GroupSelection assigns a courier partner to one shipment group
type GroupSelection struct {
	GroupKey               string `json:"group_key"`
	WarehouseCode          string `json:"warehouse_code,omitempty"`
	TorodShippingCompanyID string `json:"torod_shipping_company_id"`
}

// OrderItem is one line of the order request
type OrderItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
