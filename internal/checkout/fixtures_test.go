package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func partner(id string) domain.CourierPartner {
	return domain.CourierPartner{ID: id, Name: "Courier " + id}
}

func group(key string, partners ...domain.CourierPartner) domain.ShipmentGroup {
	return domain.ShipmentGroup{GroupKey: key, WarehouseCode: "WH-" + key, Partners: partners}
}

func twoWarehouseLookup(shared domain.CourierPartner) domain.CourierLookup {
	return domain.CourierLookup{
		Groups: []domain.ShipmentGroup{
			{GroupKey: "A", WarehouseCode: "WH-A", Items: []domain.GroupItem{{ProductID: 1, Quantity: 1}}, Partners: domain.PartnerList{shared}},
			{GroupKey: "B", WarehouseCode: "WH-B", Items: []domain.GroupItem{{ProductID: 2, Quantity: 1}}, Partners: domain.PartnerList{shared, partner("9")}},
		},
		CommonPartners: domain.PartnerList{shared},
	}
}

func completeLocations(withDistricts bool) LocationState {
	st := LocationState{
		Selection: map[domain.LocationLevel]domain.Location{
			domain.LocationCountry: {ID: 1, Name: "Saudi Arabia"},
			domain.LocationRegion:  {ID: 2, Name: "Riyadh Region"},
			domain.LocationCity:    {ID: 3, Name: "Riyadh", CityCode: "RUH"},
		},
		Options: map[domain.LocationLevel][]domain.Location{},
	}
	if withDistricts {
		st.Options[domain.LocationDistrict] = []domain.Location{{ID: 40, Name: "Olaya"}}
	}
	return st
}

func twoItemCart() []domain.CartItem {
	return []domain.CartItem{
		{ProductID: 1, ProductName: "Oud Royal", Quantity: 1, UnitPrice: decimal.NewFromInt(250)},
		{ProductID: 2, ProductName: "Amber Night", Quantity: 1, UnitPrice: decimal.NewFromInt(180)},
	}
}

func validForm() Form {
	return Form{
		Name:            "Sara Alharbi",
		Phone:           "+966 55 123 4567",
		Address:         "King Fahd Road 12",
		PaymentMethod:   domain.PaymentMethodGateway,
		PaymentMethodID: int64Ptr(2),
		ShippingMethod:  domain.ShippingMethodTorod,
	}
}

func int64Ptr(n int64) *int64 { return &n }

// fakeLookup counts partner lookups
type fakeLookup struct {
	calls  int
	lookup *domain.CourierLookup
	err    error
}

func (f *fakeLookup) CheckoutCourierPartners(ctx context.Context, req CourierRequest) (*domain.CourierLookup, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.lookup, nil
}

// fakeSequencer keeps sequence numbers in a map
type fakeSequencer struct {
	seq map[string]int64
}

func newFakeSequencer() *fakeSequencer {
	return &fakeSequencer{seq: make(map[string]int64)}
}

func (f *fakeSequencer) Next(ctx context.Context, scope string) (int64, error) {
	f.seq[scope]++
	return f.seq[scope], nil
}

func (f *fakeSequencer) Latest(ctx context.Context, scope string) (int64, error) {
	return f.seq[scope], nil
}
