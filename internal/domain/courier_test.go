package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPartnerList_NormalizesAggregatorShapes(t *testing.T) {
	payload := []byte(`{
		"data": [
			{"id": 1, "title": "Partner A", "supports_prepaid": true},
			{"courier_id": "C-2", "title_en": "Partner B"},
			{"partner_id": 3},
			{"shipping_company_id": 4},
			{"company_id": 5},
			{"code": "X6"},
			{"title": "No id"},
			null,
			"string"
		]
	}`)

	var list PartnerList
	if err := json.Unmarshal(payload, &list); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := []string{"1", "C-2", "3", "4", "5", "X6"}
	if got := list.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if list[0].Name != "Partner A" {
		t.Fatalf("name = %q, want Partner A", list[0].Name)
	}
	if list[0].SupportsPrepaid == nil || !*list[0].SupportsPrepaid {
		t.Fatal("supports_prepaid not carried over")
	}
	if list[1].Name != "Partner B" {
		t.Fatalf("name = %q, want Partner B", list[1].Name)
	}
}

func TestCourierPartner_PricesAndFlags(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantRate string
		wantCOD  *bool
	}{
		{name: "numeric rate", raw: `{"id": 1, "rate": 12.5}`, wantRate: "12.5"},
		{name: "string price", raw: `{"id": 1, "price": "7"}`, wantRate: "7"},
		{name: "total amount", raw: `{"id": 1, "total_amount": 30, "supports_cod": "false"}`, wantRate: "30", wantCOD: boolPtr(false)},
		{name: "unparseable rate skipped", raw: `{"id": 1, "rate": "n/a", "amount": 4}`, wantRate: "4"},
		{name: "no price", raw: `{"id": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p CourierPartner
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			switch {
			case tt.wantRate == "" && p.Rate != nil:
				t.Fatalf("rate = %s, want none", p.Rate)
			case tt.wantRate != "" && (p.Rate == nil || p.Rate.String() != tt.wantRate):
				t.Fatalf("rate = %v, want %s", p.Rate, tt.wantRate)
			}
			if !reflect.DeepEqual(p.SupportsCOD, tt.wantCOD) {
				t.Fatalf("supports_cod = %v, want %v", p.SupportsCOD, tt.wantCOD)
			}
		})
	}
}

func TestCourierPartner_RoundTrip(t *testing.T) {
	in := CourierPartner{ID: "9", Name: "Aramex", SupportsPrepaid: boolPtr(false), Currency: "SAR"}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out CourierPartner
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestPartnerCoverage_NumericIDs(t *testing.T) {
	var cov []PartnerCoverage
	if err := json.Unmarshal([]byte(`[{"id": 7, "group_keys": ["A", 2]}]`), &cov); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cov[0].ID != "7" || !reflect.DeepEqual(cov[0].GroupKeys, []string{"A", "2"}) {
		t.Fatalf("coverage = %+v", cov[0])
	}
}

func TestLocation_Aliases(t *testing.T) {
	var loc Location
	if err := json.Unmarshal([]byte(`{"city_id": "15", "title": "Riyadh", "title_ar": "الرياض", "city_code": "RUH"}`), &loc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if loc.ID != 15 || loc.Name != "Riyadh" || loc.NameAr != "الرياض" || loc.CityCode != "RUH" {
		t.Fatalf("location = %+v", loc)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestCourierLookup_NumericGroupKeys(t *testing.T) {
	payload := []byte(`{
		"groups": [
			{"group_key": 12, "warehouse_code": "RUH-1", "items": [{"product_id": 1, "quantity": 2}], "partners": [{"id": 1, "rate": 10}]},
			{"group_key": "13", "partners": [{"id": 1}, {"id": 2}]}
		],
		"partner_coverage": [{"id": 1, "group_keys": [12, 13]}]
	}`)

	var lookup CourierLookup
	if err := json.Unmarshal(payload, &lookup); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(lookup.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(lookup.Groups))
	}
	if lookup.Groups[0].GroupKey != "12" || lookup.Groups[1].GroupKey != "13" {
		t.Fatalf("group keys = %q, %q", lookup.Groups[0].GroupKey, lookup.Groups[1].GroupKey)
	}
	g := lookup.Groups[0]
	if g.WarehouseCode != "RUH-1" || len(g.Items) != 1 || g.Items[0].Quantity != 2 {
		t.Fatalf("group fields = %+v", g)
	}
	if got := g.Partners.IDs(); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("partners = %v", got)
	}
	if !reflect.DeepEqual(lookup.PartnerCoverage[0].GroupKeys, []string{"12", "13"}) {
		t.Fatalf("coverage keys = %v", lookup.PartnerCoverage[0].GroupKeys)
	}
}
