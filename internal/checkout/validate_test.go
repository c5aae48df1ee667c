package checkout

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

func TestValidateCourierSelection(t *testing.T) {
	noCOD := partner("5")
	noCOD.SupportsCOD = boolPtr(false)
	bounded := partner("6")
	bounded.MinOrderAmount = decPtr("100")
	bounded.MaxOrderAmount = decPtr("1000")

	tests := []struct {
		name    string
		check   CourierCheck
		want    string
		wantSub string
	}{
		{
			name:  "ok",
			check: CourierCheck{Groups: []domain.ShipmentGroup{group("A", partner("1"))}, Selections: domain.GroupSelections{"A": "1"}, PaymentMethod: domain.PaymentMethodCOD},
		},
		{
			name:  "no partners anywhere",
			check: CourierCheck{Groups: []domain.ShipmentGroup{group("A")}, PaymentMethod: domain.PaymentMethodCOD},
			want:  MsgNoCourierAvailable,
		},
		{
			name:  "missing selection",
			check: CourierCheck{Groups: []domain.ShipmentGroup{group("A", partner("1"))}, Selections: domain.GroupSelections{}, PaymentMethod: domain.PaymentMethodCOD},
			want:  MsgChooseCourier,
		},
		{
			name:  "selection not offered by group",
			check: CourierCheck{Groups: []domain.ShipmentGroup{group("A", partner("1"))}, Selections: domain.GroupSelections{"A": "2"}, PaymentMethod: domain.PaymentMethodCOD},
			want:  MsgChooseCourier,
		},
		{
			name:  "cod not supported",
			check: CourierCheck{Groups: []domain.ShipmentGroup{group("A", noCOD)}, Selections: domain.GroupSelections{"A": "5"}, PaymentMethod: domain.PaymentMethodCOD},
			want:  MsgCODNotSupported,
		},
		{
			name:  "cod flag ignored for gateway",
			check: CourierCheck{Groups: []domain.ShipmentGroup{group("A", noCOD)}, Selections: domain.GroupSelections{"A": "5"}, PaymentMethod: domain.PaymentMethodGateway},
		},
		{
			name:    "below minimum",
			check:   CourierCheck{Groups: []domain.ShipmentGroup{group("A", bounded)}, Selections: domain.GroupSelections{"A": "6"}, PaymentMethod: domain.PaymentMethodCOD, OrderTotal: decimal.NewFromInt(50)},
			wantSub: "at least 100.00",
		},
		{
			name:    "above maximum",
			check:   CourierCheck{Groups: []domain.ShipmentGroup{group("A", bounded)}, Selections: domain.GroupSelections{"A": "6"}, PaymentMethod: domain.PaymentMethodCOD, OrderTotal: decimal.NewFromInt(1500)},
			wantSub: "at most 1000.00",
		},
		{
			name: "unified partner checked too",
			check: CourierCheck{
				Groups:        []domain.ShipmentGroup{group("A", partner("1"))},
				Selections:    domain.GroupSelections{"A": "1"},
				Unified:       &noCOD,
				PaymentMethod: domain.PaymentMethodCOD,
			},
			want: MsgCODNotSupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCourierSelection(tt.check)
			if tt.wantSub != "" {
				if !strings.Contains(got, tt.wantSub) {
					t.Fatalf("got %q, want it to contain %q", got, tt.wantSub)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
