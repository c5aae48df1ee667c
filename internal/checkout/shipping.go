package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

// ShippingTotal is the courier cost across all shipment groups
type ShippingTotal struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	// Unpriced lists groups whose selected partner carried no rate
	Unpriced []string `json:"unpriced,omitempty"`
}

// ComputeShippingTotal adds up the rate of each group's courier. A group that offers
// commonPartnerID is priced with it; otherwise its own selection is used. The currency
// is the first one any priced partner declares.
func ComputeShippingTotal(groups []domain.ShipmentGroup, selections domain.GroupSelections, commonPartnerID string) ShippingTotal {
	out := ShippingTotal{Amount: decimal.Zero}
	for _, g := range groups {
		if !g.HasPartners() {
			continue
		}
		partner, ok := domain.CourierPartner{}, false
		if commonPartnerID != "" {
			partner, ok = g.FindPartner(commonPartnerID)
		}
		if !ok {
			partner, ok = g.FindPartner(selections[g.GroupKey])
		}
		if !ok || partner.Rate == nil {
			out.Unpriced = append(out.Unpriced, g.GroupKey)
			continue
		}
		out.Amount = out.Amount.Add(*partner.Rate)
		if out.Currency == "" && partner.Currency != "" {
			out.Currency = partner.Currency
		}
	}
	return out
}
