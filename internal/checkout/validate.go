package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

const (
	MsgNoCourierAvailable  = "No courier is available for this city"
	MsgChooseCourier       = "Please choose a courier for every shipment"
	MsgPrepaidNotSupported = "The selected courier does not support prepaid orders; choose cash on delivery or another courier"
	MsgCODNotSupported     = "The selected courier does not support cash on delivery; choose online payment or another courier"
)

// CourierCheck is the input of courier validation before submission
type CourierCheck struct {
	Groups        []domain.ShipmentGroup
	Selections    domain.GroupSelections
	Unified       *domain.CourierPartner
	PaymentMethod domain.PaymentMethod
	OrderTotal    decimal.Decimal
}

// ValidateCourierSelection returns the first courier problem as a buyer-facing message, or ""
func ValidateCourierSelection(in CourierCheck) string {
	withPartners := 0
	for _, g := range in.Groups {
		if !g.HasPartners() {
			continue
		}
		withPartners++
		id, ok := in.Selections[g.GroupKey]
		if !ok || id == "" {
			return MsgChooseCourier
		}
		partner, offered := g.FindPartner(id)
		if !offered {
			return MsgChooseCourier
		}
		if msg := checkPartner(partner, in.PaymentMethod, in.OrderTotal); msg != "" {
			return msg
		}
	}
	if withPartners == 0 {
		return MsgNoCourierAvailable
	}
	if in.Unified != nil {
		if msg := checkPartner(*in.Unified, in.PaymentMethod, in.OrderTotal); msg != "" {
			return msg
		}
	}
	return ""
}

// checkPartner applies payment compatibility and order amount bounds.
// Flags that are absent are treated as supported.
func checkPartner(p domain.CourierPartner, method domain.PaymentMethod, total decimal.Decimal) string {
	if !method.IsCOD() && p.SupportsPrepaid != nil && !*p.SupportsPrepaid {
		return MsgPrepaidNotSupported
	}
	if method.IsCOD() && p.SupportsCOD != nil && !*p.SupportsCOD {
		return MsgCODNotSupported
	}
	if p.MinOrderAmount != nil && total.LessThan(*p.MinOrderAmount) {
		return fmt.Sprintf("%s requires an order total of at least %s", p.DisplayName(), p.MinOrderAmount.StringFixed(2))
	}
	if p.MaxOrderAmount != nil && p.MaxOrderAmount.IsPositive() && total.GreaterThan(*p.MaxOrderAmount) {
		return fmt.Sprintf("%s accepts an order total of at most %s", p.DisplayName(), p.MaxOrderAmount.StringFixed(2))
	}
	return ""
}
