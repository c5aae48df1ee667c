package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CourierPartner is a shipping company offered by the logistics aggregator.
// Identity is ID; the same id can appear in several shipment groups.
type CourierPartner struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	NameAr          string           `json:"name_ar,omitempty"`
	SupportsCOD     *bool            `json:"supports_cod,omitempty"`
	SupportsPrepaid *bool            `json:"supports_prepaid,omitempty"`
	MinOrderAmount  *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxOrderAmount  *decimal.Decimal `json:"max_order_amount,omitempty"`
	Rate            *decimal.Decimal `json:"rate,omitempty"`
	Currency        string           `json:"currency,omitempty"`
}

// DisplayName falls back to the id when the aggregator sent no title
func (p CourierPartner) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.NameAr != "" {
		return p.NameAr
	}
	return p.ID
}

var (
	partnerIDKeys       = []string{"id", "courier_id", "partner_id", "shipping_company_id", "company_id", "code"}
	partnerNameKeys     = []string{"name", "title", "title_en", "name_en"}
	partnerNameArKeys   = []string{"name_ar", "title_ar"}
	partnerCODKeys      = []string{"supports_cod", "supportsCod", "cod_supported", "is_cod"}
	partnerPrepaidKeys  = []string{"supports_prepaid", "supportsPrepaid", "prepaid_supported"}
	partnerMinKeys      = []string{"min_order_amount", "minOrderAmount", "min_order_value", "min_amount"}
	partnerMaxKeys      = []string{"max_order_amount", "maxOrderAmount", "max_order_value", "max_amount"}
	partnerRateKeys     = []string{"rate", "price", "total_amount", "amount"}
	partnerCurrencyKeys = []string{"currency", "currency_code"}
)

// UnmarshalJSON accepts the partner shapes the aggregator emits: numeric or string ids
// under several keys, titles instead of names, and prices as numbers or strings.
func (p *CourierPartner) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("courier partner: not an object")
	}

	out := CourierPartner{}
	out.ID = firstString(raw, partnerIDKeys)
	out.Name = firstString(raw, partnerNameKeys)
	out.NameAr = firstString(raw, partnerNameArKeys)
	out.SupportsCOD = firstBool(raw, partnerCODKeys)
	out.SupportsPrepaid = firstBool(raw, partnerPrepaidKeys)
	out.MinOrderAmount = firstDecimal(raw, partnerMinKeys)
	out.MaxOrderAmount = firstDecimal(raw, partnerMaxKeys)
	out.Rate = firstDecimal(raw, partnerRateKeys)
	out.Currency = firstString(raw, partnerCurrencyKeys)

	*p = out
	return nil
}

// PartnerList decodes a partner array, dropping entries that are not objects or carry no id
type PartnerList []CourierPartner

func (l *PartnerList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	// Some aggregator endpoints wrap the array as {"data": [...]}
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if len(wrapped.Data) == 0 {
			*l = PartnerList{}
			return nil
		}
		return l.UnmarshalJSON(wrapped.Data)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	out := make(PartnerList, 0, len(entries))
	for _, entry := range entries {
		var partner CourierPartner
		if err := json.Unmarshal(entry, &partner); err != nil {
			continue
		}
		if partner.ID == "" {
			continue
		}
		out = append(out, partner)
	}
	*l = out
	return nil
}

// IDs returns partner ids in order
func (l PartnerList) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, p := range l {
		ids = append(ids, p.ID)
	}
	return ids
}

// UnmarshalJSON accepts numeric group keys, which must match the keys in partner_coverage
func (g *ShipmentGroup) UnmarshalJSON(data []byte) error {
	type plain ShipmentGroup
	var aux struct {
		plain
		GroupKey json.RawMessage `json:"group_key"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*g = ShipmentGroup(aux.plain)
	g.GroupKey, _ = rawString(aux.GroupKey)
	return nil
}

// UnmarshalJSON accepts numeric partner ids in coverage entries
func (c *PartnerCoverage) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = firstString(raw, partnerIDKeys)
	c.GroupKeys = nil
	if keys, ok := raw["group_keys"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(keys, &list); err != nil {
			return fmt.Errorf("partner coverage %s: %w", c.ID, err)
		}
		for _, k := range list {
			if s, ok := rawString(k); ok {
				c.GroupKeys = append(c.GroupKeys, s)
			}
		}
	}
	return nil
}

// UnmarshalJSON accepts numeric location ids and the provider's title/code aliases
func (l *Location) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	idStr := firstString(raw, []string{"id", "country_id", "region_id", "city_id", "cities_id", "district_id"})
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return fmt.Errorf("location id %q: %w", idStr, err)
	}
	l.ID = id
	l.Name = firstString(raw, []string{"name", "name_en", "title", "title_en", "country_name", "region_name", "city_name", "district_name"})
	l.NameAr = firstString(raw, []string{"name_ar", "title_ar"})
	l.CityCode = firstString(raw, []string{"city_code", "code"})
	return nil
}

func firstString(raw map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := rawString(v); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstBool(raw map[string]json.RawMessage, keys []string) *bool {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return &b
		}
		if s, ok := rawString(v); ok {
			switch strings.ToLower(s) {
			case "true", "1", "yes":
				b = true
				return &b
			case "false", "0", "no":
				b = false
				return &b
			}
		}
	}
	return nil
}

func firstDecimal(raw map[string]json.RawMessage, keys []string) *decimal.Decimal {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		s, ok := rawString(v)
		if !ok || s == "" {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			continue
		}
		return &d
	}
	return nil
}

// rawString reads a JSON string or number as text
func rawString(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", false
	}
	return n.String(), true
}
