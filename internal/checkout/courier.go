package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

// SharedPartners is the set of partners that can be offered as one choice for several groups
type SharedPartners struct {
	Partners []domain.CourierPartner
	// Coverage maps partner id to the group keys it services
	Coverage map[string][]string
	// Partial is true when the shared set came from pairwise overlap rather than a full intersection
	Partial bool
}

// Empty reports whether every group has to be resolved individually
func (s SharedPartners) Empty() bool {
	return len(s.Partners) == 0
}

// Find returns a shared partner by id
func (s SharedPartners) Find(id string) (domain.CourierPartner, bool) {
	for _, p := range s.Partners {
		if p.ID == id {
			return p, true
		}
	}
	return domain.CourierPartner{}, false
}

// Covers reports whether the shared partner services the group
func (s SharedPartners) Covers(partnerID, groupKey string) bool {
	for _, k := range s.Coverage[partnerID] {
		if k == groupKey {
			return true
		}
	}
	return false
}

// DeriveSharedPartners picks the partners offered as a unified choice, in priority order:
// the backend's common_partners, then partners covering more than one group, then none.
// When the backend sent neither common_partners nor partner_coverage, coverage is
// recomputed from the groups and the full intersection is tried first.
func DeriveSharedPartners(lookup domain.CourierLookup) SharedPartners {
	groupCoverage := CoverageFromGroups(lookup.Groups)
	coverage := lookup.PartnerCoverage
	recomputed := false
	if len(lookup.CommonPartners) == 0 && len(coverage) == 0 {
		coverage = groupCoverage
		recomputed = true
	}

	coverageByID := make(map[string][]string, len(coverage))
	for _, c := range coverage {
		coverageByID[c.ID] = c.GroupKeys
	}

	if len(lookup.CommonPartners) > 0 {
		out := SharedPartners{Coverage: make(map[string][]string)}
		for _, p := range lookup.CommonPartners {
			keys, ok := coverageByID[p.ID]
			if !ok {
				keys = coverageKeys(groupCoverage, p.ID)
			}
			out.Partners = append(out.Partners, p)
			out.Coverage[p.ID] = keys
		}
		return out
	}

	if recomputed {
		if full := fullIntersection(lookup.Groups, coverage); len(full.Partners) > 0 {
			return full
		}
	}

	out := SharedPartners{Coverage: make(map[string][]string), Partial: true}
	for _, c := range coverage {
		if len(c.GroupKeys) <= 1 {
			continue
		}
		out.Partners = append(out.Partners, partnerDetails(lookup.Groups, c.ID))
		out.Coverage[c.ID] = c.GroupKeys
	}
	if len(out.Partners) == 0 {
		return SharedPartners{}
	}
	return out
}

// CoverageFromGroups lists, for every partner in first-seen order, the groups offering it
func CoverageFromGroups(groups []domain.ShipmentGroup) []domain.PartnerCoverage {
	var out []domain.PartnerCoverage
	index := make(map[string]int)
	for _, g := range groups {
		for _, p := range g.Partners {
			i, ok := index[p.ID]
			if !ok {
				index[p.ID] = len(out)
				out = append(out, domain.PartnerCoverage{ID: p.ID})
				i = len(out) - 1
			}
			if !out[i].Covers(g.GroupKey) {
				out[i].GroupKeys = append(out[i].GroupKeys, g.GroupKey)
			}
		}
	}
	return out
}

func fullIntersection(groups []domain.ShipmentGroup, coverage []domain.PartnerCoverage) SharedPartners {
	withPartners := 0
	for _, g := range groups {
		if g.HasPartners() {
			withPartners++
		}
	}
	out := SharedPartners{Coverage: make(map[string][]string)}
	if withPartners == 0 {
		return out
	}
	for _, c := range coverage {
		if len(c.GroupKeys) == withPartners {
			out.Partners = append(out.Partners, partnerDetails(groups, c.ID))
			out.Coverage[c.ID] = c.GroupKeys
		}
	}
	return out
}

func coverageKeys(coverage []domain.PartnerCoverage, id string) []string {
	for _, c := range coverage {
		if c.ID == id {
			return c.GroupKeys
		}
	}
	return nil
}

// partnerDetails returns the first group's copy of the partner, or a bare id
func partnerDetails(groups []domain.ShipmentGroup, id string) domain.CourierPartner {
	for _, g := range groups {
		if p, ok := g.FindPartner(id); ok {
			return p
		}
	}
	return domain.CourierPartner{ID: id}
}

// DefaultSelections picks partners[0] per group, then lets the first shared partner
// take every group it covers.
func DefaultSelections(groups []domain.ShipmentGroup, shared SharedPartners) domain.GroupSelections {
	selections := make(domain.GroupSelections, len(groups))
	for _, g := range groups {
		if g.HasPartners() {
			selections[g.GroupKey] = g.Partners[0].ID
		}
	}
	if shared.Empty() {
		return selections
	}
	applyUnified(selections, groups, shared, shared.Partners[0].ID)
	return selections
}

func applyUnified(selections domain.GroupSelections, groups []domain.ShipmentGroup, shared SharedPartners, partnerID string) {
	for _, g := range groups {
		if shared.Covers(partnerID, g.GroupKey) {
			selections[g.GroupKey] = partnerID
		}
	}
}

// CourierCount is the number of distinct partners offered across all groups
func CourierCount(groups []domain.ShipmentGroup) int {
	return len(CoverageFromGroups(groups))
}

// PartnerLookup fetches shipment groups and courier partners for a city
type PartnerLookup interface {
	CheckoutCourierPartners(ctx context.Context, req CourierRequest) (*domain.CourierLookup, error)
}

// CourierRequest is the body of the checkout partner lookup
type CourierRequest struct {
	CustomerCityID int64              `json:"customer_city_id"`
	OrderTotal     *decimal.Decimal   `json:"order_total,omitempty"`
	Items          []domain.GroupItem `json:"items"`
}

// CourierState is the courier part of a checkout session
type CourierState struct {
	CityID    int64                 `json:"city_id"`
	Lookup    *domain.CourierLookup `json:"lookup,omitempty"`
	Selection ReconcilerState       `json:"selection"`
}

// Reset forgets the last lookup so the next resolve fetches again
func (s *CourierState) Reset() {
	*s = CourierState{}
}

// CourierResolver runs the partner lookup once per distinct city
type CourierResolver struct {
	lookup PartnerLookup
}

// NewCourierResolver creates a resolver over the marketplace lookup
func NewCourierResolver(lookup PartnerLookup) *CourierResolver {
	return &CourierResolver{lookup: lookup}
}

// Resolve refreshes state for req.CustomerCityID. It returns false without I/O when the city
// was already fetched. On failure the state is left without groups, the city is not
// remembered so a later call retries, and the error is returned.
func (r *CourierResolver) Resolve(ctx context.Context, state *CourierState, req CourierRequest) (bool, error) {
	if !ShouldFetchCourierPartners(state.CityID, req.CustomerCityID) {
		return false, nil
	}

	state.Reset()

	lookup, err := r.lookup.CheckoutCourierPartners(ctx, req)
	if err != nil {
		state.Lookup = &domain.CourierLookup{}
		state.Selection = NewReconciler(*state.Lookup).State()
		return true, err
	}

	state.CityID = req.CustomerCityID

	state.Lookup = lookup
	state.Selection = NewReconciler(*lookup).State()
	return true, nil
}
