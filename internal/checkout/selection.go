package checkout

import (
	"fmt"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// SelectionMode is the courier selection state: UnifiedMode, AdvancedMode or ForcedAdvancedMode
type SelectionMode interface {
	Name() string
	isSelectionMode()
}

// UnifiedMode applies one shared partner to every group it covers
type UnifiedMode struct {
	PartnerID string
}

// AdvancedMode lets the buyer pick a partner per group
type AdvancedMode struct{}

// ForcedAdvancedMode is AdvancedMode with no shared partner to switch back to
type ForcedAdvancedMode struct{}

func (UnifiedMode) Name() string        { return "unified" }
func (AdvancedMode) Name() string       { return "advanced" }
func (ForcedAdvancedMode) Name() string { return "forced_advanced" }

func (UnifiedMode) isSelectionMode()        {}
func (AdvancedMode) isSelectionMode()       {}
func (ForcedAdvancedMode) isSelectionMode() {}

// ReconcilerState is the serialisable form of a Reconciler
type ReconcilerState struct {
	Mode                 string                 `json:"mode"`
	UnifiedPartnerID     string                 `json:"unified_partner_id,omitempty"` // UnifiedMode only
	LastUnifiedPartnerID string                 `json:"last_unified_partner_id,omitempty"`
	Selections           domain.GroupSelections `json:"selections"`
}

// Reconciler keeps per-group courier selections consistent with the selection mode
type Reconciler struct {
	groups     []domain.ShipmentGroup
	shared     SharedPartners
	mode       SelectionMode
	selections domain.GroupSelections
	// lastUnified survives a switch to AdvancedMode
	lastUnified string
}

// NewReconciler starts in UnifiedMode on the first shared partner, or ForcedAdvancedMode when there is none
func NewReconciler(lookup domain.CourierLookup) *Reconciler {
	shared := DeriveSharedPartners(lookup)
	r := &Reconciler{
		groups:     lookup.Groups,
		shared:     shared,
		selections: DefaultSelections(lookup.Groups, shared),
	}
	if shared.Empty() {
		r.mode = ForcedAdvancedMode{}
	} else {
		r.mode = UnifiedMode{PartnerID: shared.Partners[0].ID}
		r.lastUnified = shared.Partners[0].ID
	}
	return r
}

// RestoreReconciler rebuilds a reconciler from a lookup and a saved state.
// Selections that no longer match the lookup fall back to the defaults.
func RestoreReconciler(lookup domain.CourierLookup, state ReconcilerState) *Reconciler {
	r := NewReconciler(lookup)
	if _, forced := r.mode.(ForcedAdvancedMode); forced {
		r.restoreGroups(state.Selections)
		return r
	}

	for _, id := range []string{state.UnifiedPartnerID, state.LastUnifiedPartnerID} {
		if _, ok := r.shared.Find(id); ok {
			r.lastUnified = id
			break
		}
	}
	r.restoreGroups(state.Selections)
	switch state.Mode {
	case AdvancedMode{}.Name():
		r.mode = AdvancedMode{}
	default:
		r.mode = UnifiedMode{PartnerID: r.lastUnified}
		applyUnified(r.selections, r.groups, r.shared, r.lastUnified)
	}
	return r
}

func (r *Reconciler) restoreGroups(saved domain.GroupSelections) {
	for _, g := range r.groups {
		id, ok := saved[g.GroupKey]
		if !ok {
			continue
		}
		if _, offered := g.FindPartner(id); offered {
			r.selections[g.GroupKey] = id
		}
	}
}

// State returns the serialisable form
func (r *Reconciler) State() ReconcilerState {
	state := ReconcilerState{
		Mode:                 r.mode.Name(),
		LastUnifiedPartnerID: r.lastUnified,
		Selections:           r.selections.Clone(),
	}
	if u, ok := r.mode.(UnifiedMode); ok {
		state.UnifiedPartnerID = u.PartnerID
	}
	return state
}

// Mode returns the current selection mode
func (r *Reconciler) Mode() SelectionMode {
	return r.mode
}

// Groups returns the shipment groups of the lookup
func (r *Reconciler) Groups() []domain.ShipmentGroup {
	return r.groups
}

// Shared returns the derived shared partners
func (r *Reconciler) Shared() SharedPartners {
	return r.shared
}

// Selections returns a copy of the per-group selections
func (r *Reconciler) Selections() domain.GroupSelections {
	return r.selections.Clone()
}

// UnifiedPartner returns the globally selected partner in UnifiedMode
func (r *Reconciler) UnifiedPartner() (domain.CourierPartner, bool) {
	u, ok := r.mode.(UnifiedMode)
	if !ok || u.PartnerID == "" {
		return domain.CourierPartner{}, false
	}
	return r.shared.Find(u.PartnerID)
}

// SelectUnified picks a shared partner and copies it into every group it covers.
// Calling it from AdvancedMode switches back to UnifiedMode.
func (r *Reconciler) SelectUnified(partnerID string) error {
	if _, forced := r.mode.(ForcedAdvancedMode); forced {
		return &errors.ErrInvalidSelection{Message: "no courier covers several shipments; choose a courier per shipment"}
	}
	if _, ok := r.shared.Find(partnerID); !ok {
		return &errors.ErrInvalidSelection{Message: fmt.Sprintf("courier %s is not offered for all shipments", partnerID)}
	}
	r.mode = UnifiedMode{PartnerID: partnerID}
	r.lastUnified = partnerID
	applyUnified(r.selections, r.groups, r.shared, partnerID)
	return nil
}

// SelectGroup picks a partner for one group. In UnifiedMode only groups the unified partner
// does not cover can be changed.
func (r *Reconciler) SelectGroup(groupKey, partnerID string) error {
	group, ok := r.group(groupKey)
	if !ok {
		return &errors.ErrNotFound{Resource: "shipment group", ID: groupKey}
	}
	if u, unified := r.mode.(UnifiedMode); unified && r.shared.Covers(u.PartnerID, groupKey) {
		return &errors.ErrInvalidSelection{Message: fmt.Sprintf("shipment %s follows the unified courier; switch to advanced selection to change it", groupKey)}
	}
	if _, offered := group.FindPartner(partnerID); !offered {
		return &errors.ErrInvalidSelection{Message: fmt.Sprintf("courier %s does not serve shipment %s", partnerID, groupKey)}
	}
	r.selections[groupKey] = partnerID
	return nil
}

// SetAdvanced toggles between per-group and unified selection. Leaving advanced mode
// re-applies the previous unified partner, or the first shared one.
func (r *Reconciler) SetAdvanced(advanced bool) error {
	switch r.mode.(type) {
	case ForcedAdvancedMode:
		if advanced {
			return nil
		}
		return &errors.ErrInvalidSelection{Message: "no courier covers several shipments; unified selection is unavailable"}
	case UnifiedMode:
		if advanced {
			r.mode = AdvancedMode{}
		}
		return nil
	case AdvancedMode:
		if advanced {
			return nil
		}
		partnerID := r.lastUnified
		if partnerID == "" {
			partnerID = r.shared.Partners[0].ID
		}
		return r.SelectUnified(partnerID)
	}
	return nil
}

func (r *Reconciler) group(key string) (domain.ShipmentGroup, bool) {
	for _, g := range r.groups {
		if g.GroupKey == key {
			return g, true
		}
	}
	return domain.ShipmentGroup{}, false
}

// IsPartial reports whether the unified choice leaves some groups to pick individually
func (r *Reconciler) IsPartial() bool {
	return r.shared.Partial
}

// ShowUnifiedSelect reports whether a unified choice can be offered
func (r *Reconciler) ShowUnifiedSelect() bool {
	return !r.shared.Empty()
}

// EditableGroups lists the groups the buyer can pick individually in the current mode
func (r *Reconciler) EditableGroups() []string {
	var keys []string
	u, unified := r.mode.(UnifiedMode)
	for _, g := range r.groups {
		if !g.HasPartners() {
			continue
		}
		if unified && r.shared.Covers(u.PartnerID, g.GroupKey) {
			continue
		}
		keys = append(keys, g.GroupKey)
	}
	return keys
}
