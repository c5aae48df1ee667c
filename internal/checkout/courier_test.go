package checkout

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jafarshop/checkoutapi/internal/domain"
)

func TestDefaultSelections_CommonPartnerTakesAllGroups(t *testing.T) {
	lookup := domain.CourierLookup{
		Groups: []domain.ShipmentGroup{
			group("A", partner("1")),
			group("B", partner("1"), partner("2")),
		},
		CommonPartners: domain.PartnerList{partner("1")},
	}

	r := NewReconciler(lookup)

	want := domain.GroupSelections{"A": "1", "B": "1"}
	if got := r.Selections(); !reflect.DeepEqual(got, want) {
		t.Fatalf("selections = %v, want %v", got, want)
	}
	unified, ok := r.UnifiedPartner()
	if !ok || unified.ID != "1" {
		t.Fatalf("unified partner = %v (%v), want 1", unified.ID, ok)
	}
	if _, isUnified := r.Mode().(UnifiedMode); !isUnified {
		t.Fatalf("mode = %s, want unified", r.Mode().Name())
	}
}

func TestDeriveSharedPartners_PartialIntersection(t *testing.T) {
	lookup := domain.CourierLookup{
		Groups: []domain.ShipmentGroup{
			group("A", partner("1"), partner("2")),
			group("B", partner("1")),
		},
		PartnerCoverage: []domain.PartnerCoverage{
			{ID: "1", GroupKeys: []string{"A", "B"}},
			{ID: "2", GroupKeys: []string{"A"}},
		},
	}

	shared := DeriveSharedPartners(lookup)

	if ids := domain.PartnerList(shared.Partners).IDs(); !reflect.DeepEqual(ids, []string{"1"}) {
		t.Fatalf("shared partners = %v, want [1]", ids)
	}
	if !shared.Partial {
		t.Fatal("expected partial intersection")
	}
	if shared.Partners[0].Name != "Courier 1" {
		t.Fatalf("expected partner details from groups, got %+v", shared.Partners[0])
	}
}

func TestDeriveSharedPartners(t *testing.T) {
	tests := []struct {
		name        string
		lookup      domain.CourierLookup
		wantIDs     []string
		wantPartial bool
	}{
		{
			name: "no overlap forces advanced",
			lookup: domain.CourierLookup{
				Groups: []domain.ShipmentGroup{group("A", partner("1")), group("B", partner("2"))},
				PartnerCoverage: []domain.PartnerCoverage{
					{ID: "1", GroupKeys: []string{"A"}},
					{ID: "2", GroupKeys: []string{"B"}},
				},
			},
			wantIDs: nil,
		},
		{
			name: "recomputed full intersection",
			lookup: domain.CourierLookup{
				Groups: []domain.ShipmentGroup{
					group("A", partner("1"), partner("3")),
					group("B", partner("3"), partner("1")),
					group("C", partner("1"), partner("3")),
				},
			},
			wantIDs: []string{"1", "3"},
		},
		{
			name: "recomputed partial when no partner covers every group",
			lookup: domain.CourierLookup{
				Groups: []domain.ShipmentGroup{
					group("A", partner("1")),
					group("B", partner("1"), partner("2")),
					group("C", partner("2")),
				},
			},
			wantIDs:     []string{"1", "2"},
			wantPartial: true,
		},
		{
			name: "common partners win over coverage",
			lookup: domain.CourierLookup{
				Groups:         []domain.ShipmentGroup{group("A", partner("1"), partner("2")), group("B", partner("2"), partner("1"))},
				CommonPartners: domain.PartnerList{partner("2")},
				PartnerCoverage: []domain.PartnerCoverage{
					{ID: "1", GroupKeys: []string{"A", "B"}},
					{ID: "2", GroupKeys: []string{"A", "B"}},
				},
			},
			wantIDs: []string{"2"},
		},
		{
			name:    "empty lookup",
			lookup:  domain.CourierLookup{},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shared := DeriveSharedPartners(tt.lookup)
			var ids []string
			for _, p := range shared.Partners {
				ids = append(ids, p.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Fatalf("shared ids = %v, want %v", ids, tt.wantIDs)
			}
			if shared.Partial != tt.wantPartial {
				t.Fatalf("partial = %v, want %v", shared.Partial, tt.wantPartial)
			}
		})
	}
}

func TestDefaultSelections_PartialLeavesUncoveredGroupsOnFirstPartner(t *testing.T) {
	groups := []domain.ShipmentGroup{
		group("A", partner("2"), partner("1")),
		group("B", partner("1")),
		group("C", partner("5"), partner("6")),
	}
	shared := DeriveSharedPartners(domain.CourierLookup{Groups: groups})

	got := DefaultSelections(groups, shared)

	want := domain.GroupSelections{"A": "1", "B": "1", "C": "5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("selections = %v, want %v", got, want)
	}
}

func TestCourierResolver_FetchesOncePerCity(t *testing.T) {
	lookup := &fakeLookup{lookup: &domain.CourierLookup{
		Groups:         []domain.ShipmentGroup{group("A", partner("1"))},
		CommonPartners: domain.PartnerList{partner("1")},
	}}
	resolver := NewCourierResolver(lookup)
	state := &CourierState{}
	ctx := context.Background()

	fetched, err := resolver.Resolve(ctx, state, CourierRequest{CustomerCityID: 7})
	if err != nil || !fetched {
		t.Fatalf("first resolve: fetched=%v err=%v", fetched, err)
	}
	fetched, err = resolver.Resolve(ctx, state, CourierRequest{CustomerCityID: 7})
	if err != nil || fetched {
		t.Fatalf("same city: fetched=%v err=%v", fetched, err)
	}
	if lookup.calls != 1 {
		t.Fatalf("lookup calls = %d, want 1", lookup.calls)
	}

	if _, err := resolver.Resolve(ctx, state, CourierRequest{CustomerCityID: 8}); err != nil {
		t.Fatalf("new city: %v", err)
	}
	if lookup.calls != 2 {
		t.Fatalf("lookup calls = %d, want 2", lookup.calls)
	}
	if state.Selection.Mode != "unified" || state.Selection.Selections["A"] != "1" {
		t.Fatalf("unexpected selection state %+v", state.Selection)
	}
}

func TestCourierResolver_FailureDegradesAndRetries(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("aggregator down")}
	resolver := NewCourierResolver(lookup)
	state := &CourierState{}

	if _, err := resolver.Resolve(context.Background(), state, CourierRequest{CustomerCityID: 7}); err == nil {
		t.Fatal("expected error")
	}
	if state.Lookup == nil || len(state.Lookup.Groups) != 0 {
		t.Fatalf("expected empty lookup, got %+v", state.Lookup)
	}
	if state.Selection.Mode != "forced_advanced" {
		t.Fatalf("mode = %s, want forced_advanced", state.Selection.Mode)
	}

	if _, err := resolver.Resolve(context.Background(), state, CourierRequest{CustomerCityID: 7}); err == nil {
		t.Fatal("expected error on retry")
	}
	if lookup.calls != 2 {
		t.Fatalf("lookup calls = %d, want 2 (failed city is retried)", lookup.calls)
	}
}

func TestCourierCount_CountsDistinctPartners(t *testing.T) {
	groups := []domain.ShipmentGroup{
		group("A", partner("1"), partner("2")),
		group("B", partner("2"), partner("3")),
		group("C"),
	}
	if got := CourierCount(groups); got != 3 {
		t.Fatalf("CourierCount = %d, want 3", got)
	}
}
