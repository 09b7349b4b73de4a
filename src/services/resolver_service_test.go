package services

import (
	"context"
	"testing"
	"time"

	"github.com/emris02/tchakeda-sub000/src/models"
	"github.com/shopspring/decimal"
)

func TestResolveFallbackChain(t *testing.T) {
	snap := snapshotWithRental(t)
	resolver := NewResolver(snap)

	tests := []struct {
		name     string
		kind     EntityKind
		id       string
		hints    ResolveHints
		expected string
		resolved bool
	}{
		{
			name: "canonical lookup", kind: KindTenant, id: "t1",
			expected: "Awa Diallo", resolved: true,
		},
		{
			name: "derived via apartment rental", kind: KindTenant, id: "",
			hints:    ResolveHints{ApartmentID: "a1"},
			expected: "Awa Diallo", resolved: true,
		},
		{
			name: "derived via rental id", kind: KindCollector, id: "",
			hints:    ResolveHints{RentalID: "r1"},
			expected: "Ibrahima Sarr", resolved: true,
		},
		{
			name: "owner derived via building chain", kind: KindOwner, id: "",
			hints:    ResolveHints{ApartmentID: "a1"},
			expected: "Fatou Ndiaye", resolved: true,
		},
		{
			name: "denormalized hint", kind: KindTenant, id: "ghost",
			hints:    ResolveHints{Name: "Nom Inconnu"},
			expected: "Nom Inconnu", resolved: false,
		},
		{
			name: "placeholder for unknown id", kind: KindTenant, id: "ghost",
			expected: "Tenant ghost", resolved: false,
		},
		{
			name: "dash for absent id", kind: KindBuilding, id: "",
			expected: "-", resolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := resolver.Resolve(tt.kind, tt.id, tt.hints)
			if info.Name != tt.expected {
				t.Errorf("Expected name %q, got %q", tt.expected, info.Name)
			}
			if info.Resolved != tt.resolved {
				t.Errorf("Expected resolved=%v, got %v", tt.resolved, info.Resolved)
			}
		})
	}
}

func TestResolveIgnoresTerminalRentals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ended := models.Rental{
		ID:          "r-ended",
		ApartmentID: "a1",
		TenantID:    "t1",
		StartDate:   time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:      models.RentalStatusEnded,
	}
	if err := store.SaveRental(ctx, ended); err != nil {
		t.Fatal(err)
	}
	snap, _ := store.Snapshot(ctx)

	info := NewResolver(snap).Resolve(KindTenant, "", ResolveHints{ApartmentID: "a1"})
	if info.Resolved {
		t.Errorf("Expected no derivation from a terminal rental, got %q", info.Name)
	}
	if info.Name != "-" {
		t.Errorf("Expected placeholder, got %q", info.Name)
	}
}

func TestCollectorRate(t *testing.T) {
	snap := snapshotWithRental(t)
	resolver := NewResolver(snap)

	rate, ok := resolver.CollectorRate("c1")
	if !ok || !rate.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected resolved rate 10, got %s (ok=%v)", rate, ok)
	}

	rate, ok = resolver.CollectorRate("missing")
	if ok || !rate.Equal(models.DefaultCommissionRate) {
		t.Errorf("Expected default rate for unknown collector, got %s (ok=%v)", rate, ok)
	}

	rate, ok = resolver.CollectorRate("")
	if ok || !rate.Equal(models.DefaultCommissionRate) {
		t.Errorf("Expected default rate for absent collector, got %s (ok=%v)", rate, ok)
	}
}

func TestTenantIDForRecoversKey(t *testing.T) {
	snap := snapshotWithRental(t)
	resolver := NewResolver(snap)

	tests := []struct {
		name     string
		record   models.PaymentRecord
		expected string
	}{
		{
			name:     "own key resolves",
			record:   models.PaymentRecord{TenantID: "t2"},
			expected: "t2",
		},
		{
			name:     "recovered via rental",
			record:   models.PaymentRecord{RentalID: "r1"},
			expected: "t1",
		},
		{
			name:     "recovered via apartment",
			record:   models.PaymentRecord{ApartmentID: "a1"},
			expected: "t1",
		},
		{
			name:     "nothing resolves",
			record:   models.PaymentRecord{TenantID: "ghost"},
			expected: "ghost", // Kept as-is rather than discarded
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.TenantIDFor(&tt.record); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
