package storage

import (
	"context"
	"testing"
	"time"

	"github.com/emris02/tchakeda-sub000/src/models"
)

func TestMemoryStoreSaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	r := models.Rental{ID: "r1", ApartmentID: "a1", Status: models.RentalStatusActive}
	if err := store.SaveRental(ctx, r); err != nil {
		t.Fatalf("SaveRental: %v", err)
	}

	r.Status = models.RentalStatusEnded
	if err := store.SaveRental(ctx, r); err != nil {
		t.Fatalf("SaveRental: %v", err)
	}

	rentals, err := store.Rentals(ctx)
	if err != nil {
		t.Fatalf("Rentals: %v", err)
	}
	if len(rentals) != 1 {
		t.Fatalf("expected 1 rental after re-save, got %d", len(rentals))
	}
	if rentals[0].Status != models.RentalStatusEnded {
		t.Errorf("expected status %q, got %q", models.RentalStatusEnded, rentals[0].Status)
	}
}

func TestMemoryStoreSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.SaveApartment(ctx, models.Apartment{ID: "a1", Status: models.ApartmentStatusFree}); err != nil {
		t.Fatalf("SaveApartment: %v", err)
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	snap.Apartments[0].Status = models.ApartmentStatusRent

	got, err := store.ApartmentByID(ctx, "a1")
	if err != nil {
		t.Fatalf("ApartmentByID: %v", err)
	}
	if got.Status != models.ApartmentStatusFree {
		t.Errorf("mutating a snapshot leaked into the store: status %q", got.Status)
	}
}

func TestMemoryStoreByIDMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	r, err := store.RentalByID(ctx, "missing")
	if err != nil {
		t.Fatalf("RentalByID: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil for a missing rental, got %+v", r)
	}
}

func TestSnapshotActiveRentalFor(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		Rentals: []models.Rental{
			{ID: "r1", ApartmentID: "a1", TenantID: "t1", StartDate: start, EndDate: end, Status: models.RentalStatusEnded},
			{ID: "r2", ApartmentID: "a1", TenantID: "t2", StartDate: start, EndDate: end, Status: models.RentalStatusActive},
		},
	}

	active := snap.ActiveRentalFor("a1")
	if active == nil {
		t.Fatal("expected an active rental for a1")
	}
	if active.ID != "r2" {
		t.Errorf("expected r2, got %s", active.ID)
	}
	if snap.ActiveRentalFor("a2") != nil {
		t.Error("expected no active rental for a2")
	}
}
