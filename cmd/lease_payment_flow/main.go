package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/emris02/tchakeda-sub000/src/models"
	"github.com/emris02/tchakeda-sub000/src/services"
	"github.com/emris02/tchakeda-sub000/src/storage"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// This example demonstrates the full lease and payment flow:
// 1. Seed owners, buildings, apartments, tenants and collectors
// 2. Start a rental (and show a conflicting one being rejected)
// 3. Walk the submission wizard and save a payment
// 4. Trip the duplicate gate, then override it
// 5. Confirm a pending payment after the period ended
// 6. End the rental, releasing the apartment

func main() {
	ctx := context.Background()
	store, cleanup := openStore(ctx)
	defer cleanup()

	seed(ctx, store)

	rentals := services.NewRentalService(store)
	payments := services.NewReconciliationService(store)

	fmt.Println("=== Lease & Payment Flow ===")
	fmt.Println()

	// Step 1: Start a rental
	fmt.Println("Step 1: Starting a rental")
	fmt.Println("-------------------------")
	rental, err := rentals.CreateRental(ctx, services.CreateRentalRequest{
		TenantID:    "t1",
		ApartmentID: "a1",
		BuildingID:  "b1",
		CollectorID: "c1",
		StartDate:   "2024-01-01",
		EndDate:     "2024-12-31",
		Price:       decimal.NewFromInt(150000),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Created rental %s (%s)\n\n", rental.ID, rental.Status)

	// Step 2: A second rental on the occupied apartment is rejected
	fmt.Println("Step 2: Conflict rejection")
	fmt.Println("--------------------------")
	_, err = rentals.CreateRental(ctx, services.CreateRentalRequest{
		TenantID:    "t2",
		ApartmentID: "a1",
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-30",
		Price:       decimal.NewFromInt(120000),
	})
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		fmt.Printf("Rejected as expected: %v\n\n", conflict)
	} else {
		log.Fatalf("expected a conflict, got %v", err)
	}

	// Step 3: Submit a payment through the wizard
	fmt.Println("Step 3: Payment submission wizard")
	fmt.Println("---------------------------------")
	snap, err := store.Snapshot(ctx)
	if err != nil {
		log.Fatal(err)
	}
	wizard := services.NewSubmissionWizard(snap)
	wizard.SetOwner("o1")
	wizard.SetBuilding("b1")
	wizard.SetApartment("a1") // Auto-populates tenant and collector
	if err := wizard.Next(); err != nil {
		log.Fatal(err)
	}
	wizard.SetPeriod("2024-02")
	wizard.SetPaymentDate("2024-03-05")
	wizard.SetAmount(decimal.NewFromInt(150000))
	wizard.SetMethod(models.PaymentMethodMobileMoney)

	preview := wizard.Preview()
	fmt.Printf("Preview: commission=%s net=%s late=%v (%d days)\n",
		preview.Commission, preview.Net, preview.IsLate, preview.DaysLate)

	if err := wizard.Next(); err != nil {
		log.Fatal(err)
	}
	wizard.SetAcknowledged(true)

	result, err := payments.SavePayment(ctx, wizard)
	if err != nil {
		log.Fatal(err)
	}
	record := result.Record
	fmt.Printf("Saved payment %s: %s, commission %s, net %s, %d days late\n\n",
		record.ID, record.Status, record.Commission, record.Net, record.DaysLate)

	// Step 4: Duplicate gate
	fmt.Println("Step 4: Duplicate gate")
	fmt.Println("----------------------")
	snap, _ = store.Snapshot(ctx)
	dup := services.NewSubmissionWizard(snap)
	dup.SetOwner("o1")
	dup.SetBuilding("b1")
	dup.SetApartment("a1")
	dup.SetPeriod("2024-02")
	dup.SetPaymentDate("2024-03-06")
	dup.SetAmount(decimal.NewFromInt(150000))
	dup.SetMethod(models.PaymentMethodCash)
	dup.SetAcknowledged(true)

	if _, err := payments.SavePayment(ctx, dup); err != nil {
		fmt.Printf("Blocked as expected: %v\n", err)
	}
	dup.SetDuplicateOverride(true)
	if _, err := payments.SavePayment(ctx, dup); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Accepted with the override flag")
	fmt.Println()

	// Step 5: Confirm a pending payment after the period ended
	fmt.Println("Step 5: Late confirmation")
	fmt.Println("-------------------------")
	pending := models.NewPaymentRecordBuilder().
		WithParties("t1", "c1", "o1", "b1", "a1").
		WithPeriod("2024-03").
		WithAmount(decimal.NewFromInt(150000)).
		WithMethod(models.PaymentMethodCheck).
		Build()
	if err := store.SavePayment(ctx, *pending); err != nil {
		log.Fatal(err)
	}
	confirmed, err := payments.ConfirmPayment(ctx, pending.ID,
		time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Confirmed payment %s: %s, %d days late\n\n",
		confirmed.ID, confirmed.Status, confirmed.DaysLate)

	// Step 6: End the rental
	fmt.Println("Step 6: Ending the rental")
	fmt.Println("-------------------------")
	if _, err := rentals.EndRental(ctx, rental.ID); err != nil {
		log.Fatal(err)
	}
	apartment, err := store.ApartmentByID(ctx, "a1")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Apartment %s released: status=%s\n", apartment.ID, apartment.Status)
}

// openStore uses Postgres when DATABASE_URL is set, in-memory otherwise
func openStore(ctx context.Context) (storage.Store, func()) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return storage.NewMemoryStore(), func() {}
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}
	store := storage.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal(err)
	}
	return store, func() { db.Close() }
}

func seed(ctx context.Context, store storage.Store) {
	seeder, ok := store.(*storage.MemoryStore)
	if ok {
		seeder.Seed(
			[]models.Tenant{
				{ID: "t1", Name: "Awa Diallo"},
				{ID: "t2", Name: "Moussa Ba"},
			},
			[]models.Owner{{ID: "o1", Name: "Fatou Ndiaye"}},
			[]models.Building{{ID: "b1", OwnerID: "o1", Name: "Residence Niayes"}},
			[]models.Collector{{ID: "c1", Name: "Ibrahima Sarr", CommissionRate: decimal.NewFromInt(10)}},
		)
	}
	if err := store.SaveApartment(ctx, models.Apartment{
		ID:         "a1",
		BuildingID: "b1",
		Number:     "A-101",
		Status:     models.ApartmentStatusFree,
	}); err != nil {
		log.Fatal(err)
	}
}
