package storage

import (
	"context"

	"github.com/emris02/tchakeda-sub000/src/models"
)

// Store is the persistence collaborator: a keyed record store with
// get-all, get-by-id, save (insert or replace) and replace-all semantics
// per entity collection. The core never requires transactions from it.
type Store interface {
	Snapshot(ctx context.Context) (*Snapshot, error)

	Rentals(ctx context.Context) ([]models.Rental, error)
	RentalByID(ctx context.Context, id string) (*models.Rental, error)
	SaveRental(ctx context.Context, r models.Rental) error
	ReplaceRentals(ctx context.Context, rentals []models.Rental) error

	Payments(ctx context.Context) ([]models.PaymentRecord, error)
	PaymentByID(ctx context.Context, id string) (*models.PaymentRecord, error)
	SavePayment(ctx context.Context, p models.PaymentRecord) error
	ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error

	Apartments(ctx context.Context) ([]models.Apartment, error)
	ApartmentByID(ctx context.Context, id string) (*models.Apartment, error)
	SaveApartment(ctx context.Context, a models.Apartment) error
	ReplaceApartments(ctx context.Context, apartments []models.Apartment) error

	Tenants(ctx context.Context) ([]models.Tenant, error)
	Owners(ctx context.Context) ([]models.Owner, error)
	Buildings(ctx context.Context) ([]models.Building, error)
	Collectors(ctx context.Context) ([]models.Collector, error)
}

// Snapshot is an immutable read of every collection, taken once per
// operation and passed down explicitly. Resolution never reaches back
// into the store, which keeps data flow visible and testable.
type Snapshot struct {
	Rentals    []models.Rental
	Payments   []models.PaymentRecord
	Apartments []models.Apartment
	Tenants    []models.Tenant
	Owners     []models.Owner
	Buildings  []models.Building
	Collectors []models.Collector
}

// RentalByID returns the rental with the given id, or nil
func (s *Snapshot) RentalByID(id string) *models.Rental {
	for i := range s.Rentals {
		if s.Rentals[i].ID == id {
			return &s.Rentals[i]
		}
	}
	return nil
}

// ApartmentByID returns the apartment with the given id, or nil
func (s *Snapshot) ApartmentByID(id string) *models.Apartment {
	for i := range s.Apartments {
		if s.Apartments[i].ID == id {
			return &s.Apartments[i]
		}
	}
	return nil
}

// TenantByID returns the tenant with the given id, or nil
func (s *Snapshot) TenantByID(id string) *models.Tenant {
	for i := range s.Tenants {
		if s.Tenants[i].ID == id {
			return &s.Tenants[i]
		}
	}
	return nil
}

// OwnerByID returns the owner with the given id, or nil
func (s *Snapshot) OwnerByID(id string) *models.Owner {
	for i := range s.Owners {
		if s.Owners[i].ID == id {
			return &s.Owners[i]
		}
	}
	return nil
}

// BuildingByID returns the building with the given id, or nil
func (s *Snapshot) BuildingByID(id string) *models.Building {
	for i := range s.Buildings {
		if s.Buildings[i].ID == id {
			return &s.Buildings[i]
		}
	}
	return nil
}

// CollectorByID returns the collector with the given id, or nil
func (s *Snapshot) CollectorByID(id string) *models.Collector {
	for i := range s.Collectors {
		if s.Collectors[i].ID == id {
			return &s.Collectors[i]
		}
	}
	return nil
}

// ActiveRentalFor returns the non-terminal rental occupying the given
// apartment, if any. Legacy records without a status count as active.
func (s *Snapshot) ActiveRentalFor(apartmentID string) *models.Rental {
	for i := range s.Rentals {
		r := &s.Rentals[i]
		if r.ApartmentID == apartmentID && r.IsActive() {
			return r
		}
	}
	return nil
}
