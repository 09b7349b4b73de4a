package storage

import (
	"context"

	"github.com/emris02/tchakeda-sub000/src/models"
)

// MemoryStore is an in-memory Store used by tests, demo flows and as the
// substrate behind the reconciliation engine's optimistic fallback cache.
// Single logical writer assumed; there is no locking.
type MemoryStore struct {
	rentals    []models.Rental
	payments   []models.PaymentRecord
	apartments []models.Apartment
	tenants    []models.Tenant
	owners     []models.Owner
	buildings  []models.Building
	collectors []models.Collector
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed replaces the directory collections in one call
func (m *MemoryStore) Seed(tenants []models.Tenant, owners []models.Owner, buildings []models.Building, collectors []models.Collector) {
	m.tenants = tenants
	m.owners = owners
	m.buildings = buildings
	m.collectors = collectors
}

// Snapshot returns a copy of every collection
func (m *MemoryStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	return &Snapshot{
		Rentals:    append([]models.Rental(nil), m.rentals...),
		Payments:   append([]models.PaymentRecord(nil), m.payments...),
		Apartments: append([]models.Apartment(nil), m.apartments...),
		Tenants:    append([]models.Tenant(nil), m.tenants...),
		Owners:     append([]models.Owner(nil), m.owners...),
		Buildings:  append([]models.Building(nil), m.buildings...),
		Collectors: append([]models.Collector(nil), m.collectors...),
	}, nil
}

// Rentals returns all rentals
func (m *MemoryStore) Rentals(ctx context.Context) ([]models.Rental, error) {
	return append([]models.Rental(nil), m.rentals...), nil
}

// RentalByID returns the rental with the given id
func (m *MemoryStore) RentalByID(ctx context.Context, id string) (*models.Rental, error) {
	for i := range m.rentals {
		if m.rentals[i].ID == id {
			r := m.rentals[i]
			return &r, nil
		}
	}
	return nil, nil
}

// SaveRental inserts or replaces a rental by id
func (m *MemoryStore) SaveRental(ctx context.Context, r models.Rental) error {
	for i := range m.rentals {
		if m.rentals[i].ID == r.ID {
			m.rentals[i] = r
			return nil
		}
	}
	m.rentals = append(m.rentals, r)
	return nil
}

// ReplaceRentals swaps the whole rentals collection
func (m *MemoryStore) ReplaceRentals(ctx context.Context, rentals []models.Rental) error {
	m.rentals = append([]models.Rental(nil), rentals...)
	return nil
}

// Payments returns all payment records
func (m *MemoryStore) Payments(ctx context.Context) ([]models.PaymentRecord, error) {
	return append([]models.PaymentRecord(nil), m.payments...), nil
}

// PaymentByID returns the payment with the given id
func (m *MemoryStore) PaymentByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			p := m.payments[i]
			return &p, nil
		}
	}
	return nil, nil
}

// SavePayment inserts or replaces a payment by id
func (m *MemoryStore) SavePayment(ctx context.Context, p models.PaymentRecord) error {
	for i := range m.payments {
		if m.payments[i].ID == p.ID {
			m.payments[i] = p
			return nil
		}
	}
	m.payments = append(m.payments, p)
	return nil
}

// ReplacePayments swaps the whole payments collection
func (m *MemoryStore) ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error {
	m.payments = append([]models.PaymentRecord(nil), payments...)
	return nil
}

// Apartments returns all apartments
func (m *MemoryStore) Apartments(ctx context.Context) ([]models.Apartment, error) {
	return append([]models.Apartment(nil), m.apartments...), nil
}

// ApartmentByID returns the apartment with the given id
func (m *MemoryStore) ApartmentByID(ctx context.Context, id string) (*models.Apartment, error) {
	for i := range m.apartments {
		if m.apartments[i].ID == id {
			a := m.apartments[i]
			return &a, nil
		}
	}
	return nil, nil
}

// SaveApartment inserts or replaces an apartment by id
func (m *MemoryStore) SaveApartment(ctx context.Context, a models.Apartment) error {
	for i := range m.apartments {
		if m.apartments[i].ID == a.ID {
			m.apartments[i] = a
			return nil
		}
	}
	m.apartments = append(m.apartments, a)
	return nil
}

// ReplaceApartments swaps the whole apartments collection
func (m *MemoryStore) ReplaceApartments(ctx context.Context, apartments []models.Apartment) error {
	m.apartments = append([]models.Apartment(nil), apartments...)
	return nil
}

// Tenants returns all tenants
func (m *MemoryStore) Tenants(ctx context.Context) ([]models.Tenant, error) {
	return append([]models.Tenant(nil), m.tenants...), nil
}

// Owners returns all owners
func (m *MemoryStore) Owners(ctx context.Context) ([]models.Owner, error) {
	return append([]models.Owner(nil), m.owners...), nil
}

// Buildings returns all buildings
func (m *MemoryStore) Buildings(ctx context.Context) ([]models.Building, error) {
	return append([]models.Building(nil), m.buildings...), nil
}

// Collectors returns all collectors
func (m *MemoryStore) Collectors(ctx context.Context) ([]models.Collector, error) {
	return append([]models.Collector(nil), m.collectors...), nil
}
