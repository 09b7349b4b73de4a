package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/emris02/tchakeda-sub000/src/models"
)

// Collection table names
const (
	tableRentals    = "rentals"
	tablePayments   = "payments"
	tableApartments = "apartments"
	tableTenants    = "tenants"
	tableOwners     = "owners"
	tableBuildings  = "buildings"
	tableCollectors = "collectors"
)

// PostgresStore persists each collection as a keyed document table
// (id + JSON document), matching the flat record-store shape the core
// expects. Callers own the *sql.DB lifecycle.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the collection tables if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	tables := []string{
		tableRentals, tablePayments, tableApartments,
		tableTenants, tableOwners, tableBuildings, tableCollectors,
	}
	for _, table := range tables {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id  TEXT PRIMARY KEY,
				doc JSONB NOT NULL
			)
		`, table)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// all returns every document in a collection
func (s *PostgresStore) all(ctx context.Context, table string) ([][]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// byID returns one document, or nil when the id is absent
func (s *PostgresStore) byID(ctx context.Context, table, id string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, table)
	var doc []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", table, id, err)
	}
	return doc, nil
}

// save inserts or replaces one document by id
func (s *PostgresStore) save(ctx context.Context, table, id string, doc []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`, table)
	if _, err := s.db.ExecContext(ctx, query, id, doc); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", table, id, err)
	}
	return nil
}

// replaceAll swaps a whole collection in one transaction
func (s *PostgresStore) replaceAll(ctx context.Context, table string, ids []string, docs [][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace of %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, table)
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, insert, id, docs[i]); err != nil {
			return fmt.Errorf("failed to insert %s/%s: %w", table, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace of %s: %w", table, err)
	}
	return nil
}

// Snapshot reads every collection once
func (s *PostgresStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error
	if snap.Rentals, err = s.Rentals(ctx); err != nil {
		return nil, err
	}
	if snap.Payments, err = s.Payments(ctx); err != nil {
		return nil, err
	}
	if snap.Apartments, err = s.Apartments(ctx); err != nil {
		return nil, err
	}
	if snap.Tenants, err = s.Tenants(ctx); err != nil {
		return nil, err
	}
	if snap.Owners, err = s.Owners(ctx); err != nil {
		return nil, err
	}
	if snap.Buildings, err = s.Buildings(ctx); err != nil {
		return nil, err
	}
	if snap.Collectors, err = s.Collectors(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// Rentals returns all rentals
func (s *PostgresStore) Rentals(ctx context.Context) ([]models.Rental, error) {
	docs, err := s.all(ctx, tableRentals)
	if err != nil {
		return nil, err
	}
	rentals := make([]models.Rental, 0, len(docs))
	for _, doc := range docs {
		var r models.Rental
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("failed to decode rental: %w", err)
		}
		rentals = append(rentals, r)
	}
	return rentals, nil
}

// RentalByID returns the rental with the given id, or nil
func (s *PostgresStore) RentalByID(ctx context.Context, id string) (*models.Rental, error) {
	doc, err := s.byID(ctx, tableRentals, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var r models.Rental
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("failed to decode rental %s: %w", id, err)
	}
	return &r, nil
}

// SaveRental inserts or replaces a rental
func (s *PostgresStore) SaveRental(ctx context.Context, r models.Rental) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode rental %s: %w", r.ID, err)
	}
	return s.save(ctx, tableRentals, r.ID, doc)
}

// ReplaceRentals swaps the whole rentals collection
func (s *PostgresStore) ReplaceRentals(ctx context.Context, rentals []models.Rental) error {
	ids := make([]string, len(rentals))
	docs := make([][]byte, len(rentals))
	for i, r := range rentals {
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode rental %s: %w", r.ID, err)
		}
		ids[i], docs[i] = r.ID, doc
	}
	return s.replaceAll(ctx, tableRentals, ids, docs)
}

// Payments returns all payment records
func (s *PostgresStore) Payments(ctx context.Context) ([]models.PaymentRecord, error) {
	docs, err := s.all(ctx, tablePayments)
	if err != nil {
		return nil, err
	}
	payments := make([]models.PaymentRecord, 0, len(docs))
	for _, doc := range docs {
		var p models.PaymentRecord
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("failed to decode payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// PaymentByID returns the payment with the given id, or nil
func (s *PostgresStore) PaymentByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	doc, err := s.byID(ctx, tablePayments, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var p models.PaymentRecord
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payment %s: %w", id, err)
	}
	return &p, nil
}

// SavePayment inserts or replaces a payment record
func (s *PostgresStore) SavePayment(ctx context.Context, p models.PaymentRecord) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payment %s: %w", p.ID, err)
	}
	return s.save(ctx, tablePayments, p.ID, doc)
}

// ReplacePayments swaps the whole payments collection
func (s *PostgresStore) ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error {
	ids := make([]string, len(payments))
	docs := make([][]byte, len(payments))
	for i, p := range payments {
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode payment %s: %w", p.ID, err)
		}
		ids[i], docs[i] = p.ID, doc
	}
	return s.replaceAll(ctx, tablePayments, ids, docs)
}

// Apartments returns all apartments
func (s *PostgresStore) Apartments(ctx context.Context) ([]models.Apartment, error) {
	docs, err := s.all(ctx, tableApartments)
	if err != nil {
		return nil, err
	}
	apartments := make([]models.Apartment, 0, len(docs))
	for _, doc := range docs {
		var a models.Apartment
		if err := json.Unmarshal(doc, &a); err != nil {
			return nil, fmt.Errorf("failed to decode apartment: %w", err)
		}
		apartments = append(apartments, a)
	}
	return apartments, nil
}

// ApartmentByID returns the apartment with the given id, or nil
func (s *PostgresStore) ApartmentByID(ctx context.Context, id string) (*models.Apartment, error) {
	doc, err := s.byID(ctx, tableApartments, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var a models.Apartment
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("failed to decode apartment %s: %w", id, err)
	}
	return &a, nil
}

// SaveApartment inserts or replaces an apartment
func (s *PostgresStore) SaveApartment(ctx context.Context, a models.Apartment) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode apartment %s: %w", a.ID, err)
	}
	return s.save(ctx, tableApartments, a.ID, doc)
}

// ReplaceApartments swaps the whole apartments collection
func (s *PostgresStore) ReplaceApartments(ctx context.Context, apartments []models.Apartment) error {
	ids := make([]string, len(apartments))
	docs := make([][]byte, len(apartments))
	for i, a := range apartments {
		doc, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode apartment %s: %w", a.ID, err)
		}
		ids[i], docs[i] = a.ID, doc
	}
	return s.replaceAll(ctx, tableApartments, ids, docs)
}

// Tenants returns all tenants
func (s *PostgresStore) Tenants(ctx context.Context) ([]models.Tenant, error) {
	docs, err := s.all(ctx, tableTenants)
	if err != nil {
		return nil, err
	}
	tenants := make([]models.Tenant, 0, len(docs))
	for _, doc := range docs {
		var t models.Tenant
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("failed to decode tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

// Owners returns all owners
func (s *PostgresStore) Owners(ctx context.Context) ([]models.Owner, error) {
	docs, err := s.all(ctx, tableOwners)
	if err != nil {
		return nil, err
	}
	owners := make([]models.Owner, 0, len(docs))
	for _, doc := range docs {
		var o models.Owner
		if err := json.Unmarshal(doc, &o); err != nil {
			return nil, fmt.Errorf("failed to decode owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, nil
}

// Buildings returns all buildings
func (s *PostgresStore) Buildings(ctx context.Context) ([]models.Building, error) {
	docs, err := s.all(ctx, tableBuildings)
	if err != nil {
		return nil, err
	}
	buildings := make([]models.Building, 0, len(docs))
	for _, doc := range docs {
		var b models.Building
		if err := json.Unmarshal(doc, &b); err != nil {
			return nil, fmt.Errorf("failed to decode building: %w", err)
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}

// Collectors returns all collectors
func (s *PostgresStore) Collectors(ctx context.Context) ([]models.Collector, error) {
	docs, err := s.all(ctx, tableCollectors)
	if err != nil {
		return nil, err
	}
	collectors := make([]models.Collector, 0, len(docs))
	for _, doc := range docs {
		var c models.Collector
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("failed to decode collector: %w", err)
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}
