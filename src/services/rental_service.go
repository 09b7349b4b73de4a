package services

import (
	"context"
	"time"

	"github.com/emris02/tchakeda-sub000/src/models"
	"github.com/emris02/tchakeda-sub000/src/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalService drives the rental lifecycle: it enforces apartment
// availability and interval non-overlap on lease start, and it is the
// only writer of apartment occupancy state.
type RentalService struct {
	store storage.Store
}

// NewRentalService creates a new rental lifecycle service
func NewRentalService(store storage.Store) *RentalService {
	return &RentalService{store: store}
}

// CreateRentalRequest contains parameters for starting a lease
type CreateRentalRequest struct {
	TenantID    string
	ApartmentID string
	BuildingID  string
	CollectorID string
	StartDate   string // YYYY-MM-DD, RFC3339 accepted
	EndDate     string
	Price       decimal.Decimal
	Status      models.RentalStatus // Defaults to active
}

// CancelRentalRequest carries the audit metadata of a cancellation
type CancelRentalRequest struct {
	Type        models.CancellationType
	Reason      string
	InitiatedBy string
}

// rentalDateLayouts are the accepted input date formats, most common first
var rentalDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseRentalDate(value string) (time.Time, bool) {
	for _, layout := range rentalDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsAvailable reports whether the apartment can take a new lease. An
// unknown apartment is not available.
func (s *RentalService) IsAvailable(ctx context.Context, apartmentID string) (bool, error) {
	apartment, err := s.store.ApartmentByID(ctx, apartmentID)
	if err != nil {
		return false, &PersistenceError{Op: "availability check", Err: err}
	}
	if apartment == nil {
		return false, nil
	}
	return !apartment.IsOccupied(), nil
}

// HasOverlap reports whether any non-terminal rental of the apartment
// intersects [start, end], boundaries inclusive.
func (s *RentalService) HasOverlap(ctx context.Context, apartmentID string, start, end time.Time) (bool, error) {
	rentals, err := s.store.Rentals(ctx)
	if err != nil {
		return false, &PersistenceError{Op: "overlap check", Err: err}
	}
	return findOverlap(rentals, apartmentID, start, end) != nil, nil
}

// findOverlap returns the first non-terminal rental of the apartment
// whose interval intersects [start, end]. Legacy records without a
// status count as active.
func findOverlap(rentals []models.Rental, apartmentID string, start, end time.Time) *models.Rental {
	for i := range rentals {
		r := &rentals[i]
		if r.ApartmentID != apartmentID || r.IsTerminal() {
			continue
		}
		if r.OverlapsRange(start, end) {
			return r
		}
	}
	return nil
}

// CreateRental validates and persists a new lease, then marks the
// apartment rented with the tenant's display name. Checks run in a fixed
// order: missing fields, dates, price, apartment existence, availability,
// overlap. The availability check and the write are not atomic; a single
// logical writer is assumed.
func (s *RentalService) CreateRental(ctx context.Context, req CreateRentalRequest) (*models.Rental, error) {
	var missing []FieldError
	if req.TenantID == "" {
		missing = append(missing, FieldError{Field: "tenant_id", Message: "tenant is required"})
	}
	if req.ApartmentID == "" {
		missing = append(missing, FieldError{Field: "apartment_id", Message: "apartment is required"})
	}
	if req.StartDate == "" {
		missing = append(missing, FieldError{Field: "start_date", Message: "start date is required"})
	}
	if req.EndDate == "" {
		missing = append(missing, FieldError{Field: "end_date", Message: "end date is required"})
	}
	if len(missing) > 0 {
		return nil, newValidationError(ValidationMissingFields, missing...)
	}

	start, okStart := parseRentalDate(req.StartDate)
	end, okEnd := parseRentalDate(req.EndDate)
	if !okStart || !okEnd {
		return nil, newValidationError(ValidationInvalidDates,
			FieldError{Field: "dates", Message: "dates must be YYYY-MM-DD"})
	}
	if !start.Before(end) {
		return nil, newValidationError(ValidationInvalidDates,
			FieldError{Field: "dates", Message: "start date must be before end date"})
	}

	if !req.Price.IsPositive() {
		return nil, newValidationError(ValidationInvalidPrice,
			FieldError{Field: "price", Message: "price must be greater than zero"})
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "create rental", Err: err}
	}

	apartment := snap.ApartmentByID(req.ApartmentID)
	if apartment == nil {
		return nil, &NotFoundError{Kind: "apartment", ID: req.ApartmentID}
	}

	if apartment.IsOccupied() {
		conflict := &ConflictError{
			Reason:  ConflictApartmentUnavailable,
			Message: "apartment " + apartment.ID + " is not available (" + apartment.Status + ")",
		}
		if occupying := snap.ActiveRentalFor(apartment.ID); occupying != nil {
			conflict.ResourceID = occupying.ID
		}
		return nil, conflict
	}

	if existing := findOverlap(snap.Rentals, req.ApartmentID, start, end); existing != nil {
		return nil, &ConflictError{
			Reason:     ConflictOverlappingDates,
			ResourceID: existing.ID,
			Message: "apartment " + req.ApartmentID + " already has a rental from " +
				existing.StartDate.Format("2006-01-02") + " to " + existing.EndDate.Format("2006-01-02"),
		}
	}

	status := req.Status
	if status == "" {
		status = models.RentalStatusActive
	}
	now := time.Now()
	rental := models.Rental{
		ID:          uuid.NewString(),
		ApartmentID: req.ApartmentID,
		BuildingID:  req.BuildingID,
		TenantID:    req.TenantID,
		CollectorID: req.CollectorID,
		StartDate:   start,
		EndDate:     end,
		Price:       req.Price,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.SaveRental(ctx, rental); err != nil {
		return nil, &PersistenceError{Op: "create rental", Err: err}
	}

	tenant := NewResolver(snap).Resolve(KindTenant, req.TenantID, ResolveHints{})
	occupied := *apartment
	occupied.Status = models.ApartmentStatusRent
	occupied.TenantName = tenant.Name
	occupied.UpdatedAt = now
	if err := s.store.SaveApartment(ctx, occupied); err != nil {
		return nil, &PersistenceError{Op: "mark apartment rented", Err: err}
	}

	return &rental, nil
}

// EndRental marks a rental ended and releases its apartment. Ended is
// terminal; the release is idempotent, so calling this on an already
// terminal rental re-releases harmlessly.
func (s *RentalService) EndRental(ctx context.Context, id string) (*models.Rental, error) {
	return s.terminate(ctx, id, models.RentalStatusEnded, CancelRentalRequest{})
}

// CancelRental marks a rental cancelled, releases its apartment exactly
// as EndRental does, and records who initiated the cancellation and why.
func (s *RentalService) CancelRental(ctx context.Context, id string, req CancelRentalRequest) (*models.Rental, error) {
	return s.terminate(ctx, id, models.RentalStatusCancelled, req)
}

func (s *RentalService) terminate(ctx context.Context, id string, status models.RentalStatus, audit CancelRentalRequest) (*models.Rental, error) {
	rental, err := s.store.RentalByID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load rental", Err: err}
	}
	if rental == nil {
		return nil, &NotFoundError{Kind: "rental", ID: id}
	}

	now := time.Now()
	rental.Status = status
	rental.UpdatedAt = now
	if status == models.RentalStatusCancelled {
		rental.CancellationType = audit.Type
		if rental.CancellationType == "" && (audit.Reason != "" || audit.InitiatedBy != "") {
			rental.CancellationType = models.CancellationAdministrative
		}
		rental.CancelReason = audit.Reason
		rental.CancelledBy = audit.InitiatedBy
	}

	if err := s.store.SaveRental(ctx, *rental); err != nil {
		return nil, &PersistenceError{Op: "save rental", Err: err}
	}

	apartment, err := s.store.ApartmentByID(ctx, rental.ApartmentID)
	if err != nil {
		return nil, &PersistenceError{Op: "load apartment", Err: err}
	}
	if apartment != nil {
		apartment.Status = models.ApartmentStatusFree
		apartment.TenantName = ""
		apartment.UpdatedAt = now
		if err := s.store.SaveApartment(ctx, *apartment); err != nil {
			return nil, &PersistenceError{Op: "release apartment", Err: err}
		}
	}

	return rental, nil
}
