package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalStatus represents the lifecycle status of a rental
type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"    // Lease in effect
	RentalStatusEnded     RentalStatus = "ended"     // Lease concluded normally
	RentalStatusCancelled RentalStatus = "cancelled" // Lease terminated early
)

// CancellationType distinguishes who initiated a cancellation.
// The apartment release side effect is the same for all of them;
// only the audit trail differs.
type CancellationType string

const (
	CancellationTenantAbandonment  CancellationType = "tenant_abandonment" // Tenant left without notice
	CancellationOwnerEviction      CancellationType = "owner_eviction"     // Owner evicted the tenant
	CancellationCollectorInitiated CancellationType = "collector_initiated"
	CancellationAdministrative     CancellationType = "administrative"
)

// Rental represents a lease of an apartment to a tenant
type Rental struct {
	ID          string `json:"id" db:"id"`
	ApartmentID string `json:"apartment_id" db:"apartment_id"`
	BuildingID  string `json:"building_id" db:"building_id"`
	TenantID    string `json:"tenant_id" db:"tenant_id"`
	CollectorID string `json:"collector_id" db:"collector_id"`

	StartDate time.Time       `json:"start_date" db:"start_date"`
	EndDate   time.Time       `json:"end_date" db:"end_date"`
	Price     decimal.Decimal `json:"price" db:"price"`

	// Status may be empty on records written before the status field
	// existed; consult EffectiveStatus instead of reading it directly.
	Status RentalStatus `json:"status,omitempty" db:"status"`

	// Cancellation audit trail, set only by CancelRental
	CancellationType CancellationType `json:"cancellation_type,omitempty" db:"cancellation_type"`
	CancelReason     string           `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelledBy      string           `json:"cancelled_by,omitempty" db:"cancelled_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus returns the rental status, mapping the legacy empty
// status to active so pre-migration records keep blocking their apartment.
func (r *Rental) EffectiveStatus() RentalStatus {
	if r.Status == "" {
		return RentalStatusActive
	}
	return r.Status
}

// IsTerminal returns true if the rental reached a state it cannot leave
func (r *Rental) IsTerminal() bool {
	s := r.EffectiveStatus()
	return s == RentalStatusEnded || s == RentalStatusCancelled
}

// IsActive returns true if the rental still occupies its apartment
func (r *Rental) IsActive() bool {
	return r.EffectiveStatus() == RentalStatusActive
}

// OverlapsRange checks whether [start, end] intersects the rental's own
// interval. Boundaries are inclusive: a rental ending the day another
// starts counts as overlapping.
func (r *Rental) OverlapsRange(start, end time.Time) bool {
	return !start.After(r.EndDate) && !r.StartDate.After(end)
}
