package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a rent payment record
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"    // Collected and confirmed
	PaymentStatusPending PaymentStatus = "pending" // Captured, awaiting confirmation
	PaymentStatusLate    PaymentStatus = "late"    // Collected after the period ended
)

// PaymentMethod represents the method used to pay rent
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodCheck       PaymentMethod = "check"
	PaymentMethodTransfer    PaymentMethod = "transfer"
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodCard        PaymentMethod = "card"
)

// DefaultCommissionRate is the collector commission percentage applied
// when no collector can be resolved for a payment.
var DefaultCommissionRate = decimal.NewFromInt(8)

// PaymentRecord represents a rent payment for one apartment and period.
// The derived fields (Commission, Net, Status, DaysLate) are recomputed
// at read time from the canonical collector rate and calendar arithmetic;
// the persisted values are a cache, not a source of truth, because the
// store is known to contain stale or partially-filled records.
type PaymentRecord struct {
	ID          string `json:"id" db:"id"`
	RentalID    string `json:"rental_id,omitempty" db:"rental_id"`
	TenantID    string `json:"tenant_id,omitempty" db:"tenant_id"`
	CollectorID string `json:"collector_id,omitempty" db:"collector_id"`
	OwnerID     string `json:"owner_id,omitempty" db:"owner_id"`
	BuildingID  string `json:"building_id,omitempty" db:"building_id"`
	ApartmentID string `json:"apartment_id" db:"apartment_id"`

	Period        Period          `json:"period" db:"period"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty" db:"payment_date"`

	// Derived fields, recomputed on read
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	Commission     decimal.Decimal `json:"commission" db:"commission"`
	Net            decimal.Decimal `json:"net" db:"net"`
	Status         PaymentStatus   `json:"status" db:"status"`
	DaysLate       int             `json:"days_late" db:"days_late"`

	// DuplicateOverride records the explicit user decision to keep a
	// second payment for the same apartment and period.
	DuplicateOverride bool `json:"duplicate_override,omitempty" db:"duplicate_override"`

	// TenantName is a denormalized display value carried on payloads
	// whose tenant foreign key is missing.
	TenantName string `json:"tenant_name,omitempty" db:"tenant_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsPending returns true if the payment awaits confirmation
func (p *PaymentRecord) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// SamePeriodAs reports whether the record targets the given apartment and
// billing month, the duplicate-detection identity.
func (p *PaymentRecord) SamePeriodAs(apartmentID string, period Period) bool {
	return p.ApartmentID == apartmentID && p.Period == period
}

// PaymentRecordBuilder helps construct payment records
type PaymentRecordBuilder struct {
	record *PaymentRecord
}

// NewPaymentRecordBuilder creates a new payment record builder
func NewPaymentRecordBuilder() *PaymentRecordBuilder {
	now := time.Now()
	return &PaymentRecordBuilder{
		record: &PaymentRecord{
			ID:             uuid.NewString(),
			Status:         PaymentStatusPending,
			CommissionRate: DefaultCommissionRate,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}

// WithRental links the payment to a rental and its parties
func (b *PaymentRecordBuilder) WithRental(r *Rental) *PaymentRecordBuilder {
	b.record.RentalID = r.ID
	b.record.TenantID = r.TenantID
	b.record.CollectorID = r.CollectorID
	b.record.BuildingID = r.BuildingID
	b.record.ApartmentID = r.ApartmentID
	return b
}

// WithParties sets the referenced entities directly
func (b *PaymentRecordBuilder) WithParties(tenantID, collectorID, ownerID, buildingID, apartmentID string) *PaymentRecordBuilder {
	b.record.TenantID = tenantID
	b.record.CollectorID = collectorID
	b.record.OwnerID = ownerID
	b.record.BuildingID = buildingID
	b.record.ApartmentID = apartmentID
	return b
}

// WithPeriod sets the billing month
func (b *PaymentRecordBuilder) WithPeriod(p Period) *PaymentRecordBuilder {
	b.record.Period = p
	return b
}

// WithAmount sets the gross amount
func (b *PaymentRecordBuilder) WithAmount(amount decimal.Decimal) *PaymentRecordBuilder {
	b.record.Amount = amount
	return b
}

// WithMethod sets the payment method
func (b *PaymentRecordBuilder) WithMethod(method PaymentMethod) *PaymentRecordBuilder {
	b.record.PaymentMethod = method
	return b
}

// WithPaymentDate sets the date the payment was received
func (b *PaymentRecordBuilder) WithPaymentDate(date time.Time) *PaymentRecordBuilder {
	b.record.PaymentDate = &date
	return b
}

// WithCommissionRate sets the rate carried on the raw record
func (b *PaymentRecordBuilder) WithCommissionRate(rate decimal.Decimal) *PaymentRecordBuilder {
	b.record.CommissionRate = rate
	return b
}

// WithDuplicateOverride marks the record as an acknowledged duplicate
func (b *PaymentRecordBuilder) WithDuplicateOverride() *PaymentRecordBuilder {
	b.record.DuplicateOverride = true
	return b
}

// WithTenantName carries a denormalized tenant display name
func (b *PaymentRecordBuilder) WithTenantName(name string) *PaymentRecordBuilder {
	b.record.TenantName = name
	return b
}

// Build creates the payment record
func (b *PaymentRecordBuilder) Build() *PaymentRecord {
	return b.record
}
