package services

import (
	"context"
	"math"
	"time"

	"github.com/emris02/tchakeda-sub000/src/models"
	"github.com/emris02/tchakeda-sub000/src/storage"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// SplitAmount splits a gross amount into the collector's commission and
// the owner's net. Rounding happens once, on the commission, so the two
// always sum exactly to the amount.
func SplitAmount(amount, ratePercent decimal.Decimal) (commission, net decimal.Decimal) {
	commission = amount.Mul(ratePercent).Div(oneHundred).Round(0)
	net = amount.Sub(commission)
	return commission, net
}

// ComputeLateness returns whether a payment is late for its period and
// by how many days. Days are counted from the first instant after the
// period's month ends, rounded up. A record with no period or no payment
// date is never late.
func ComputeLateness(period models.Period, paymentDate *time.Time) (isLate bool, daysLate int) {
	if paymentDate == nil || !period.IsValid() {
		return false, 0
	}
	elapsed := paymentDate.Sub(period.NextStart())
	if elapsed <= 0 {
		return false, 0
	}
	daysLate = int(math.Ceil(elapsed.Hours() / 24))
	return daysLate > 0, daysLate
}

// findDuplicateIn returns the canonical existing record for the same
// (apartment, period) pair, the first accepted one.
func findDuplicateIn(payments []models.PaymentRecord, apartmentID string, period models.Period) *models.PaymentRecord {
	if apartmentID == "" || !period.IsValid() {
		return nil
	}
	for i := range payments {
		if payments[i].SamePeriodAs(apartmentID, period) {
			return &payments[i]
		}
	}
	return nil
}

// ReconciliationService computes the commission/net split and lateness
// of rent payments, gates duplicate submissions, and normalizes stored
// records against canonical rules. Persistence failures never discard
// the user's input: the record is kept in an optimistic local cache and
// surfaced as a warning.
type ReconciliationService struct {
	store storage.Store

	// fallback holds records accepted while the store was unreachable
	fallback []models.PaymentRecord
}

// NewReconciliationService creates a new payment reconciliation service
func NewReconciliationService(store storage.Store) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// FindDuplicate returns the canonical already-accepted payment for the
// apartment and period, searching persisted records and the local cache.
func (s *ReconciliationService) FindDuplicate(ctx context.Context, apartmentID string, period models.Period) (*models.PaymentRecord, error) {
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "duplicate check", Err: err}
	}
	if dup := findDuplicateIn(payments, apartmentID, period); dup != nil {
		return dup, nil
	}
	return findDuplicateIn(s.fallback, apartmentID, period), nil
}

// Normalize re-derives a raw record against the canonical rules: missing
// foreign keys are re-resolved through the resolver fallback chain, the
// commission/net split is recomputed from the resolved collector's rate,
// and status/lateness are recomputed from period and payment date. This
// is the single recomputation point; persisted derived fields are only a
// cache and can never desynchronize reads from canonical inputs.
func (s *ReconciliationService) Normalize(snap *storage.Snapshot, raw models.PaymentRecord) models.PaymentRecord {
	resolver := NewResolver(snap)
	rec := raw

	if parsed, err := models.ParsePeriod(string(raw.Period)); err == nil {
		rec.Period = parsed
	}

	hints := ResolveHints{RentalID: raw.RentalID, ApartmentID: raw.ApartmentID}

	rec.TenantID = resolver.TenantIDFor(&raw)
	tenant := resolver.Resolve(KindTenant, rec.TenantID, ResolveHints{
		Name:        raw.TenantName,
		RentalID:    raw.RentalID,
		ApartmentID: raw.ApartmentID,
	})
	rec.TenantName = tenant.Name
	if rec.TenantID == "" && tenant.Resolved {
		rec.TenantID = tenant.ID
	}

	if rec.CollectorID == "" {
		if collector, ok := resolver.derive(KindCollector, hints); ok {
			rec.CollectorID = collector.ID
		}
	}
	if rec.BuildingID == "" {
		if building, ok := resolver.derive(KindBuilding, hints); ok {
			rec.BuildingID = building.ID
		}
	}
	if rec.OwnerID == "" {
		if owner, ok := resolver.derive(KindOwner, hints); ok {
			rec.OwnerID = owner.ID
		}
	}

	// Canonical rate wins; the rate stored on the raw record only holds
	// when no collector resolves. An absent or out-of-range stored rate
	// falls back to the default.
	rate, resolved := resolver.CollectorRate(rec.CollectorID)
	if !resolved {
		rate = storedRateOrDefault(raw.CommissionRate)
	}
	rec.CommissionRate = rate
	rec.Commission, rec.Net = SplitAmount(rec.Amount, rate)

	isLate, days := ComputeLateness(rec.Period, rec.PaymentDate)
	rec.DaysLate = days
	switch {
	case rec.PaymentDate == nil:
		rec.Status = models.PaymentStatusPending
	case raw.Status == models.PaymentStatusPending:
		// Awaiting confirmation is workflow state, not calendar state
		rec.Status = models.PaymentStatusPending
	case isLate:
		rec.Status = models.PaymentStatusLate
	default:
		rec.Status = models.PaymentStatusPaid
	}

	return rec
}

func storedRateOrDefault(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() || rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return models.DefaultCommissionRate
	}
	return rate
}

// SavePaymentResult contains the outcome of a payment submission
type SavePaymentResult struct {
	Record        *models.PaymentRecord
	Warning       string // Non-fatal persistence warning, if any
	CachedLocally bool   // True when the record lives in the fallback cache only
}

// SavePayment accepts a payment from a fully validated submission
// wizard. The duplicate gate applies unless the user explicitly toggled
// the override flag. When the store is unreachable the record is kept in
// the local cache and the result carries a warning instead of an error.
func (s *ReconciliationService) SavePayment(ctx context.Context, w *SubmissionWizard) (*SavePaymentResult, error) {
	if err := w.ValidateAll(); err != nil {
		return nil, err
	}
	form := w.Form()

	period, err := models.ParsePeriod(form.Period)
	if err != nil {
		return nil, newValidationError(ValidationInvalidForm,
			FieldError{Field: "period", Message: err.Error()})
	}

	persisted, err := s.store.Payments(ctx)
	if err != nil {
		// The duplicate gate degrades to the local cache when the store
		// is unreachable; acceptance still goes through below.
		persisted = nil
	}
	dup := findDuplicateIn(append(persisted, s.fallback...), form.ApartmentID, period)
	if dup != nil && !form.DuplicateOverride {
		return nil, &ConflictError{
			Reason:     ConflictDuplicatePayment,
			ResourceID: dup.ID,
			Message:    "a payment for apartment " + form.ApartmentID + " and period " + period.String() + " already exists",
		}
	}

	builder := models.NewPaymentRecordBuilder().
		WithParties(form.TenantID, form.CollectorID, form.OwnerID, form.BuildingID, form.ApartmentID).
		WithPeriod(period).
		WithAmount(form.Amount).
		WithMethod(form.Method).
		WithCommissionRate(form.CommissionRate)
	if date, ok := parseRentalDate(form.PaymentDate); ok {
		builder = builder.WithPaymentDate(date)
	}
	if dup != nil {
		builder = builder.WithDuplicateOverride()
	}
	raw := builder.Build()
	raw.RentalID = form.RentalID
	raw.Status = "" // Derived below

	record := s.Normalize(w.Snapshot(), *raw)

	if err := s.store.SavePayment(ctx, record); err != nil {
		s.fallback = append(s.fallback, record)
		perr := &PersistenceError{Op: "save payment", Err: err}
		return &SavePaymentResult{
			Record:        &record,
			Warning:       "payment kept locally, store unreachable: " + perr.Error(),
			CachedLocally: true,
		}, nil
	}

	return &SavePaymentResult{Record: &record}, nil
}

// ConfirmPayment confirms an already-captured pending payment: the
// payment date is re-stamped to now, the status becomes paid, and the
// commission and lateness are recomputed. Confirming after the period
// end marks the record late even if it was captured on time.
func (s *ReconciliationService) ConfirmPayment(ctx context.Context, id string, now time.Time) (*models.PaymentRecord, error) {
	record, err := s.store.PaymentByID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load payment", Err: err}
	}
	cached := -1
	if record == nil {
		for i := range s.fallback {
			if s.fallback[i].ID == id {
				p := s.fallback[i]
				record, cached = &p, i
				break
			}
		}
	}
	if record == nil {
		return nil, &NotFoundError{Kind: "payment", ID: id}
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		snap = &storage.Snapshot{Payments: s.fallback}
	}

	record.PaymentDate = &now
	record.Status = models.PaymentStatusPaid
	record.UpdatedAt = now
	confirmed := s.Normalize(snap, *record)

	if cached >= 0 {
		s.fallback[cached] = confirmed
		return &confirmed, nil
	}
	if err := s.store.SavePayment(ctx, confirmed); err != nil {
		s.fallback = append(s.fallback, confirmed)
	}
	return &confirmed, nil
}

// ListPayments returns every payment record, persisted and locally
// cached, normalized against the current snapshot. A resolution failure
// never aborts the read; each record degrades independently.
func (s *ReconciliationService) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		snap = &storage.Snapshot{}
	}
	out := make([]models.PaymentRecord, 0, len(snap.Payments)+len(s.fallback))
	for _, p := range snap.Payments {
		out = append(out, s.Normalize(snap, p))
	}
	for _, p := range s.fallback {
		out = append(out, s.Normalize(snap, p))
	}
	return out, nil
}

// PendingFallback returns the records held only in the local cache
func (s *ReconciliationService) PendingFallback() []models.PaymentRecord {
	return append([]models.PaymentRecord(nil), s.fallback...)
}

// FlushFallback retries persisting locally cached records, dropping the
// ones that make it to the store.
func (s *ReconciliationService) FlushFallback(ctx context.Context) int {
	var remaining []models.PaymentRecord
	flushed := 0
	for _, p := range s.fallback {
		if err := s.store.SavePayment(ctx, p); err != nil {
			remaining = append(remaining, p)
			continue
		}
		flushed++
	}
	s.fallback = remaining
	return flushed
}
