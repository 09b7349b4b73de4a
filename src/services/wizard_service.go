package services

import (
	"github.com/emris02/tchakeda-sub000/src/models"
	"github.com/emris02/tchakeda-sub000/src/storage"
	"github.com/shopspring/decimal"
)

// WizardStep enumerates the ordered steps of a payment submission
type WizardStep int

const (
	StepSelection    WizardStep = iota + 1 // Owner, building, apartment, tenant cascade
	StepDetails                            // Period, date, amount, method, rate, duplicate gate
	StepConfirmation                       // Explicit acknowledgement (and override, if duplicated)
)

func (s WizardStep) String() string {
	switch s {
	case StepSelection:
		return "selection"
	case StepDetails:
		return "details"
	case StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// PaymentForm holds everything entered across the wizard steps
type PaymentForm struct {
	OwnerID     string
	BuildingID  string
	ApartmentID string
	TenantID    string

	// Derived rental context, auto-populated from the apartment's
	// active rental on selection
	RentalID    string
	CollectorID string

	Period         string // YYYY-MM token
	PaymentDate    string // YYYY-MM-DD
	Amount         decimal.Decimal
	Method         models.PaymentMethod
	CommissionRate decimal.Decimal

	DuplicateOverride bool
	Acknowledged      bool
}

// SubmissionWizard is the 3-step guarded workflow gating payment
// capture. Forward motion requires the current step to validate;
// backward motion is always permitted and does not re-validate. Each
// step's messages are recomputed on every relevant field change.
type SubmissionWizard struct {
	snap    *storage.Snapshot
	step    WizardStep
	form    PaymentForm
	rateSet bool
}

// NewSubmissionWizard starts a wizard at the selection step, over one
// snapshot of the collections.
func NewSubmissionWizard(snap *storage.Snapshot) *SubmissionWizard {
	return &SubmissionWizard{snap: snap, step: StepSelection}
}

// CurrentStep returns the step the wizard is on
func (w *SubmissionWizard) CurrentStep() WizardStep {
	return w.step
}

// Form returns the current form values
func (w *SubmissionWizard) Form() PaymentForm {
	return w.form
}

// Snapshot returns the collection snapshot the wizard validates against
func (w *SubmissionWizard) Snapshot() *storage.Snapshot {
	return w.snap
}

// SetOwner selects the owner and resets the downstream cascade:
// building, apartment, tenant and the derived rental context.
func (w *SubmissionWizard) SetOwner(id string) {
	if w.form.OwnerID == id {
		return
	}
	w.form.OwnerID = id
	w.form.BuildingID = ""
	w.resetApartmentContext()
}

// SetBuilding selects the building and resets apartment and tenant
func (w *SubmissionWizard) SetBuilding(id string) {
	if w.form.BuildingID == id {
		return
	}
	w.form.BuildingID = id
	w.resetApartmentContext()
}

func (w *SubmissionWizard) resetApartmentContext() {
	w.form.ApartmentID = ""
	w.form.TenantID = ""
	w.form.RentalID = ""
	w.form.CollectorID = ""
}

// SetApartment selects the apartment. If an active rental exists for it,
// the tenant, collector, building and rental context are auto-populated
// from the rental.
func (w *SubmissionWizard) SetApartment(id string) {
	if w.form.ApartmentID == id {
		return
	}
	w.form.ApartmentID = id
	w.form.TenantID = ""
	w.form.RentalID = ""
	w.form.CollectorID = ""

	rental := w.snap.ActiveRentalFor(id)
	if rental == nil {
		return
	}
	w.form.RentalID = rental.ID
	w.form.TenantID = rental.TenantID
	w.form.CollectorID = rental.CollectorID
	if w.form.BuildingID == "" {
		w.form.BuildingID = rental.BuildingID
	}
	if !w.rateSet {
		rate, _ := NewResolver(w.snap).CollectorRate(rental.CollectorID)
		w.form.CommissionRate = rate
	}
}

// SetTenant selects the tenant
func (w *SubmissionWizard) SetTenant(id string) {
	w.form.TenantID = id
}

// SetPeriod sets the billing month token
func (w *SubmissionWizard) SetPeriod(token string) {
	w.form.Period = token
}

// SetPaymentDate sets the date the payment was received
func (w *SubmissionWizard) SetPaymentDate(date string) {
	w.form.PaymentDate = date
}

// SetAmount sets the gross amount
func (w *SubmissionWizard) SetAmount(amount decimal.Decimal) {
	w.form.Amount = amount
}

// SetMethod sets the payment method
func (w *SubmissionWizard) SetMethod(method models.PaymentMethod) {
	w.form.Method = method
}

// SetCommissionRate overrides the commission rate for this payment
func (w *SubmissionWizard) SetCommissionRate(rate decimal.Decimal) {
	w.form.CommissionRate = rate
	w.rateSet = true
}

// SetDuplicateOverride records the user's decision to accept a second
// payment for the same apartment and period.
func (w *SubmissionWizard) SetDuplicateOverride(override bool) {
	w.form.DuplicateOverride = override
}

// SetAcknowledged records the explicit confirmation acknowledgement
func (w *SubmissionWizard) SetAcknowledged(ack bool) {
	w.form.Acknowledged = ack
}

// Duplicate returns the already-accepted payment for the selected
// apartment and period, if any.
func (w *SubmissionWizard) Duplicate() *models.PaymentRecord {
	period, err := models.ParsePeriod(w.form.Period)
	if err != nil {
		return nil
	}
	return findDuplicateIn(w.snap.Payments, w.form.ApartmentID, period)
}

// StepErrors returns the current validation messages for a step
func (w *SubmissionWizard) StepErrors(step WizardStep) []string {
	return w.validateStep(step)
}

// CanProceed reports whether the current step validates
func (w *SubmissionWizard) CanProceed() bool {
	return len(w.validateStep(w.step)) == 0
}

func (w *SubmissionWizard) validateStep(step WizardStep) []string {
	var errs []string
	switch step {
	case StepSelection:
		if w.form.OwnerID == "" {
			errs = append(errs, "select an owner")
		}
		if w.form.BuildingID == "" {
			errs = append(errs, "select a building")
		}
		if w.form.ApartmentID == "" {
			errs = append(errs, "select an apartment")
		}
		if w.form.TenantID == "" {
			errs = append(errs, "select a tenant")
		}
	case StepDetails:
		if _, err := models.ParsePeriod(w.form.Period); err != nil {
			errs = append(errs, "period must be YYYY-MM")
		}
		if _, ok := parseRentalDate(w.form.PaymentDate); !ok {
			errs = append(errs, "payment date must be YYYY-MM-DD")
		}
		if !w.form.Amount.IsPositive() {
			errs = append(errs, "amount must be greater than zero")
		}
		if w.form.Method == "" {
			errs = append(errs, "select a payment method")
		}
		if w.form.CommissionRate.IsNegative() {
			errs = append(errs, "commission rate cannot be negative")
		}
		if dup := w.Duplicate(); dup != nil && !w.form.DuplicateOverride {
			errs = append(errs, "a payment for this apartment and period already exists ("+dup.ID+"); confirm the override to proceed")
		}
	case StepConfirmation:
		if !w.form.Acknowledged {
			errs = append(errs, "confirm the payment details")
		}
		if dup := w.Duplicate(); dup != nil && !w.form.DuplicateOverride {
			errs = append(errs, "the duplicate payment ("+dup.ID+") requires the override flag")
		}
	}
	return errs
}

// Next advances to the following step if the current one validates
func (w *SubmissionWizard) Next() error {
	if errs := w.validateStep(w.step); len(errs) > 0 {
		return stepValidationError(w.step, errs)
	}
	if w.step < StepConfirmation {
		w.step++
	}
	return nil
}

// Previous moves back one step. Backward motion never re-validates.
func (w *SubmissionWizard) Previous() {
	if w.step > StepSelection {
		w.step--
	}
}

// Jump moves directly to a step. Jumping forward validates every step
// from the current one up to the target, halting at the first failure;
// jumping backward is always permitted.
func (w *SubmissionWizard) Jump(target WizardStep) error {
	if target < StepSelection || target > StepConfirmation {
		return stepValidationError(target, []string{"unknown step"})
	}
	if target <= w.step {
		w.step = target
		return nil
	}
	for step := w.step; step < target; step++ {
		if errs := w.validateStep(step); len(errs) > 0 {
			return stepValidationError(step, errs)
		}
	}
	w.step = target
	return nil
}

// ValidateAll checks every step in order, halting at the first failure.
// SavePayment requires this to pass before accepting the form.
func (w *SubmissionWizard) ValidateAll() error {
	for step := StepSelection; step <= StepConfirmation; step++ {
		if errs := w.validateStep(step); len(errs) > 0 {
			return stepValidationError(step, errs)
		}
	}
	return nil
}

func stepValidationError(step WizardStep, messages []string) *ValidationError {
	fields := make([]FieldError, 0, len(messages))
	for _, msg := range messages {
		fields = append(fields, FieldError{Field: step.String(), Message: msg})
	}
	return newValidationError(ValidationInvalidForm, fields...)
}

// PaymentPreview carries the live-computed derived fields for the
// values entered so far.
type PaymentPreview struct {
	CommissionRate decimal.Decimal
	Commission     decimal.Decimal
	Net            decimal.Decimal
	IsLate         bool
	DaysLate       int
}

// Preview recomputes commission, net and lateness for the amount,
// period and date currently entered. Safe to call at any step.
func (w *SubmissionWizard) Preview() PaymentPreview {
	rate := w.form.CommissionRate
	if !w.rateSet {
		resolved, ok := NewResolver(w.snap).CollectorRate(w.form.CollectorID)
		if ok || rate.IsZero() {
			rate = resolved
		}
	}
	preview := PaymentPreview{CommissionRate: rate}
	preview.Commission, preview.Net = SplitAmount(w.form.Amount, rate)

	if period, err := models.ParsePeriod(w.form.Period); err == nil {
		if date, ok := parseRentalDate(w.form.PaymentDate); ok {
			preview.IsLate, preview.DaysLate = ComputeLateness(period, &date)
		}
	}
	return preview
}
