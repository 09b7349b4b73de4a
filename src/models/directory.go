package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant represents a person renting an apartment
type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Email     string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Owner represents the owner of one or more buildings
type Owner struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Building represents a building holding apartments
type Building struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Collector represents a rent collector paid a commission percentage
type Collector struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"` // Percent, 0-100
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// EffectiveRate returns the collector's commission rate, falling back to
// the default when the stored rate is outside [0, 100].
func (c *Collector) EffectiveRate() decimal.Decimal {
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return DefaultCommissionRate
	}
	return c.CommissionRate
}
