package models

import (
	"strings"
	"time"
)

// Well-known apartment statuses. Status is free text in the store, so
// occupancy checks match substrings rather than comparing equality.
const (
	ApartmentStatusFree         = "free"
	ApartmentStatusRent         = "rent"
	ApartmentStatusSale         = "sale"
	ApartmentStatusConstruction = "construction"
)

// occupiedTokens is the vocabulary that marks an apartment as taken.
// "loué"/"loue" cover records written by the French-language admin UI.
var occupiedTokens = []string{"rent", "occupied", "leased", "loué", "loue"}

// Apartment represents a leasable unit inside a building. Its occupancy
// fields are written only by the rental lifecycle; every other component
// treats them as read-only.
type Apartment struct {
	ID         string `json:"id" db:"id"`
	BuildingID string `json:"building_id" db:"building_id"`
	Number     string `json:"number" db:"number"`

	// Status is free text; see IsOccupied
	Status string `json:"status" db:"status"`

	// TenantName is the display name of the current occupant, cleared
	// when the rental ends or is cancelled.
	TenantName string `json:"tenant_name,omitempty" db:"tenant_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOccupied reports whether the apartment's status matches the occupied
// vocabulary, case-insensitively and by substring.
func (a *Apartment) IsOccupied() bool {
	status := strings.ToLower(a.Status)
	for _, token := range occupiedTokens {
		if strings.Contains(status, token) {
			return true
		}
	}
	return false
}
