package services

import (
	"fmt"

	"github.com/emris02/tchakeda-sub000/src/models"
	"github.com/emris02/tchakeda-sub000/src/storage"
	"github.com/shopspring/decimal"
)

// EntityKind names a resolvable entity family
type EntityKind string

const (
	KindTenant    EntityKind = "Tenant"
	KindApartment EntityKind = "Apartment"
	KindBuilding  EntityKind = "Building"
	KindOwner     EntityKind = "Owner"
	KindCollector EntityKind = "Collector"
)

// DisplayInfo is the best-effort display data for a referenced entity.
// Resolved is false when the resolver fell back to a hint or placeholder.
type DisplayInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
}

// ResolveHints carries denormalized values embedded in the calling record.
// Payment payloads in the wild are frequently missing foreign keys; hints
// let the resolver synthesize a stand-in instead of failing the read.
type ResolveHints struct {
	Name        string // Denormalized display name carried on the record
	ApartmentID string // Related apartment, for derivation via its rental
	RentalID    string // Related rental, for derivation of its parties
}

// Resolver performs best-effort lookups of display data and foreign keys
// over one snapshot of the collections. It never fails: a miss degrades
// through derivation, hints and finally a deterministic placeholder.
type Resolver struct {
	snap *storage.Snapshot
}

// NewResolver creates a resolver over a collection snapshot
func NewResolver(snap *storage.Snapshot) *Resolver {
	return &Resolver{snap: snap}
}

// Resolve returns display data for the entity of the given kind and id.
// Lookup order: canonical store, derivation from a related entity,
// denormalized hint, placeholder.
func (r *Resolver) Resolve(kind EntityKind, id string, hints ResolveHints) DisplayInfo {
	if info, ok := r.lookup(kind, id); ok {
		return info
	}
	if info, ok := r.derive(kind, hints); ok {
		return info
	}
	if hints.Name != "" {
		return DisplayInfo{ID: id, Name: hints.Name}
	}
	return placeholder(kind, id)
}

// lookup resolves by primary id against the canonical collections
func (r *Resolver) lookup(kind EntityKind, id string) (DisplayInfo, bool) {
	if id == "" {
		return DisplayInfo{}, false
	}
	switch kind {
	case KindTenant:
		if t := r.snap.TenantByID(id); t != nil {
			return DisplayInfo{ID: t.ID, Name: t.Name, Resolved: true}, true
		}
	case KindApartment:
		if a := r.snap.ApartmentByID(id); a != nil {
			name := a.Number
			if name == "" {
				name = a.ID
			}
			return DisplayInfo{ID: a.ID, Name: name, Resolved: true}, true
		}
	case KindBuilding:
		if b := r.snap.BuildingByID(id); b != nil {
			return DisplayInfo{ID: b.ID, Name: b.Name, Resolved: true}, true
		}
	case KindOwner:
		if o := r.snap.OwnerByID(id); o != nil {
			return DisplayInfo{ID: o.ID, Name: o.Name, Resolved: true}, true
		}
	case KindCollector:
		if c := r.snap.CollectorByID(id); c != nil {
			return DisplayInfo{ID: c.ID, Name: c.Name, Resolved: true}, true
		}
	}
	return DisplayInfo{}, false
}

// derive resolves through a related entity already in hand
func (r *Resolver) derive(kind EntityKind, hints ResolveHints) (DisplayInfo, bool) {
	switch kind {
	case KindTenant:
		if rental := r.relatedRental(hints); rental != nil && rental.TenantID != "" {
			return r.lookup(KindTenant, rental.TenantID)
		}
	case KindCollector:
		if rental := r.relatedRental(hints); rental != nil && rental.CollectorID != "" {
			return r.lookup(KindCollector, rental.CollectorID)
		}
	case KindBuilding:
		if hints.ApartmentID != "" {
			if a := r.snap.ApartmentByID(hints.ApartmentID); a != nil {
				return r.lookup(KindBuilding, a.BuildingID)
			}
		}
		if rental := r.relatedRental(hints); rental != nil && rental.BuildingID != "" {
			return r.lookup(KindBuilding, rental.BuildingID)
		}
	case KindOwner:
		if hints.ApartmentID != "" {
			if a := r.snap.ApartmentByID(hints.ApartmentID); a != nil {
				if b := r.snap.BuildingByID(a.BuildingID); b != nil {
					return r.lookup(KindOwner, b.OwnerID)
				}
			}
		}
	}
	return DisplayInfo{}, false
}

// relatedRental finds the rental a hint points at, directly by id or via
// the apartment's active rental.
func (r *Resolver) relatedRental(hints ResolveHints) *models.Rental {
	if hints.RentalID != "" {
		if rental := r.snap.RentalByID(hints.RentalID); rental != nil {
			return rental
		}
	}
	if hints.ApartmentID != "" {
		return r.snap.ActiveRentalFor(hints.ApartmentID)
	}
	return nil
}

// TenantIDFor recovers the tenant foreign key for a payment record:
// the record's own id, then the referenced rental, then the apartment's
// active rental. Empty when nothing resolves.
func (r *Resolver) TenantIDFor(p *models.PaymentRecord) string {
	if p.TenantID != "" && r.snap.TenantByID(p.TenantID) != nil {
		return p.TenantID
	}
	if rental := r.relatedRental(ResolveHints{RentalID: p.RentalID, ApartmentID: p.ApartmentID}); rental != nil && rental.TenantID != "" {
		return rental.TenantID
	}
	return p.TenantID
}

// CollectorRate returns the canonical commission rate for a collector.
// The second return is false when the collector did not resolve and the
// default rate applies.
func (r *Resolver) CollectorRate(id string) (decimal.Decimal, bool) {
	if id != "" {
		if c := r.snap.CollectorByID(id); c != nil {
			return c.EffectiveRate(), true
		}
	}
	return models.DefaultCommissionRate, false
}

// placeholder is the deterministic fallback display value
func placeholder(kind EntityKind, id string) DisplayInfo {
	if id == "" {
		return DisplayInfo{Name: "-"}
	}
	return DisplayInfo{ID: id, Name: fmt.Sprintf("%s %s", kind, id)}
}
