package domain

import "time"

type BoothStatus string

const (
	BoothStatusAvailable   BoothStatus = "available"
	BoothStatusReserved    BoothStatus = "reserved"
	BoothStatusRented      BoothStatus = "rented"
	BoothStatusMaintenance BoothStatus = "maintenance"
)

// Booth is a physical rentable unit. Status is derived from active holds and
// rentals; only the maintenance flag is stored.
type Booth struct {
	ID          string
	TenantID    string
	BoothTypeID string
	Label       string
	Maintenance bool
	CreatedAt   time.Time
}

// BoothType carries the commission percentage and the pricing tier set shared
// by its booths. Tier sets are immutable once referenced by an active rental;
// edits create a new version.
type BoothType struct {
	ID            string
	TenantID      string
	Name          string
	CommissionPct float64
	TierVersion   int
	Tiers         []PricingTier
	CreatedAt     time.Time
}
