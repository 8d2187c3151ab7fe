package domain

import "time"

// Hold is a provisional, time-limited reservation of a booth prior to
// checkout. An expired hold is inert: it never blocks availability and is
// eventually reclaimed by the sweep.
type Hold struct {
	ID         string
	TenantID   string
	BoothID    string
	CustomerID string
	Interval   Interval
	PriceTotal int64
	Breakdown  PriceBreakdown
	// ExtendsRentalID marks a deferred online-payment extension of an
	// existing rental instead of a fresh booking.
	ExtendsRentalID string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Expired reports whether the hold is past its TTL at the given instant.
func (h Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// IsExtension reports whether the hold defers an online rental extension.
func (h Hold) IsExtension() bool {
	return h.ExtendsRentalID != ""
}
