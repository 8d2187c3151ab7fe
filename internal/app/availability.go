package app

import (
	"context"
	"time"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

// AvailabilityStore reads the reservations that block a booth. When called
// inside a repository transaction the reads join it, so the conflict check and
// the insert that follows see the same snapshot.
type AvailabilityStore interface {
	ActiveHoldsForBooth(ctx context.Context, tenantID, boothID string, now time.Time) ([]domain.Hold, error)
	OccupyingRentalsForBooth(ctx context.Context, tenantID, boothID string) ([]domain.Rental, error)
}

// AvailabilityChecker decides whether a candidate interval can be booked on a
// booth. It has no side effects; callers run it inside the same transaction
// that creates the hold or rental.
type AvailabilityChecker struct {
	store    AvailabilityStore
	settings TenantSettings
	clock    clock.Clock
}

func NewAvailabilityChecker(store AvailabilityStore, settings TenantSettings, clk clock.Clock) *AvailabilityChecker {
	return &AvailabilityChecker{store: store, settings: settings, clock: clk}
}

// Check returns nil when the interval is bookable, ErrBoothUnavailable on
// overlap with an unexpired ordinary hold or a draft/active/extended rental, and
// ErrGapTooSmall when the tenant's minimum-gap policy would leave a dead sliver
// next to a neighboring booking. excludeID skips one hold or rental, used when
// re-evaluating the record being extended or converted.
func (c *AvailabilityChecker) Check(ctx context.Context, tenantID, boothID string, iv domain.Interval, excludeID string) error {
	now := c.clock.Now()

	holds, err := c.store.ActiveHoldsForBooth(ctx, tenantID, boothID, now)
	if err != nil {
		return err
	}
	rentals, err := c.store.OccupyingRentalsForBooth(ctx, tenantID, boothID)
	if err != nil {
		return err
	}

	neighbors := make([]domain.Interval, 0, len(holds)+len(rentals))
	for _, h := range holds {
		// Deferred extension holds never passed this check themselves; they
		// wait for payment and are re-validated on confirmation, so they must
		// not block anyone in the meantime.
		if h.ID == excludeID || h.IsExtension() {
			continue
		}
		if iv.Overlaps(h.Interval) {
			return domain.ErrBoothUnavailable
		}
		neighbors = append(neighbors, h.Interval)
	}
	for _, r := range rentals {
		if r.ID == excludeID {
			continue
		}
		if iv.Overlaps(r.Interval) {
			return domain.ErrBoothUnavailable
		}
		neighbors = append(neighbors, r.Interval)
	}

	minGap, err := c.settings.MinimumGapDays(ctx, tenantID)
	if err != nil {
		return err
	}
	if minGap <= 0 {
		return nil
	}
	for _, n := range neighbors {
		if gap := iv.GapDays(n); gap > 0 && gap < minGap {
			return domain.ErrGapTooSmall
		}
	}
	return nil
}

// IsAvailable is the boolean view of Check for read-only availability queries.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, tenantID, boothID string, iv domain.Interval) (bool, error) {
	err := c.Check(ctx, tenantID, boothID, iv, "")
	switch err.(type) {
	case nil:
		return true, nil
	case domain.ConflictError, domain.ValidationError:
		return false, nil
	}
	return false, err
}
