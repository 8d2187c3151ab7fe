package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stallworks/booth-market/internal/domain"
)

// AvailabilityRepository reads the state the availability check scans: live
// holds and occupying rentals for one booth. It runs inside the caller's
// transaction when one is on the context, so the check sees the same snapshot
// that the subsequent insert commits against.
type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// ActiveHoldsForBooth returns the unexpired holds that block the booth.
// Deferred extension holds are excluded: they are pending-payment markers that
// never passed the conflict check, so they must not count against anyone.
func (r *AvailabilityRepository) ActiveHoldsForBooth(ctx context.Context, tenantID, boothID string, now time.Time) ([]domain.Hold, error) {
	query := `SELECT ` + holdColumns + `
FROM holds
WHERE tenant_id = $1 AND booth_id = $2 AND expires_at > $3 AND extends_rental_id IS NULL`

	rows, err := r.query(ctx, query, tenantID, boothID, now)
	if err != nil {
		return nil, fmt.Errorf("active holds: %w", err)
	}
	defer rows.Close()

	var out []domain.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *AvailabilityRepository) OccupyingRentalsForBooth(ctx context.Context, tenantID, boothID string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + `
FROM rentals
WHERE tenant_id = $1 AND booth_id = $2 AND status IN ('draft', 'active', 'extended')`

	rows, err := r.query(ctx, query, tenantID, boothID)
	if err != nil {
		return nil, fmt.Errorf("occupying rentals: %w", err)
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *AvailabilityRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
