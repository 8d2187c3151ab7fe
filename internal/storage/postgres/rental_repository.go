package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stallworks/booth-market/internal/domain"
)

// RentalRepository persists rentals and their extension records. Version
// checks happen in the UPDATE's WHERE clause so a lost race surfaces as
// domain.ErrStaleRental rather than a silent overwrite.
type RentalRepository struct {
	pool   *pgxpool.Pool
	booths *BoothRepository
}

func NewRentalRepository(pool *pgxpool.Pool) *RentalRepository {
	return &RentalRepository{pool: pool, booths: NewBoothRepository(pool)}
}

func (r *RentalRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RentalRepository) GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	return r.booths.GetBoothForUpdate(ctx, tenantID, boothID)
}

const rentalColumns = `id, tenant_id, booth_id, customer_id, start_date, end_date,
price_total, breakdown, status, payment_type, version, created_at, activated_at,
cancelled_at, expired_at`

func (r *RentalRepository) CreateRental(ctx context.Context, rental domain.Rental) error {
	breakdown, err := json.Marshal(rental.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	const stmt = `
INSERT INTO rentals (id, tenant_id, booth_id, customer_id, start_date, end_date,
	price_total, breakdown, status, payment_type, version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.exec(ctx, stmt,
		rental.ID,
		rental.TenantID,
		rental.BoothID,
		rental.CustomerID,
		rental.Interval.Start,
		rental.Interval.End,
		rental.PriceTotal,
		breakdown,
		rental.Status,
		rental.PaymentType,
		rental.Version,
		rental.CreatedAt,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ErrBoothUnavailable
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create rental: %w", err)
	}
	return nil
}

func (r *RentalRepository) GetRental(ctx context.Context, tenantID, rentalID string) (domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 AND tenant_id = $2`

	rental, err := scanRental(r.queryRow(ctx, query, rentalID, tenantID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Rental{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Rental{}, domain.ErrRentalNotFound
		}
		return domain.Rental{}, fmt.Errorf("get rental: %w", err)
	}
	return rental, nil
}

func (r *RentalRepository) UpdateRental(ctx context.Context, rental domain.Rental, expectVersion int) error {
	breakdown, err := json.Marshal(rental.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	const stmt = `
UPDATE rentals
SET end_date = $1, price_total = $2, breakdown = $3, status = $4, version = $5,
	activated_at = $6, cancelled_at = $7, expired_at = $8
WHERE id = $9 AND tenant_id = $10 AND version = $11`

	tag, err := r.exec(ctx, stmt,
		rental.Interval.End,
		rental.PriceTotal,
		breakdown,
		rental.Status,
		rental.Version,
		rental.ActivatedAt,
		rental.CancelledAt,
		rental.ExpiredAt,
		rental.ID,
		rental.TenantID,
		expectVersion,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ErrBoothUnavailable
		}
		return fmt.Errorf("update rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row vanished or the version moved. Distinguish so the
		// caller retries only the stale case.
		if _, err := r.GetRental(ctx, rental.TenantID, rental.ID); err != nil {
			return err
		}
		return domain.ErrStaleRental
	}
	return nil
}

func (r *RentalRepository) CreateExtension(ctx context.Context, ext domain.Extension) error {
	const stmt = `
INSERT INTO rental_extensions (id, tenant_id, rental_id, payment_type, payment_ref,
	days, cost, new_end_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		ext.ID,
		ext.TenantID,
		ext.RentalID,
		ext.PaymentType,
		ext.PaymentRef,
		ext.Days,
		ext.Cost,
		ext.NewEnd,
		ext.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	return nil
}

func (r *RentalRepository) ListDueRentals(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + `
FROM rentals
WHERE status IN ('active', 'extended') AND end_date <= $1
ORDER BY end_date`

	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list due rentals: %w", err)
	}
	defer rows.Close()
	return collectRentals(rows)
}

func scanRental(row pgx.Row) (domain.Rental, error) {
	var rental domain.Rental
	var breakdown []byte
	err := row.Scan(
		&rental.ID,
		&rental.TenantID,
		&rental.BoothID,
		&rental.CustomerID,
		&rental.Interval.Start,
		&rental.Interval.End,
		&rental.PriceTotal,
		&breakdown,
		&rental.Status,
		&rental.PaymentType,
		&rental.Version,
		&rental.CreatedAt,
		&rental.ActivatedAt,
		&rental.CancelledAt,
		&rental.ExpiredAt,
	)
	if err != nil {
		return domain.Rental{}, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &rental.Breakdown); err != nil {
			return domain.Rental{}, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}
	return rental, nil
}

func collectRentals(rows pgx.Rows) ([]domain.Rental, error) {
	var out []domain.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		out = append(out, rental)
	}
	return out, rows.Err()
}

func (r *RentalRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RentalRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *RentalRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
