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

// HoldRepository backs the reservation cart. It also carries the booth and
// booth type reads the hold flow needs inside its transaction.
type HoldRepository struct {
	pool   *pgxpool.Pool
	booths *BoothRepository
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool, booths: NewBoothRepository(pool)}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	return r.booths.GetBoothForUpdate(ctx, tenantID, boothID)
}

func (r *HoldRepository) GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error) {
	return r.booths.GetBoothType(ctx, tenantID, boothTypeID)
}

const holdColumns = `id, tenant_id, booth_id, customer_id, start_date, end_date,
price_total, breakdown, extends_rental_id, created_at, expires_at`

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	breakdown, err := json.Marshal(hold.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	const stmt = `
INSERT INTO holds (id, tenant_id, booth_id, customer_id, start_date, end_date,
	price_total, breakdown, extends_rental_id, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10, $11)`

	_, err = r.exec(ctx, stmt,
		hold.ID,
		hold.TenantID,
		hold.BoothID,
		hold.CustomerID,
		hold.Interval.Start,
		hold.Interval.End,
		hold.PriceTotal,
		breakdown,
		hold.ExtendsRentalID,
		hold.CreatedAt,
		hold.ExpiresAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *HoldRepository) GetHold(ctx context.Context, tenantID, holdID string) (domain.Hold, error) {
	return r.getHold(ctx, tenantID, holdID, false)
}

func (r *HoldRepository) GetHoldForUpdate(ctx context.Context, tenantID, holdID string) (domain.Hold, error) {
	return r.getHold(ctx, tenantID, holdID, true)
}

func (r *HoldRepository) getHold(ctx context.Context, tenantID, holdID string, forUpdate bool) (domain.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	h, err := scanHold(r.queryRow(ctx, query, holdID, tenantID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

func (r *HoldRepository) DeleteHold(ctx context.Context, tenantID, holdID string) error {
	const stmt = `DELETE FROM holds WHERE id = $1 AND tenant_id = $2`
	tag, err := r.exec(ctx, stmt, holdID, tenantID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}

func (r *HoldRepository) ListHoldsByCustomer(ctx context.Context, tenantID, customerID string, now time.Time) ([]domain.Hold, error) {
	query := `SELECT ` + holdColumns + `
FROM holds
WHERE tenant_id = $1 AND customer_id = $2 AND expires_at > $3
ORDER BY created_at`

	rows, err := r.query(ctx, query, tenantID, customerID, now)
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", err)
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

func (r *HoldRepository) DeleteExpiredHolds(ctx context.Context, before time.Time) (int, error) {
	const stmt = `DELETE FROM holds WHERE expires_at <= $1`
	tag, err := r.exec(ctx, stmt, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanHold(row pgx.Row) (domain.Hold, error) {
	var h domain.Hold
	var breakdown []byte
	var extends *string
	err := row.Scan(
		&h.ID,
		&h.TenantID,
		&h.BoothID,
		&h.CustomerID,
		&h.Interval.Start,
		&h.Interval.End,
		&h.PriceTotal,
		&breakdown,
		&extends,
		&h.CreatedAt,
		&h.ExpiresAt,
	)
	if err != nil {
		return domain.Hold{}, err
	}
	if extends != nil {
		h.ExtendsRentalID = *extends
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &h.Breakdown); err != nil {
			return domain.Hold{}, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}
	return h, nil
}

func (r *HoldRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HoldRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *HoldRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
