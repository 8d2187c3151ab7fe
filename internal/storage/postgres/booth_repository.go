package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stallworks/booth-market/internal/domain"
)

type BoothRepository struct {
	pool *pgxpool.Pool
}

func NewBoothRepository(pool *pgxpool.Pool) *BoothRepository {
	return &BoothRepository{pool: pool}
}

func (r *BoothRepository) CreateBoothType(ctx context.Context, bt domain.BoothType) error {
	tiers, err := json.Marshal(bt.Tiers)
	if err != nil {
		return fmt.Errorf("marshal tiers: %w", err)
	}
	const stmt = `
INSERT INTO booth_types (id, tenant_id, name, commission_pct, tier_version, tiers, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.exec(ctx, stmt, bt.ID, bt.TenantID, bt.Name, bt.CommissionPct, bt.TierVersion, tiers, bt.CreatedAt); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booth type: %w", err)
	}
	return nil
}

func (r *BoothRepository) GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error) {
	const query = `
SELECT id, tenant_id, name, commission_pct, tier_version, tiers, created_at
FROM booth_types
WHERE id = $1 AND tenant_id = $2`

	var bt domain.BoothType
	var tiers []byte
	err := r.queryRow(ctx, query, boothTypeID, tenantID).
		Scan(&bt.ID, &bt.TenantID, &bt.Name, &bt.CommissionPct, &bt.TierVersion, &tiers, &bt.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.BoothType{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.BoothType{}, domain.ErrBoothTypeNotFound
		}
		return domain.BoothType{}, fmt.Errorf("get booth type: %w", err)
	}
	if err := json.Unmarshal(tiers, &bt.Tiers); err != nil {
		return domain.BoothType{}, fmt.Errorf("unmarshal tiers: %w", err)
	}
	return bt, nil
}

func (r *BoothRepository) ReplaceTiers(ctx context.Context, tenantID, boothTypeID string, version int, tiers []domain.PricingTier) error {
	raw, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("marshal tiers: %w", err)
	}
	const stmt = `
UPDATE booth_types SET tier_version = $3, tiers = $4
WHERE id = $1 AND tenant_id = $2`

	tag, err := r.exec(ctx, stmt, boothTypeID, tenantID, version, raw)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("replace tiers: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBoothTypeNotFound
	}
	return nil
}

func (r *BoothRepository) CreateBooth(ctx context.Context, booth domain.Booth) error {
	const stmt = `
INSERT INTO booths (id, tenant_id, booth_type_id, label, maintenance, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.exec(ctx, stmt, booth.ID, booth.TenantID, booth.BoothTypeID, booth.Label, booth.Maintenance, booth.CreatedAt); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booth: %w", err)
	}
	return nil
}

func (r *BoothRepository) GetBooth(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	return r.getBooth(ctx, tenantID, boothID, false)
}

func (r *BoothRepository) GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	return r.getBooth(ctx, tenantID, boothID, true)
}

func (r *BoothRepository) getBooth(ctx context.Context, tenantID, boothID string, forUpdate bool) (domain.Booth, error) {
	query := `
SELECT id, tenant_id, booth_type_id, label, maintenance, created_at
FROM booths
WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var b domain.Booth
	err := r.queryRow(ctx, query, boothID, tenantID).
		Scan(&b.ID, &b.TenantID, &b.BoothTypeID, &b.Label, &b.Maintenance, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booth{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booth{}, domain.ErrBoothNotFound
		}
		return domain.Booth{}, fmt.Errorf("get booth: %w", err)
	}
	return b, nil
}

func (r *BoothRepository) ListBooths(ctx context.Context, tenantID string) ([]domain.Booth, error) {
	const query = `
SELECT id, tenant_id, booth_type_id, label, maintenance, created_at
FROM booths
WHERE tenant_id = $1
ORDER BY label`

	rows, err := r.query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list booths: %w", err)
	}
	defer rows.Close()

	var out []domain.Booth
	for rows.Next() {
		var b domain.Booth
		if err := rows.Scan(&b.ID, &b.TenantID, &b.BoothTypeID, &b.Label, &b.Maintenance, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booth: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BoothRepository) SetMaintenance(ctx context.Context, tenantID, boothID string, maintenance bool) error {
	const stmt = `UPDATE booths SET maintenance = $3 WHERE id = $1 AND tenant_id = $2`
	tag, err := r.exec(ctx, stmt, boothID, tenantID, maintenance)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set maintenance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBoothNotFound
	}
	return nil
}

func (r *BoothRepository) BoothOccupancy(ctx context.Context, tenantID, boothID string, day domain.Interval) (bool, bool, error) {
	const query = `
SELECT
	EXISTS (
		SELECT 1 FROM rentals
		WHERE tenant_id = $1 AND booth_id = $2
		  AND status IN ('active', 'extended')
		  AND start_date < $4 AND $3 < end_date
	),
	EXISTS (
		SELECT 1 FROM rentals
		WHERE tenant_id = $1 AND booth_id = $2
		  AND status = 'draft'
		  AND start_date < $4 AND $3 < end_date
	) OR EXISTS (
		SELECT 1 FROM holds
		WHERE tenant_id = $1 AND booth_id = $2
		  AND expires_at > NOW()
		  AND extends_rental_id IS NULL
		  AND start_date < $4 AND $3 < end_date
	)`

	var rented, reserved bool
	if err := r.queryRow(ctx, query, tenantID, boothID, day.Start, day.End).Scan(&rented, &reserved); err != nil {
		if isInvalidUUID(err) {
			return false, false, domain.ErrInvalidID
		}
		return false, false, fmt.Errorf("booth occupancy: %w", err)
	}
	return rented, reserved, nil
}

func (r *BoothRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BoothRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BoothRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
