package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stallworks/booth-market/internal/domain"
)

// TenantRepository reads per-tenant policy settings.
type TenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

func (r *TenantRepository) MinimumGapDays(ctx context.Context, tenantID string) (int, error) {
	const query = `SELECT min_gap_days FROM tenants WHERE id = $1`

	var days int
	err := r.queryRow(ctx, query, tenantID).Scan(&days)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return 0, domain.ErrTenantNotFound
		}
		return 0, fmt.Errorf("tenant gap days: %w", err)
	}
	return days, nil
}

func (r *TenantRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
