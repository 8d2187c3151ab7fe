package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stallworks/booth-market/internal/domain"
)

// SettlementRepository persists per-sale commission splits and the
// withdrawals that aggregate them.
type SettlementRepository struct {
	pool   *pgxpool.Pool
	booths *BoothRepository
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool, booths: NewBoothRepository(pool)}
}

func (r *SettlementRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *SettlementRepository) GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error) {
	return r.booths.GetBoothType(ctx, tenantID, boothTypeID)
}

func (r *SettlementRepository) CreateSettlementLine(ctx context.Context, line domain.SettlementLine) error {
	const stmt = `
INSERT INTO settlement_lines (id, tenant_id, item_id, seller_id, amount,
	commission_pct, commission_amount, net_amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		line.ID,
		line.TenantID,
		line.ItemID,
		line.SellerID,
		line.Amount,
		line.CommissionPct,
		line.CommissionAmount,
		line.NetAmount,
		line.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create settlement line: %w", err)
	}
	return nil
}

const settlementLineColumns = `id, tenant_id, item_id, seller_id, amount,
commission_pct, commission_amount, net_amount, COALESCE(withdrawal_id::text, ''), created_at`

func (r *SettlementRepository) ListUnattachedLinesForUpdate(ctx context.Context, tenantID, sellerID string) ([]domain.SettlementLine, error) {
	query := `SELECT ` + settlementLineColumns + `
FROM settlement_lines
WHERE tenant_id = $1 AND seller_id = $2 AND withdrawal_id IS NULL
ORDER BY created_at
FOR UPDATE`

	rows, err := r.query(ctx, query, tenantID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list unattached lines: %w", err)
	}
	defer rows.Close()

	var out []domain.SettlementLine
	for rows.Next() {
		var line domain.SettlementLine
		err := rows.Scan(
			&line.ID,
			&line.TenantID,
			&line.ItemID,
			&line.SellerID,
			&line.Amount,
			&line.CommissionPct,
			&line.CommissionAmount,
			&line.NetAmount,
			&line.WithdrawalID,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan settlement line: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *SettlementRepository) AttachLines(ctx context.Context, tenantID, withdrawalID string, lineIDs []string) error {
	const stmt = `
UPDATE settlement_lines SET withdrawal_id = $1
WHERE tenant_id = $2 AND id = ANY($3::uuid[]) AND withdrawal_id IS NULL`

	tag, err := r.exec(ctx, stmt, withdrawalID, tenantID, lineIDs)
	if err != nil {
		return fmt.Errorf("attach lines: %w", err)
	}
	if int(tag.RowsAffected()) != len(lineIDs) {
		return fmt.Errorf("attach lines: expected %d rows, got %d", len(lineIDs), tag.RowsAffected())
	}
	return nil
}

func (r *SettlementRepository) DetachLines(ctx context.Context, tenantID, withdrawalID string) error {
	const stmt = `
UPDATE settlement_lines SET withdrawal_id = NULL
WHERE tenant_id = $1 AND withdrawal_id = $2`

	if _, err := r.exec(ctx, stmt, tenantID, withdrawalID); err != nil {
		return fmt.Errorf("detach lines: %w", err)
	}
	return nil
}

func (r *SettlementRepository) CreateWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	const stmt = `
INSERT INTO withdrawals (id, tenant_id, seller_id, amount, status, payout_ref,
	reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		w.ID,
		w.TenantID,
		w.SellerID,
		w.Amount,
		w.Status,
		w.PayoutRef,
		w.Reason,
		w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create withdrawal: %w", err)
	}
	return nil
}

func (r *SettlementRepository) GetWithdrawalForUpdate(ctx context.Context, tenantID, withdrawalID string) (domain.Withdrawal, error) {
	const query = `
SELECT id, tenant_id, seller_id, amount, status, payout_ref, reason, created_at, completed_at
FROM withdrawals
WHERE id = $1 AND tenant_id = $2
FOR UPDATE`

	var w domain.Withdrawal
	err := r.queryRow(ctx, query, withdrawalID, tenantID).Scan(
		&w.ID,
		&w.TenantID,
		&w.SellerID,
		&w.Amount,
		&w.Status,
		&w.PayoutRef,
		&w.Reason,
		&w.CreatedAt,
		&w.CompletedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Withdrawal{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Withdrawal{}, domain.ErrWithdrawalNotFound
		}
		return domain.Withdrawal{}, fmt.Errorf("get withdrawal: %w", err)
	}
	return w, nil
}

func (r *SettlementRepository) UpdateWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	const stmt = `
UPDATE withdrawals
SET status = $1, payout_ref = $2, reason = $3, completed_at = $4
WHERE id = $5 AND tenant_id = $6`

	tag, err := r.exec(ctx, stmt, w.Status, w.PayoutRef, w.Reason, w.CompletedAt, w.ID, w.TenantID)
	if err != nil {
		return fmt.Errorf("update withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}
	return nil
}

func (r *SettlementRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SettlementRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *SettlementRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
