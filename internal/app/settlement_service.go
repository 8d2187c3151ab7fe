package app

import (
	"context"
	"math"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

type SettlementRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error)
	CreateSettlementLine(ctx context.Context, line domain.SettlementLine) error
	// ListUnattachedLinesForUpdate locks the seller's lines that are not yet
	// part of a withdrawal.
	ListUnattachedLinesForUpdate(ctx context.Context, tenantID, sellerID string) ([]domain.SettlementLine, error)
	AttachLines(ctx context.Context, tenantID, withdrawalID string, lineIDs []string) error
	DetachLines(ctx context.Context, tenantID, withdrawalID string) error
	CreateWithdrawal(ctx context.Context, w domain.Withdrawal) error
	GetWithdrawalForUpdate(ctx context.Context, tenantID, withdrawalID string) (domain.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, w domain.Withdrawal) error
}

// SettlementService computes commission splits on item sales and aggregates
// seller payouts.
type SettlementService struct {
	repo  SettlementRepository
	clock clock.Clock
	sink  EventSink
}

func NewSettlementService(repo SettlementRepository, clk clock.Clock, sink EventSink) *SettlementService {
	return &SettlementService{repo: repo, clock: clk, sink: sink}
}

type RecordSaleInput struct {
	TenantID    string
	ItemID      string
	SellerID    string
	Amount      int64
	BoothTypeID string
}

// RecordSale splits a sale amount into commission and net using the booth
// type's percentage as it stands right now. The percentage is stored on the
// line so later edits to the booth type never change historical settlements.
func (s *SettlementService) RecordSale(ctx context.Context, in RecordSaleInput) (domain.SettlementLine, error) {
	if in.TenantID == "" {
		return domain.SettlementLine{}, domain.ErrTenantRequired
	}
	if in.ItemID == "" || in.SellerID == "" {
		return domain.SettlementLine{}, domain.ErrInvalidID
	}
	if in.Amount <= 0 {
		return domain.SettlementLine{}, domain.ErrInvalidAmount
	}

	boothType, err := s.repo.GetBoothType(ctx, in.TenantID, in.BoothTypeID)
	if err != nil {
		return domain.SettlementLine{}, err
	}
	if boothType.CommissionPct < 0 || boothType.CommissionPct > 100 {
		return domain.SettlementLine{}, domain.ErrInvalidCommission
	}

	commission := CommissionAmount(in.Amount, boothType.CommissionPct)
	line := domain.SettlementLine{
		ID:               newID(),
		TenantID:         in.TenantID,
		ItemID:           in.ItemID,
		SellerID:         in.SellerID,
		Amount:           in.Amount,
		CommissionPct:    boothType.CommissionPct,
		CommissionAmount: commission,
		NetAmount:        in.Amount - commission,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.repo.CreateSettlementLine(ctx, line); err != nil {
		return domain.SettlementLine{}, err
	}
	return line, nil
}

// CommissionAmount is the platform's cut of a sale, rounded to the nearest
// minor unit.
func CommissionAmount(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}

// ProcessWithdrawal gathers the seller's unsettled lines into a processing
// withdrawal. Lines join exactly one withdrawal; rejecting it detaches them
// again.
func (s *SettlementService) ProcessWithdrawal(ctx context.Context, tenantID, sellerID string) (domain.Withdrawal, error) {
	if tenantID == "" {
		return domain.Withdrawal{}, domain.ErrTenantRequired
	}
	if sellerID == "" {
		return domain.Withdrawal{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Withdrawal

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		lines, err := s.repo.ListUnattachedLinesForUpdate(txCtx, tenantID, sellerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrNothingToWithdraw
		}

		var total int64
		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			total += l.NetAmount
			ids = append(ids, l.ID)
		}

		w := domain.Withdrawal{
			ID:        newID(),
			TenantID:  tenantID,
			SellerID:  sellerID,
			Amount:    total,
			Status:    domain.WithdrawalStatusProcessing,
			CreatedAt: now,
		}
		if err := s.repo.CreateWithdrawal(txCtx, w); err != nil {
			return err
		}
		if err := s.repo.AttachLines(txCtx, tenantID, w.ID, ids); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Type:       domain.EventWithdrawalCreated,
		TenantID:   tenantID,
		SubjectID:  result.ID,
		OccurredAt: now,
	})
	return result, nil
}

// CompleteWithdrawal marks a payout as done. The external payout reference is
// mandatory and the transition is irreversible.
func (s *SettlementService) CompleteWithdrawal(ctx context.Context, tenantID, withdrawalID, payoutRef string) (domain.Withdrawal, error) {
	if payoutRef == "" {
		return domain.Withdrawal{}, domain.ErrPayoutRefRequired
	}

	now := s.clock.Now()
	var result domain.Withdrawal

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		w, err := s.repo.GetWithdrawalForUpdate(txCtx, tenantID, withdrawalID)
		if err != nil {
			return err
		}
		switch w.Status {
		case domain.WithdrawalStatusPending, domain.WithdrawalStatusProcessing:
		default:
			return domain.ErrWithdrawalState
		}
		w.Status = domain.WithdrawalStatusCompleted
		w.PayoutRef = payoutRef
		w.CompletedAt = &now
		if err := s.repo.UpdateWithdrawal(txCtx, w); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Type:       domain.EventWithdrawalSettled,
		TenantID:   tenantID,
		SubjectID:  withdrawalID,
		OccurredAt: now,
	})
	return result, nil
}

// RejectWithdrawal cancels a pending/processing withdrawal and releases its
// lines so they can be re-processed later.
func (s *SettlementService) RejectWithdrawal(ctx context.Context, tenantID, withdrawalID, reason string) (domain.Withdrawal, error) {
	now := s.clock.Now()
	var result domain.Withdrawal

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		w, err := s.repo.GetWithdrawalForUpdate(txCtx, tenantID, withdrawalID)
		if err != nil {
			return err
		}
		switch w.Status {
		case domain.WithdrawalStatusPending, domain.WithdrawalStatusProcessing:
		default:
			return domain.ErrWithdrawalState
		}
		w.Status = domain.WithdrawalStatusCancelled
		w.Reason = reason
		if err := s.repo.UpdateWithdrawal(txCtx, w); err != nil {
			return err
		}
		if err := s.repo.DetachLines(txCtx, tenantID, w.ID); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Type:       domain.EventWithdrawalRejected,
		TenantID:   tenantID,
		SubjectID:  withdrawalID,
		OccurredAt: now,
	})
	return result, nil
}

func (s *SettlementService) publish(ctx context.Context, ev domain.LifecycleEvent) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Publish(ctx, ev)
}
