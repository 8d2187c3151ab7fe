package app

import (
	"context"
	"time"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error)
	GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
	GetHold(ctx context.Context, tenantID, holdID string) (domain.Hold, error)
	DeleteHold(ctx context.Context, tenantID, holdID string) error
	ListHoldsByCustomer(ctx context.Context, tenantID, customerID string, now time.Time) ([]domain.Hold, error)
	DeleteExpiredHolds(ctx context.Context, before time.Time) (int, error)
}

// HoldService owns the cart: provisional, TTL-bounded reservations that block
// a booth until checkout or expiry.
type HoldService struct {
	repo    HoldRepository
	checker *AvailabilityChecker
	clock   clock.Clock
	sink    EventSink
	locker  BoothLocker
	holdTTL time.Duration
}

const defaultHoldTTL = 15 * time.Minute

// boothLockTTL bounds the distributed lock to roughly one request. The lock
// only guards the reserving transaction; a lost release must not keep the
// booth un-reservable for the whole hold TTL.
const boothLockTTL = 5 * time.Second

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithBoothLocker layers a distributed booth lock in front of the reserving
// transaction. Nil disables it; the row lock alone is still correct.
func WithBoothLocker(l BoothLocker) HoldServiceOption {
	return func(s *HoldService) {
		s.locker = l
	}
}

func NewHoldService(repo HoldRepository, checker *AvailabilityChecker, clk clock.Clock, sink EventSink, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		checker: checker,
		clock:   clk,
		sink:    sink,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CreateHoldInput struct {
	TenantID   string
	BoothID    string
	CustomerID string
	Start      time.Time
	End        time.Time
}

// CreateHold checks availability and stores a priced hold with a TTL. The
// availability check and the insert run inside one transaction holding the
// booth row lock, so two racing calls for overlapping intervals cannot both
// pass the check.
func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Hold, error) {
	if in.TenantID == "" {
		return domain.Hold{}, domain.ErrTenantRequired
	}
	if in.BoothID == "" || in.CustomerID == "" {
		return domain.Hold{}, domain.ErrInvalidID
	}
	iv, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return domain.Hold{}, err
	}

	if s.locker != nil {
		ok, err := s.locker.AcquireBoothLock(ctx, in.TenantID, in.BoothID, boothLockTTL)
		if err == nil && !ok {
			return domain.Hold{}, domain.ErrBoothUnavailable
		}
		if err == nil {
			defer func() { _ = s.locker.ReleaseBoothLock(ctx, in.TenantID, in.BoothID) }()
		}
	}

	now := s.clock.Now()
	var result domain.Hold

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booth, err := s.repo.GetBoothForUpdate(txCtx, in.TenantID, in.BoothID)
		if err != nil {
			return err
		}
		if booth.Maintenance {
			return domain.ErrBoothUnavailable
		}

		if err := s.checker.Check(txCtx, in.TenantID, in.BoothID, iv, ""); err != nil {
			return err
		}

		boothType, err := s.repo.GetBoothType(txCtx, in.TenantID, booth.BoothTypeID)
		if err != nil {
			return err
		}
		breakdown, err := ComputeBreakdown(boothType.Tiers, iv.Days())
		if err != nil {
			return err
		}

		hold := domain.Hold{
			ID:         newID(),
			TenantID:   in.TenantID,
			BoothID:    in.BoothID,
			CustomerID: in.CustomerID,
			Interval:   iv,
			PriceTotal: breakdown.Total,
			Breakdown:  breakdown,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.holdTTL),
		}
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return domain.Hold{}, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Type:       domain.EventHoldCreated,
		TenantID:   result.TenantID,
		BoothID:    result.BoothID,
		HoldID:     result.ID,
		OccurredAt: now,
	})
	return result, nil
}

// ReleaseHold removes a hold before its TTL elapses. Another customer's hold
// is indistinguishable from a missing one, same as at checkout.
func (s *HoldService) ReleaseHold(ctx context.Context, tenantID, customerID, holdID string) error {
	hold, err := s.repo.GetHold(ctx, tenantID, holdID)
	if err != nil {
		return err
	}
	if hold.CustomerID != customerID {
		return domain.ErrHoldNotFound
	}
	if err := s.repo.DeleteHold(ctx, tenantID, holdID); err != nil {
		return err
	}
	s.publish(ctx, domain.LifecycleEvent{
		Type:       domain.EventHoldReleased,
		TenantID:   tenantID,
		BoothID:    hold.BoothID,
		HoldID:     holdID,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

// ListCart returns the customer's unexpired holds.
func (s *HoldService) ListCart(ctx context.Context, tenantID, customerID string) ([]domain.Hold, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	return s.repo.ListHoldsByCustomer(ctx, tenantID, customerID, s.clock.Now())
}

// SweepExpiredHolds reclaims holds past their TTL. Expired holds are already
// inert for availability; the sweep just keeps the table small.
func (s *HoldService) SweepExpiredHolds(ctx context.Context) (int, error) {
	return s.repo.DeleteExpiredHolds(ctx, s.clock.Now())
}

func (s *HoldService) publish(ctx context.Context, ev domain.LifecycleEvent) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Publish(ctx, ev)
}
