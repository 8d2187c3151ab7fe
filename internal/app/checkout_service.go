package app

import (
	"context"
	"sort"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetHoldForUpdate(ctx context.Context, tenantID, holdID string) (domain.Hold, error)
	GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error)
	CreateRental(ctx context.Context, rental domain.Rental) error
	DeleteHold(ctx context.Context, tenantID, holdID string) error
}

// CheckoutService converts a customer's holds into draft rentals,
// all-or-nothing.
type CheckoutService struct {
	repo    CheckoutRepository
	checker *AvailabilityChecker
	clock   clock.Clock
	sink    EventSink
}

func NewCheckoutService(repo CheckoutRepository, checker *AvailabilityChecker, clk clock.Clock, sink EventSink) *CheckoutService {
	return &CheckoutService{repo: repo, checker: checker, clock: clk, sink: sink}
}

type CheckoutInput struct {
	TenantID    string
	CustomerID  string
	HoldIDs     []string
	PaymentType domain.PaymentType
}

// Checkout re-validates every hold (unexpired, still conflict-free) and
// converts each into a draft rental inside one transaction. If any hold fails
// the whole batch aborts with no partial state change. Deferred extension
// holds are settled by the extension flow, never here.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) ([]domain.Rental, error) {
	if in.TenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	if len(in.HoldIDs) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if !domain.ValidPaymentType(in.PaymentType) {
		return nil, domain.ErrInvalidPaymentType
	}

	// Stable lock order across concurrent checkouts sharing holds.
	holdIDs := make([]string, len(in.HoldIDs))
	copy(holdIDs, in.HoldIDs)
	sort.Strings(holdIDs)

	now := s.clock.Now()
	var rentals []domain.Rental

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		rentals = rentals[:0]
		for _, holdID := range holdIDs {
			hold, err := s.repo.GetHoldForUpdate(txCtx, in.TenantID, holdID)
			if err != nil {
				return err
			}
			if hold.CustomerID != in.CustomerID {
				return domain.ErrHoldNotFound
			}
			if hold.IsExtension() {
				return domain.ErrDeferredHoldInCart
			}
			if hold.Expired(now) {
				return domain.ErrHoldExpired
			}

			if _, err := s.repo.GetBoothForUpdate(txCtx, in.TenantID, hold.BoothID); err != nil {
				return err
			}
			// The booth may have been taken since the hold was priced.
			if err := s.checker.Check(txCtx, in.TenantID, hold.BoothID, hold.Interval, hold.ID); err != nil {
				return err
			}

			rental := domain.Rental{
				ID:          newID(),
				TenantID:    in.TenantID,
				BoothID:     hold.BoothID,
				CustomerID:  in.CustomerID,
				Interval:    hold.Interval,
				PriceTotal:  hold.PriceTotal,
				Breakdown:   hold.Breakdown,
				Status:      domain.RentalStatusDraft,
				PaymentType: in.PaymentType,
				Version:     1,
				CreatedAt:   now,
			}
			if err := s.repo.CreateRental(txCtx, rental); err != nil {
				return err
			}
			if err := s.repo.DeleteHold(txCtx, in.TenantID, hold.ID); err != nil {
				return err
			}
			rentals = append(rentals, rental)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.sink != nil {
		for _, r := range rentals {
			_ = s.sink.Publish(ctx, domain.LifecycleEvent{
				Type:       domain.EventRentalCreated,
				TenantID:   r.TenantID,
				BoothID:    r.BoothID,
				RentalID:   r.ID,
				OccurredAt: now,
			})
		}
	}
	return rentals, nil
}
