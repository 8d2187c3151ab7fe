package app

import (
	"context"
	"time"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

type RentalRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetRental(ctx context.Context, tenantID, rentalID string) (domain.Rental, error)
	GetBoothForUpdate(ctx context.Context, tenantID, boothID string) (domain.Booth, error)
	// UpdateRental persists the rental if its stored version still equals
	// expectVersion, returning domain.ErrStaleRental otherwise.
	UpdateRental(ctx context.Context, rental domain.Rental, expectVersion int) error
	CreateExtension(ctx context.Context, ext domain.Extension) error
	ListDueRentals(ctx context.Context, now time.Time) ([]domain.Rental, error)
}

// RentalService is the rental state machine:
// draft -> active -> {expired, cancelled}; active -> extended -> {expired, cancelled}.
// Transitions use the rental's version as an optimistic token and retry a
// bounded number of times on concurrent modification.
type RentalService struct {
	repo    RentalRepository
	checker *AvailabilityChecker
	clock   clock.Clock
	sink    EventSink
}

const staleRetries = 3

func NewRentalService(repo RentalRepository, checker *AvailabilityChecker, clk clock.Clock, sink EventSink) *RentalService {
	return &RentalService{repo: repo, checker: checker, clock: clk, sink: sink}
}

// Confirm moves a draft rental to active after the payment-success signal (or
// synchronously for free/cash/terminal checkouts).
func (s *RentalService) Confirm(ctx context.Context, tenantID, rentalID string) (domain.Rental, error) {
	return s.transition(ctx, tenantID, rentalID, func(r *domain.Rental, now time.Time) (domain.EventType, error) {
		if r.Status != domain.RentalStatusDraft {
			return "", domain.ErrRentalNotDraft
		}
		r.Status = domain.RentalStatusActive
		r.ActivatedAt = &now
		return domain.EventRentalConfirmed, nil
	})
}

// Cancel moves a draft/active/extended rental to cancelled. Repeating it on an
// already-cancelled rental is a no-op; cancelling an expired rental fails.
func (s *RentalService) Cancel(ctx context.Context, tenantID, rentalID string) (domain.Rental, error) {
	return s.transition(ctx, tenantID, rentalID, func(r *domain.Rental, now time.Time) (domain.EventType, error) {
		switch r.Status {
		case domain.RentalStatusCancelled:
			return "", nil
		case domain.RentalStatusExpired:
			return "", domain.ErrRentalExpired
		}
		r.Status = domain.RentalStatusCancelled
		r.CancelledAt = &now
		return domain.EventRentalCancelled, nil
	})
}

type ExtendInput struct {
	TenantID    string
	RentalID    string
	NewEnd      time.Time
	Cost        int64
	PaymentType domain.PaymentType
	PaymentRef  string
}

// Extend prolongs an active or extended rental to NewEnd. The added day range
// must be conflict-free with the rental itself excluded from the check; the
// booth row lock serializes the check with concurrent reservations.
func (s *RentalService) Extend(ctx context.Context, in ExtendInput) (domain.Rental, error) {
	newEnd := domain.DateOf(in.NewEnd)

	var result domain.Rental
	err := s.retryStale(func() error {
		rental, err := s.repo.GetRental(ctx, in.TenantID, in.RentalID)
		if err != nil {
			return err
		}
		switch rental.Status {
		case domain.RentalStatusActive, domain.RentalStatusExtended:
		case domain.RentalStatusExpired:
			return domain.ErrRentalExpired
		default:
			return domain.ErrRentalNotExtendable
		}
		if !newEnd.After(rental.Interval.End) {
			return domain.ErrInvalidInterval
		}
		added := domain.Interval{Start: rental.Interval.End, End: newEnd}
		now := s.clock.Now()

		expect := rental.Version
		err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
			if _, err := s.repo.GetBoothForUpdate(txCtx, in.TenantID, rental.BoothID); err != nil {
				return err
			}
			if err := s.checker.Check(txCtx, in.TenantID, rental.BoothID, added, rental.ID); err != nil {
				return err
			}

			rental.Interval.End = newEnd
			rental.Status = domain.RentalStatusExtended
			rental.PriceTotal += in.Cost
			rental.Version++
			if err := s.repo.UpdateRental(txCtx, rental, expect); err != nil {
				return err
			}
			return s.repo.CreateExtension(txCtx, domain.Extension{
				ID:          newID(),
				TenantID:    in.TenantID,
				RentalID:    rental.ID,
				PaymentType: in.PaymentType,
				PaymentRef:  in.PaymentRef,
				Days:        added.Days(),
				Cost:        in.Cost,
				NewEnd:      newEnd,
				CreatedAt:   now,
			})
		})
		if err != nil {
			return err
		}

		result = rental
		s.publish(ctx, domain.LifecycleEvent{
			Type:       domain.EventRentalExtended,
			TenantID:   rental.TenantID,
			BoothID:    rental.BoothID,
			RentalID:   rental.ID,
			OccurredAt: now,
		})
		return nil
	})
	if err != nil {
		return domain.Rental{}, err
	}
	return result, nil
}

// ExpireDueRentals moves every active/extended rental whose end date has
// passed to expired and returns how many changed. Meant to run from the sweep
// worker.
func (s *RentalService) ExpireDueRentals(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.repo.ListDueRentals(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range due {
		_, err := s.transition(ctx, r.TenantID, r.ID, func(r *domain.Rental, now time.Time) (domain.EventType, error) {
			switch r.Status {
			case domain.RentalStatusActive, domain.RentalStatusExtended:
			default:
				return "", domain.ErrRentalExpired
			}
			r.Status = domain.RentalStatusExpired
			r.ExpiredAt = &now
			return domain.EventRentalExpired, nil
		})
		if err == nil {
			count++
			continue
		}
		// A rental cancelled or already expired between the listing and the
		// update is not a sweep failure.
		if _, ok := err.(domain.StateError); ok {
			continue
		}
		return count, err
	}
	return count, nil
}

// Get returns a rental by id.
func (s *RentalService) Get(ctx context.Context, tenantID, rentalID string) (domain.Rental, error) {
	return s.repo.GetRental(ctx, tenantID, rentalID)
}

// transition applies a status mutation under the optimistic version token,
// re-reading and retrying when a concurrent writer got there first.
func (s *RentalService) transition(ctx context.Context, tenantID, rentalID string, apply func(*domain.Rental, time.Time) (domain.EventType, error)) (domain.Rental, error) {
	var result domain.Rental
	var event domain.EventType
	now := s.clock.Now()

	err := s.retryStale(func() error {
		rental, err := s.repo.GetRental(ctx, tenantID, rentalID)
		if err != nil {
			return err
		}
		evType, err := apply(&rental, now)
		if err != nil {
			return err
		}
		if evType == "" {
			// Idempotent no-op, nothing to persist.
			result = rental
			return nil
		}
		expect := rental.Version
		rental.Version++
		if err := s.repo.UpdateRental(ctx, rental, expect); err != nil {
			return err
		}
		result = rental
		event = evType
		return nil
	})
	if err != nil {
		return domain.Rental{}, err
	}

	if event != "" {
		s.publish(ctx, domain.LifecycleEvent{
			Type:       event,
			TenantID:   result.TenantID,
			BoothID:    result.BoothID,
			RentalID:   result.ID,
			OccurredAt: now,
		})
	}
	return result, nil
}

func (s *RentalService) retryStale(fn func() error) error {
	var err error
	for attempt := 0; attempt < staleRetries; attempt++ {
		err = fn()
		if err != domain.ErrStaleRental {
			return err
		}
	}
	return err
}

func (s *RentalService) publish(ctx context.Context, ev domain.LifecycleEvent) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Publish(ctx, ev)
}
