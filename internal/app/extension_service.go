package app

import (
	"context"
	"time"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

type ExtensionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetRental(ctx context.Context, tenantID, rentalID string) (domain.Rental, error)
	GetBooth(ctx context.Context, tenantID, boothID string) (domain.Booth, error)
	GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
	GetHold(ctx context.Context, tenantID, holdID string) (domain.Hold, error)
	DeleteHold(ctx context.Context, tenantID, holdID string) error
}

// ExtensionService routes an extension request through one of the four
// payment paths. Free, cash and terminal apply the lifecycle transition
// immediately; online defers it behind a cart hold until the payment
// confirmation signal arrives.
type ExtensionService struct {
	repo    ExtensionRepository
	rentals *RentalService
	clock   clock.Clock
	sink    EventSink
	holdTTL time.Duration
}

func NewExtensionService(repo ExtensionRepository, rentals *RentalService, clk clock.Clock, sink EventSink, opts ...ExtensionServiceOption) *ExtensionService {
	svc := &ExtensionService{
		repo:    repo,
		rentals: rentals,
		clock:   clk,
		sink:    sink,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExtensionServiceOption func(*ExtensionService)

// WithExtensionHoldTTL overrides the TTL of deferred online-extension holds.
func WithExtensionHoldTTL(d time.Duration) ExtensionServiceOption {
	return func(s *ExtensionService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type RequestExtensionInput struct {
	TenantID       string
	RentalID       string
	AdditionalDays int
	PaymentType    domain.PaymentType
	// PaymentRef carries the terminal transaction id for the terminal path
	// and an optional receipt reference for cash.
	PaymentRef string
}

type ExtensionResult struct {
	// Applied is false for the online path, where the extension waits for
	// payment confirmation.
	Applied   bool
	Rental    domain.Rental
	HoldID    string
	Cost      int64
	Breakdown domain.PriceBreakdown
	NewEnd    time.Time
}

// RequestExtension prices the additional days and either applies the
// extension or, for the online path, parks it in the customer's cart. The
// online path skips conflict validation here on purpose: the booth may be
// taken by someone else before payment lands, so validation happens at
// confirmation time instead. Until then the deferred hold stays invisible to
// availability scans and blocks nobody.
func (s *ExtensionService) RequestExtension(ctx context.Context, in RequestExtensionInput) (ExtensionResult, error) {
	if in.TenantID == "" {
		return ExtensionResult{}, domain.ErrTenantRequired
	}
	if in.AdditionalDays <= 0 {
		return ExtensionResult{}, domain.ErrInvalidDays
	}
	if !domain.ValidPaymentType(in.PaymentType) {
		return ExtensionResult{}, domain.ErrInvalidPaymentType
	}

	rental, err := s.repo.GetRental(ctx, in.TenantID, in.RentalID)
	if err != nil {
		return ExtensionResult{}, err
	}
	switch rental.Status {
	case domain.RentalStatusActive, domain.RentalStatusExtended:
	case domain.RentalStatusExpired:
		return ExtensionResult{}, domain.ErrRentalExpired
	default:
		return ExtensionResult{}, domain.ErrRentalNotExtendable
	}

	var cost int64
	var breakdown domain.PriceBreakdown
	if in.PaymentType != domain.PaymentFree {
		booth, err := s.repo.GetBooth(ctx, in.TenantID, rental.BoothID)
		if err != nil {
			return ExtensionResult{}, err
		}
		boothType, err := s.repo.GetBoothType(ctx, in.TenantID, booth.BoothTypeID)
		if err != nil {
			return ExtensionResult{}, err
		}
		breakdown, err = ComputeBreakdown(boothType.Tiers, in.AdditionalDays)
		if err != nil {
			return ExtensionResult{}, err
		}
		cost = breakdown.Total
	}

	newEnd := rental.Interval.End.AddDate(0, 0, in.AdditionalDays)

	if in.PaymentType == domain.PaymentOnline {
		now := s.clock.Now()
		hold := domain.Hold{
			ID:              newID(),
			TenantID:        in.TenantID,
			BoothID:         rental.BoothID,
			CustomerID:      rental.CustomerID,
			Interval:        domain.Interval{Start: rental.Interval.End, End: newEnd},
			PriceTotal:      cost,
			Breakdown:       breakdown,
			ExtendsRentalID: rental.ID,
			CreatedAt:       now,
			ExpiresAt:       now.Add(s.holdTTL),
		}
		if err := s.repo.CreateHold(ctx, hold); err != nil {
			return ExtensionResult{}, err
		}
		s.publish(ctx, domain.LifecycleEvent{
			Type:       domain.EventHoldCreated,
			TenantID:   in.TenantID,
			BoothID:    rental.BoothID,
			RentalID:   rental.ID,
			HoldID:     hold.ID,
			OccurredAt: now,
		})
		return ExtensionResult{
			Rental:    rental,
			HoldID:    hold.ID,
			Cost:      cost,
			Breakdown: breakdown,
			NewEnd:    newEnd,
		}, nil
	}

	extended, err := s.rentals.Extend(ctx, ExtendInput{
		TenantID:    in.TenantID,
		RentalID:    in.RentalID,
		NewEnd:      newEnd,
		Cost:        cost,
		PaymentType: in.PaymentType,
		PaymentRef:  in.PaymentRef,
	})
	if err != nil {
		return ExtensionResult{}, err
	}
	return ExtensionResult{
		Applied:   true,
		Rental:    extended,
		Cost:      cost,
		Breakdown: breakdown,
		NewEnd:    extended.Interval.End,
	}, nil
}

// ConfirmOnlineExtension applies a deferred extension once its payment
// succeeded. The added range is re-validated here; a booth reserved by someone
// else in the interim surfaces as a conflict and the hold stays for the caller
// to release.
func (s *ExtensionService) ConfirmOnlineExtension(ctx context.Context, tenantID, holdID, paymentRef string) (domain.Rental, error) {
	hold, err := s.repo.GetHold(ctx, tenantID, holdID)
	if err != nil {
		return domain.Rental{}, err
	}
	if !hold.IsExtension() {
		return domain.Rental{}, domain.ErrHoldNotDeferred
	}
	if hold.Expired(s.clock.Now()) {
		return domain.Rental{}, domain.ErrHoldExpired
	}

	var rental domain.Rental
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		// The delete commits only together with a successful extension; a
		// conflict inside Extend rolls it back and the hold survives for an
		// explicit release.
		if err := s.repo.DeleteHold(txCtx, tenantID, holdID); err != nil {
			return err
		}
		rental, err = s.rentals.Extend(txCtx, ExtendInput{
			TenantID:    tenantID,
			RentalID:    hold.ExtendsRentalID,
			NewEnd:      hold.Interval.End,
			Cost:        hold.PriceTotal,
			PaymentType: domain.PaymentOnline,
			PaymentRef:  paymentRef,
		})
		return err
	})
	if err != nil {
		return domain.Rental{}, err
	}
	return rental, nil
}

// ReleaseOnlineExtension reconciles a failed online payment by dropping the
// deferred hold, leaving the rental untouched.
func (s *ExtensionService) ReleaseOnlineExtension(ctx context.Context, tenantID, holdID string) error {
	hold, err := s.repo.GetHold(ctx, tenantID, holdID)
	if err != nil {
		return err
	}
	if !hold.IsExtension() {
		return domain.ErrHoldNotDeferred
	}
	if err := s.repo.DeleteHold(ctx, tenantID, holdID); err != nil {
		return err
	}
	s.publish(ctx, domain.LifecycleEvent{
		Type:       domain.EventHoldReleased,
		TenantID:   tenantID,
		BoothID:    hold.BoothID,
		RentalID:   hold.ExtendsRentalID,
		HoldID:     holdID,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

func (s *ExtensionService) publish(ctx context.Context, ev domain.LifecycleEvent) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Publish(ctx, ev)
}
