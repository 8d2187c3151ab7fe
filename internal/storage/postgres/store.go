package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stallworks/booth-market/internal/domain"
)

// CheckoutStore combines the hold and rental repositories for the checkout
// flow, which consumes holds and creates rentals in one transaction.
type CheckoutStore struct {
	*HoldRepository
	rentals *RentalRepository
}

func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{
		HoldRepository: NewHoldRepository(pool),
		rentals:        NewRentalRepository(pool),
	}
}

func (s *CheckoutStore) CreateRental(ctx context.Context, rental domain.Rental) error {
	return s.rentals.CreateRental(ctx, rental)
}

// ExtensionStore combines the hold, rental and booth repositories for the
// extension request flow.
type ExtensionStore struct {
	*HoldRepository
	rentals *RentalRepository
}

func NewExtensionStore(pool *pgxpool.Pool) *ExtensionStore {
	return &ExtensionStore{
		HoldRepository: NewHoldRepository(pool),
		rentals:        NewRentalRepository(pool),
	}
}

func (s *ExtensionStore) GetRental(ctx context.Context, tenantID, rentalID string) (domain.Rental, error) {
	return s.rentals.GetRental(ctx, tenantID, rentalID)
}

func (s *ExtensionStore) GetBooth(ctx context.Context, tenantID, boothID string) (domain.Booth, error) {
	return s.HoldRepository.booths.GetBooth(ctx, tenantID, boothID)
}
