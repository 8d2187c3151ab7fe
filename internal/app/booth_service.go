package app

import (
	"context"
	"sort"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

type BoothRepository interface {
	CreateBoothType(ctx context.Context, bt domain.BoothType) error
	GetBoothType(ctx context.Context, tenantID, boothTypeID string) (domain.BoothType, error)
	ReplaceTiers(ctx context.Context, tenantID, boothTypeID string, version int, tiers []domain.PricingTier) error
	CreateBooth(ctx context.Context, booth domain.Booth) error
	GetBooth(ctx context.Context, tenantID, boothID string) (domain.Booth, error)
	ListBooths(ctx context.Context, tenantID string) ([]domain.Booth, error)
	SetMaintenance(ctx context.Context, tenantID, boothID string, maintenance bool) error
	// BoothOccupancy reports whether an active/extended rental (rented) or a
	// live hold / draft rental (reserved) covers the given day.
	BoothOccupancy(ctx context.Context, tenantID, boothID string, day domain.Interval) (rented, reserved bool, err error)
}

// BoothService is the admin surface: booth types with their commission and
// tier sets, and the booths themselves.
type BoothService struct {
	repo  BoothRepository
	clock clock.Clock
}

func NewBoothService(repo BoothRepository, clk clock.Clock) *BoothService {
	return &BoothService{repo: repo, clock: clk}
}

type CreateBoothTypeInput struct {
	TenantID      string
	Name          string
	CommissionPct float64
	Tiers         []domain.PricingTier
}

func (s *BoothService) CreateBoothType(ctx context.Context, in CreateBoothTypeInput) (domain.BoothType, error) {
	if in.TenantID == "" {
		return domain.BoothType{}, domain.ErrTenantRequired
	}
	if in.Name == "" {
		return domain.BoothType{}, domain.ErrNameRequired
	}
	if in.CommissionPct < 0 || in.CommissionPct > 100 {
		return domain.BoothType{}, domain.ErrInvalidCommission
	}
	if err := validateTiers(in.Tiers); err != nil {
		return domain.BoothType{}, err
	}

	bt := domain.BoothType{
		ID:            newID(),
		TenantID:      in.TenantID,
		Name:          in.Name,
		CommissionPct: in.CommissionPct,
		TierVersion:   1,
		Tiers:         normalizeTiers(in.Tiers),
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.CreateBoothType(ctx, bt); err != nil {
		return domain.BoothType{}, err
	}
	return bt, nil
}

// UpdateTiers replaces a booth type's tier set as a new version. Rentals and
// holds priced under the previous version keep their captured breakdowns.
func (s *BoothService) UpdateTiers(ctx context.Context, tenantID, boothTypeID string, tiers []domain.PricingTier) (domain.BoothType, error) {
	if err := validateTiers(tiers); err != nil {
		return domain.BoothType{}, err
	}
	bt, err := s.repo.GetBoothType(ctx, tenantID, boothTypeID)
	if err != nil {
		return domain.BoothType{}, err
	}
	bt.TierVersion++
	bt.Tiers = normalizeTiers(tiers)
	if err := s.repo.ReplaceTiers(ctx, tenantID, boothTypeID, bt.TierVersion, bt.Tiers); err != nil {
		return domain.BoothType{}, err
	}
	return bt, nil
}

type CreateBoothInput struct {
	TenantID    string
	BoothTypeID string
	Label       string
}

func (s *BoothService) CreateBooth(ctx context.Context, in CreateBoothInput) (domain.Booth, error) {
	if in.TenantID == "" {
		return domain.Booth{}, domain.ErrTenantRequired
	}
	if in.Label == "" {
		return domain.Booth{}, domain.ErrNameRequired
	}
	if _, err := s.repo.GetBoothType(ctx, in.TenantID, in.BoothTypeID); err != nil {
		return domain.Booth{}, err
	}

	booth := domain.Booth{
		ID:          newID(),
		TenantID:    in.TenantID,
		BoothTypeID: in.BoothTypeID,
		Label:       in.Label,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateBooth(ctx, booth); err != nil {
		return domain.Booth{}, err
	}
	return booth, nil
}

func (s *BoothService) ListBooths(ctx context.Context, tenantID string) ([]domain.Booth, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	return s.repo.ListBooths(ctx, tenantID)
}

// SetMaintenance flips the only caller-mutable part of a booth's status.
func (s *BoothService) SetMaintenance(ctx context.Context, tenantID, boothID string, maintenance bool) error {
	if _, err := s.repo.GetBooth(ctx, tenantID, boothID); err != nil {
		return err
	}
	return s.repo.SetMaintenance(ctx, tenantID, boothID, maintenance)
}

// Status derives the booth's current status from maintenance, today's
// occupying rentals and live holds.
func (s *BoothService) Status(ctx context.Context, tenantID, boothID string) (domain.BoothStatus, error) {
	booth, err := s.repo.GetBooth(ctx, tenantID, boothID)
	if err != nil {
		return "", err
	}
	if booth.Maintenance {
		return domain.BoothStatusMaintenance, nil
	}

	today := domain.DateOf(s.clock.Now())
	rented, reserved, err := s.repo.BoothOccupancy(ctx, tenantID, boothID, domain.Interval{
		Start: today,
		End:   today.AddDate(0, 0, 1),
	})
	if err != nil {
		return "", err
	}
	switch {
	case rented:
		return domain.BoothStatusRented, nil
	case reserved:
		return domain.BoothStatusReserved, nil
	default:
		return domain.BoothStatusAvailable, nil
	}
}

func validateTiers(tiers []domain.PricingTier) error {
	if len(tiers) == 0 {
		return domain.ErrNoTiers
	}
	sorted := normalizeTiers(tiers)
	for i, t := range sorted {
		if t.MinDays <= 0 || t.PricePerPeriod < 0 {
			return domain.ErrBadTiers
		}
		if i > 0 && sorted[i-1].MinDays >= t.MinDays {
			return domain.ErrBadTiers
		}
	}
	return nil
}

func normalizeTiers(tiers []domain.PricingTier) []domain.PricingTier {
	out := make([]domain.PricingTier, len(tiers))
	copy(out, tiers)
	sort.Slice(out, func(i, j int) bool { return out[i].MinDays < out[j].MinDays })
	return out
}
