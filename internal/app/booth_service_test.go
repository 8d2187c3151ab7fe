package app

import (
	"context"
	"testing"
	"time"

	"github.com/stallworks/booth-market/internal/clock"
	"github.com/stallworks/booth-market/internal/domain"
)

func TestBoothService(t *testing.T) {
	t.Parallel()

	const tenant = "t1"
	tiers := []domain.PricingTier{
		{MinDays: 1, PricePerPeriod: 10},
		{MinDays: 7, PricePerPeriod: 50},
	}

	makeSvc := func(now time.Time) (*BoothService, *memStore) {
		store := newMemStore()
		svc := NewBoothService(store, clock.NewFixed(now))
		return svc, store
	}

	t.Run("create booth type validates commission and tiers", func(t *testing.T) {
		svc, _ := makeSvc(day(0))

		bt, err := svc.CreateBoothType(context.Background(), CreateBoothTypeInput{
			TenantID: tenant, Name: "standard", CommissionPct: 20, Tiers: tiers,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if bt.TierVersion != 1 {
			t.Fatalf("expected tier version 1, got %d", bt.TierVersion)
		}
		// Tiers come back sorted ascending regardless of input order.
		if bt.Tiers[0].MinDays != 1 || bt.Tiers[1].MinDays != 7 {
			t.Fatalf("expected sorted tiers, got %+v", bt.Tiers)
		}

		if _, err := svc.CreateBoothType(context.Background(), CreateBoothTypeInput{
			TenantID: tenant, Name: "bad", CommissionPct: 101, Tiers: tiers,
		}); err != domain.ErrInvalidCommission {
			t.Fatalf("expected ErrInvalidCommission, got %v", err)
		}
		if _, err := svc.CreateBoothType(context.Background(), CreateBoothTypeInput{
			TenantID: tenant, Name: "bad", CommissionPct: 10,
			Tiers: []domain.PricingTier{{MinDays: 2, PricePerPeriod: 5}, {MinDays: 2, PricePerPeriod: 9}},
		}); err != domain.ErrBadTiers {
			t.Fatalf("expected ErrBadTiers, got %v", err)
		}
		if _, err := svc.CreateBoothType(context.Background(), CreateBoothTypeInput{
			TenantID: tenant, Name: "bad", CommissionPct: 10,
		}); err != domain.ErrNoTiers {
			t.Fatalf("expected ErrNoTiers, got %v", err)
		}
	})

	t.Run("update tiers bumps the version", func(t *testing.T) {
		svc, _ := makeSvc(day(0))
		bt, err := svc.CreateBoothType(context.Background(), CreateBoothTypeInput{
			TenantID: tenant, Name: "standard", CommissionPct: 20, Tiers: tiers,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		updated, err := svc.UpdateTiers(context.Background(), tenant, bt.ID, []domain.PricingTier{
			{MinDays: 1, PricePerPeriod: 12},
		})
		if err != nil {
			t.Fatalf("update tiers: %v", err)
		}
		if updated.TierVersion != 2 {
			t.Fatalf("expected tier version 2, got %d", updated.TierVersion)
		}
	})

	t.Run("booth creation requires an existing type", func(t *testing.T) {
		svc, _ := makeSvc(day(0))
		if _, err := svc.CreateBooth(context.Background(), CreateBoothInput{
			TenantID: tenant, BoothTypeID: "missing", Label: "A-1",
		}); err != domain.ErrBoothTypeNotFound {
			t.Fatalf("expected ErrBoothTypeNotFound, got %v", err)
		}
	})

	t.Run("status derivation", func(t *testing.T) {
		svc, store := makeSvc(day(3).Add(9 * time.Hour))
		seedBooth(store, tenant, "booth-1", "type-1", tiers, 20)

		status, err := svc.Status(context.Background(), tenant, "booth-1")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status != domain.BoothStatusAvailable {
			t.Fatalf("expected available, got %s", status)
		}

		store.holds["h1"] = domain.Hold{
			ID: "h1", TenantID: tenant, BoothID: "booth-1",
			Interval: ivl(1, 5), ExpiresAt: day(3).Add(10 * time.Hour),
		}
		if status, _ = svc.Status(context.Background(), tenant, "booth-1"); status != domain.BoothStatusReserved {
			t.Fatalf("expected reserved, got %s", status)
		}

		store.rentals["r1"] = domain.Rental{
			ID: "r1", TenantID: tenant, BoothID: "booth-1",
			Interval: ivl(2, 6), Status: domain.RentalStatusActive, Version: 1,
		}
		if status, _ = svc.Status(context.Background(), tenant, "booth-1"); status != domain.BoothStatusRented {
			t.Fatalf("expected rented, got %s", status)
		}

		if err := svc.SetMaintenance(context.Background(), tenant, "booth-1", true); err != nil {
			t.Fatalf("set maintenance: %v", err)
		}
		if status, _ = svc.Status(context.Background(), tenant, "booth-1"); status != domain.BoothStatusMaintenance {
			t.Fatalf("expected maintenance, got %s", status)
		}
	})
}
