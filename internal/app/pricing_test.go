package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stallworks/booth-market/internal/domain"
)

func TestComputeBreakdown(t *testing.T) {
	t.Parallel()

	weekTiers := []domain.PricingTier{
		{MinDays: 7, PricePerPeriod: 50},
		{MinDays: 3, PricePerPeriod: 25},
		{MinDays: 1, PricePerPeriod: 10},
	}

	t.Run("greedy decomposition", func(t *testing.T) {
		bd, err := ComputeBreakdown(weekTiers, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(75), bd.Total)
		require.Len(t, bd.Items, 2)
		assert.Equal(t, 7, bd.Items[0].PeriodDays)
		assert.Equal(t, 1, bd.Items[0].Count)
		assert.Equal(t, int64(50), bd.Items[0].Subtotal)
		assert.Equal(t, 3, bd.Items[1].PeriodDays)
		assert.Equal(t, int64(25), bd.Items[1].Subtotal)
	})

	t.Run("leftover billed as one smallest period", func(t *testing.T) {
		bd, err := ComputeBreakdown([]domain.PricingTier{
			{MinDays: 7, PricePerPeriod: 50},
			{MinDays: 1, PricePerPeriod: 10},
		}, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(60), bd.Total)
		require.Len(t, bd.Items, 2)
		assert.Equal(t, 1, bd.Items[1].PeriodDays)
		assert.Equal(t, 1, bd.Items[1].Count)
	})

	t.Run("exact multiple of largest tier", func(t *testing.T) {
		bd, err := ComputeBreakdown(weekTiers, 14)
		require.NoError(t, err)
		assert.Equal(t, int64(100), bd.Total)
		require.Len(t, bd.Items, 1)
		assert.Equal(t, 2, bd.Items[0].Count)
	})

	t.Run("single tier bills whole periods rounding up", func(t *testing.T) {
		bd, err := ComputeBreakdown([]domain.PricingTier{{MinDays: 3, PricePerPeriod: 30}}, 7)
		require.NoError(t, err)
		// Two full 3-day periods plus a partial one billed as full.
		assert.Equal(t, int64(90), bd.Total)
		require.Len(t, bd.Items, 1)
		assert.Equal(t, 3, bd.Items[0].Count)
	})

	t.Run("idempotent and internally consistent", func(t *testing.T) {
		first, err := ComputeBreakdown(weekTiers, 23)
		require.NoError(t, err)
		second, err := ComputeBreakdown(weekTiers, 23)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		var sum int64
		for _, it := range first.Items {
			sum += it.Subtotal
			assert.Equal(t, int64(it.Count)*it.PricePerPeriod, it.Subtotal)
		}
		assert.Equal(t, first.Total, sum)
	})

	t.Run("input does not get mutated or reordered", func(t *testing.T) {
		tiers := []domain.PricingTier{
			{MinDays: 1, PricePerPeriod: 10},
			{MinDays: 7, PricePerPeriod: 50},
		}
		_, err := ComputeBreakdown(tiers, 9)
		require.NoError(t, err)
		assert.Equal(t, 1, tiers[0].MinDays)
		assert.Equal(t, 7, tiers[1].MinDays)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := ComputeBreakdown(weekTiers, 0)
		assert.Equal(t, domain.ErrInvalidDays, err)

		_, err = ComputeBreakdown(nil, 5)
		assert.Equal(t, domain.ErrNoTiers, err)

		_, err = ComputeBreakdown([]domain.PricingTier{
			{MinDays: 3, PricePerPeriod: 30},
			{MinDays: 3, PricePerPeriod: 20},
		}, 5)
		assert.Equal(t, domain.ErrBadTiers, err)

		_, err = ComputeBreakdown([]domain.PricingTier{{MinDays: 0, PricePerPeriod: 30}}, 5)
		assert.Equal(t, domain.ErrBadTiers, err)
	})
}
