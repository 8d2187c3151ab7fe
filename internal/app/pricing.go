package app

import (
	"sort"

	"github.com/stallworks/booth-market/internal/domain"
)

// ComputeBreakdown decomposes a rental duration into billed periods using the
// booth type's tiers. Larger tiers are consumed greedily by integer division;
// whatever remains after them is billed as a single period of the smallest
// tier, even when it is shorter than that period. The function is pure: the
// same tiers and day count always produce the same breakdown, and the total
// is the sum of the item subtotals.
func ComputeBreakdown(tiers []domain.PricingTier, days int) (domain.PriceBreakdown, error) {
	if days <= 0 {
		return domain.PriceBreakdown{}, domain.ErrInvalidDays
	}
	if len(tiers) == 0 {
		return domain.PriceBreakdown{}, domain.ErrNoTiers
	}

	sorted := make([]domain.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDays > sorted[j].MinDays })

	for i, t := range sorted {
		if t.MinDays <= 0 || t.PricePerPeriod < 0 {
			return domain.PriceBreakdown{}, domain.ErrBadTiers
		}
		if i > 0 && sorted[i-1].MinDays == t.MinDays {
			return domain.PriceBreakdown{}, domain.ErrBadTiers
		}
	}

	var out domain.PriceBreakdown
	remaining := days
	smallest := sorted[len(sorted)-1]

	for _, t := range sorted[:len(sorted)-1] {
		count := remaining / t.MinDays
		if count == 0 {
			continue
		}
		remaining -= count * t.MinDays
		out.Items = append(out.Items, breakdownItem(t, count))
		if remaining == 0 {
			break
		}
	}

	if remaining > 0 {
		// Whatever the larger tiers left behind is closed out by the smallest
		// tier: one period when larger tiers exist, otherwise whole periods
		// with any partial period billed as a full one.
		count := 1
		if len(sorted) == 1 {
			count = remaining / smallest.MinDays
			if remaining%smallest.MinDays != 0 {
				count++
			}
		}
		out.Items = append(out.Items, breakdownItem(smallest, count))
	}

	for _, it := range out.Items {
		out.Total += it.Subtotal
	}
	return out, nil
}

func breakdownItem(t domain.PricingTier, count int) domain.PriceBreakdownItem {
	return domain.PriceBreakdownItem{
		PeriodDays:     t.MinDays,
		Count:          count,
		PricePerPeriod: t.PricePerPeriod,
		Subtotal:       int64(count) * t.PricePerPeriod,
	}
}
