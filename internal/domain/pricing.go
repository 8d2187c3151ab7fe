package domain

// PricingTier maps a day-count threshold to a price per period, in minor
// currency units. Tier lists are kept sorted ascending by MinDays and must be
// strictly increasing.
type PricingTier struct {
	MinDays        int   `json:"min_days"`
	PricePerPeriod int64 `json:"price_per_period"`
}

// PriceBreakdown is the deterministic decomposition of a rental duration into
// billed periods.
type PriceBreakdown struct {
	Items []PriceBreakdownItem `json:"items"`
	Total int64                `json:"total"`
}

// PriceBreakdownItem is one billed period size within a breakdown.
type PriceBreakdownItem struct {
	PeriodDays     int   `json:"period_days"`
	Count          int   `json:"count"`
	PricePerPeriod int64 `json:"price_per_period"`
	Subtotal       int64 `json:"subtotal"`
}
