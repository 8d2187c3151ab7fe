package domain

import "time"

// Interval is a half-open date range [Start, End). Dates are UTC midnights.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval normalizes both endpoints to UTC midnight and validates order.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: DateOf(start), End: DateOf(end)}
	if !iv.End.After(iv.Start) {
		return Interval{}, ErrInvalidInterval
	}
	return iv, nil
}

// DateOf truncates a timestamp to its UTC midnight.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days returns the number of whole days covered by the interval.
func (iv Interval) Days() int {
	return int(iv.End.Sub(iv.Start) / (24 * time.Hour))
}

// Overlaps reports whether two half-open intervals share at least one day.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// GapDays returns the number of free days between two non-overlapping
// intervals, 0 when they touch or overlap.
func (iv Interval) GapDays(other Interval) int {
	switch {
	case iv.Overlaps(other):
		return 0
	case iv.End.Before(other.Start) || iv.End.Equal(other.Start):
		return int(other.Start.Sub(iv.End) / (24 * time.Hour))
	default:
		return int(iv.Start.Sub(other.End) / (24 * time.Hour))
	}
}
