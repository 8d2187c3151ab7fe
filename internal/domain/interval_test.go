package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewInterval(t *testing.T) {
	t.Parallel()

	iv, err := NewInterval(
		time.Date(2025, 3, 1, 14, 30, 0, 0, time.FixedZone("CET", 3600)),
		time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !iv.Start.Equal(date(2025, 3, 1)) {
		t.Fatalf("expected start normalized to its UTC midnight, got %v", iv.Start)
	}
	if !iv.End.Equal(date(2025, 3, 5)) {
		t.Fatalf("expected end normalized to its UTC midnight, got %v", iv.End)
	}
	if iv.Days() != 4 {
		t.Fatalf("expected 4 days, got %d", iv.Days())
	}

	if _, err := NewInterval(date(2025, 3, 5), date(2025, 3, 5)); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval for empty interval, got %v", err)
	}
	if _, err := NewInterval(date(2025, 3, 5), date(2025, 3, 1)); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval for inverted interval, got %v", err)
	}
}

func TestIntervalOverlaps(t *testing.T) {
	t.Parallel()

	base := Interval{Start: date(2025, 3, 5), End: date(2025, 3, 10)}
	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{date(2025, 3, 5), date(2025, 3, 10)}, true},
		{"contained", Interval{date(2025, 3, 6), date(2025, 3, 8)}, true},
		{"overlaps start", Interval{date(2025, 3, 1), date(2025, 3, 6)}, true},
		{"overlaps end", Interval{date(2025, 3, 9), date(2025, 3, 14)}, true},
		{"touches start", Interval{date(2025, 3, 1), date(2025, 3, 5)}, false},
		{"touches end", Interval{date(2025, 3, 10), date(2025, 3, 14)}, false},
		{"disjoint before", Interval{date(2025, 3, 1), date(2025, 3, 3)}, false},
		{"disjoint after", Interval{date(2025, 3, 12), date(2025, 3, 14)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps(%v) = %v, want %v", tc.other, got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("symmetry broken for %v", tc.other)
			}
		})
	}
}

func TestIntervalGapDays(t *testing.T) {
	t.Parallel()

	base := Interval{Start: date(2025, 3, 5), End: date(2025, 3, 10)}

	if got := base.GapDays(Interval{date(2025, 3, 13), date(2025, 3, 15)}); got != 3 {
		t.Fatalf("expected gap 3 after, got %d", got)
	}
	if got := base.GapDays(Interval{date(2025, 3, 1), date(2025, 3, 3)}); got != 2 {
		t.Fatalf("expected gap 2 before, got %d", got)
	}
	if got := base.GapDays(Interval{date(2025, 3, 10), date(2025, 3, 12)}); got != 0 {
		t.Fatalf("expected zero gap when touching, got %d", got)
	}
	if got := base.GapDays(Interval{date(2025, 3, 7), date(2025, 3, 12)}); got != 0 {
		t.Fatalf("expected zero gap when overlapping, got %d", got)
	}
}
