package model

import (
	"errors"
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("bad date literal %q: %v", s, err)
	}
	return v
}

func mustRange(t *testing.T, checkIn, checkOut string) DateRange {
	t.Helper()
	r, err := NewDateRange(day(t, checkIn), day(t, checkOut))
	if err != nil {
		t.Fatalf("NewDateRange(%s, %s): %v", checkIn, checkOut, err)
	}
	return r
}

func TestNewDateRangeRejectsEmptyAndInverted(t *testing.T) {
	cases := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"equal dates", "2026-09-01", "2026-09-01"},
		{"inverted", "2026-09-05", "2026-09-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDateRange(day(t, tc.checkIn), day(t, tc.checkOut))
			if !errors.Is(err, ErrCheckOutNotAfterCheckIn) {
				t.Fatalf("expected ErrCheckOutNotAfterCheckIn, got %v", err)
			}
		})
	}
}

func TestNewDateRangeTruncatesToMidnightUTC(t *testing.T) {
	in := time.Date(2026, 9, 1, 15, 42, 7, 0, time.UTC)
	out := time.Date(2026, 9, 5, 3, 0, 0, 0, time.UTC)

	r, err := NewDateRange(in, out)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}

	if !r.CheckIn.Equal(day(t, "2026-09-01")) {
		t.Errorf("check-in not truncated: %v", r.CheckIn)
	}
	if !r.CheckOut.Equal(day(t, "2026-09-05")) {
		t.Errorf("check-out not truncated: %v", r.CheckOut)
	}
}

func TestNewBookingRangeRejectsPastCheckIn(t *testing.T) {
	now := day(t, "2026-09-10")

	_, err := NewBookingRange(day(t, "2026-09-09"), day(t, "2026-09-12"), now)
	if !errors.Is(err, ErrCheckInPast) {
		t.Fatalf("expected ErrCheckInPast, got %v", err)
	}

	// Same-day check-in is allowed.
	if _, err := NewBookingRange(day(t, "2026-09-10"), day(t, "2026-09-12"), now); err != nil {
		t.Fatalf("same-day check-in rejected: %v", err)
	}
}

func TestOverlapsCheckoutDayIsExclusive(t *testing.T) {
	existing := mustRange(t, "2026-01-01", "2026-01-05")

	cases := []struct {
		name     string
		checkIn  string
		checkOut string
		want     bool
	}{
		{"back to back after checkout", "2026-01-05", "2026-01-08", false},
		{"back to back before checkin", "2025-12-28", "2026-01-01", false},
		{"one shared night", "2026-01-04", "2026-01-08", true},
		{"fully inside", "2026-01-02", "2026-01-03", true},
		{"fully covering", "2025-12-30", "2026-01-10", true},
		{"identical", "2026-01-01", "2026-01-05", true},
		{"disjoint after", "2026-01-06", "2026-01-09", false},
		{"disjoint before", "2025-12-20", "2025-12-25", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustRange(t, tc.checkIn, tc.checkOut)
			if got := existing.Overlaps(other); got != tc.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tc.checkIn, tc.checkOut, got, tc.want)
			}
			// Overlap is symmetric.
			if got := other.Overlaps(existing); got != tc.want {
				t.Errorf("reverse Overlaps(%s, %s) = %v, want %v", tc.checkIn, tc.checkOut, got, tc.want)
			}
		})
	}
}

func TestNights(t *testing.T) {
	cases := []struct {
		checkIn  string
		checkOut string
		want     int
	}{
		{"2026-01-01", "2026-01-02", 1},
		{"2026-01-01", "2026-01-05", 4},
		{"2026-02-27", "2026-03-02", 3},
	}

	for _, tc := range cases {
		r := mustRange(t, tc.checkIn, tc.checkOut)
		if got := r.Nights(); got != tc.want {
			t.Errorf("Nights(%s, %s) = %d, want %d", tc.checkIn, tc.checkOut, got, tc.want)
		}
	}
}
