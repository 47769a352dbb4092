package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCheckOutNotAfterCheckIn = errors.New("check_out must be after check_in")

	ErrCheckInPast = errors.New("check_in cannot be in the past")
)

// DateRange is a half-open stay interval [CheckIn, CheckOut).
// A checkout on day X never conflicts with a checkin on day X.
type DateRange struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
}

// NewDateRange builds a range from calendar dates. Both bounds are truncated
// to midnight UTC so that overlap arithmetic works on whole days regardless
// of the time-of-day the caller sent.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{
		CheckIn:  TruncateToDay(checkIn),
		CheckOut: TruncateToDay(checkOut),
	}

	if !r.CheckOut.After(r.CheckIn) {
		return DateRange{}, fmt.Errorf("%w: check_in=%s check_out=%s",
			ErrCheckOutNotAfterCheckIn,
			r.CheckIn.Format(DateLayout),
			r.CheckOut.Format(DateLayout),
		)
	}

	return r, nil
}

// NewBookingRange is NewDateRange plus the new-booking rule that the stay
// cannot start before today. Historical queries use NewDateRange directly.
func NewBookingRange(checkIn, checkOut time.Time, now time.Time) (DateRange, error) {
	r, err := NewDateRange(checkIn, checkOut)
	if err != nil {
		return DateRange{}, err
	}

	if r.CheckIn.Before(TruncateToDay(now)) {
		return DateRange{}, fmt.Errorf("%w: check_in=%s",
			ErrCheckInPast,
			r.CheckIn.Format(DateLayout),
		)
	}

	return r, nil
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two half-open intervals intersect.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Nights returns the whole-day count between check-in and check-out.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn) / (24 * time.Hour))
}

func (r DateRange) IsZero() bool {
	return r.CheckIn.IsZero() && r.CheckOut.IsZero()
}

func (r DateRange) String() string {
	return r.CheckIn.Format(DateLayout) + " -> " + r.CheckOut.Format(DateLayout)
}
