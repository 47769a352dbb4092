package model

import "time"

// Status is the persisted reservation state. StatusCompleted is derived at
// read time and never written to the store.
type Status string

const (
	StatusPendingHold Status = "pending_hold"
	StatusConfirmed   Status = "confirmed"
	StatusCancelled   Status = "cancelled"
	StatusCompleted   Status = "completed"
)

// ActiveStatuses are the states that occupy a room's date range. Cancelled
// records stay in the store for audit but leave the conflict index.
var ActiveStatuses = []Status{StatusPendingHold, StatusConfirmed}

func (s Status) Active() bool {
	return s == StatusPendingHold || s == StatusConfirmed
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingHold, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the lifecycle:
// pending_hold -> confirmed (pre-authorization success),
// pending_hold -> cancelled (hold expiry),
// confirmed -> cancelled (explicit cancel).
// Cancelled is terminal, and so is the derived completed state: callers
// gate transitions on the effective status. Completed is never a
// persisted target.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPendingHold:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Derive returns the externally visible status: a confirmed reservation whose
// checkout has passed reads as completed.
func (s Status) Derive(checkOut time.Time, now time.Time) Status {
	if s == StatusConfirmed && !checkOut.After(now) {
		return StatusCompleted
	}
	return s
}
