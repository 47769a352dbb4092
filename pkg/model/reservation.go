package model

import (
	"time"
)

// Reservation is the engine's single persisted record. It references the room
// by id only; the Room itself is owned by the external catalog. The conflict
// invariant: for any room_id, active reservations are pairwise non-overlapping
// in [check_in, check_out).
type Reservation struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID         string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestID        string    `json:"guest_id" bson:"guest_id" validate:"required,mongodb"`
	CheckIn        time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut       time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	GuestCount     int       `json:"guest_count" bson:"guest_count" validate:"required,min=1,max=20"`
	Status         Status    `json:"status" bson:"status" validate:"required,oneof=pending_hold confirmed cancelled"`
	TotalPrice     int64     `json:"total_price" bson:"total_price" validate:"min=0"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty" validate:"omitempty,max=128"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

func (r *Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// EffectiveStatus folds the derived completed state into the persisted one.
func (r *Reservation) EffectiveStatus(now time.Time) Status {
	return r.Status.Derive(r.CheckOut, now)
}

// ReservationFilter narrows listing queries. Zero fields match everything.
// The check_out bounds let the service express the derived completed state
// as a store predicate, so pagination and counts run in the store.
type ReservationFilter struct {
	GuestID string `json:"guest_id,omitempty"`
	RoomID  string `json:"room_id,omitempty"`
	Status  Status `json:"status,omitempty"`

	// CheckOutNotAfter matches check_out <= value; CheckOutAfter matches
	// check_out > value. Zero values are ignored.
	CheckOutNotAfter time.Time `json:"-"`
	CheckOutAfter    time.Time `json:"-"`
}

// DatesUpdate is the payload for moving a reservation to a new range.
type DatesUpdate struct {
	CheckIn  time.Time `json:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
}
