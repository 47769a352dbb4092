package validator

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"seaview/pkg/logger"
	"seaview/pkg/model"
)

func newTestValidator() *ReservationValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	return NewReservationValidator(log, 20)
}

func futureDay(offset int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, offset)
}

func validReservation() *model.Reservation {
	return &model.Reservation{
		RoomID:     primitive.NewObjectID().Hex(),
		GuestID:    primitive.NewObjectID().Hex(),
		CheckIn:    futureDay(5),
		CheckOut:   futureDay(8),
		GuestCount: 2,
		Status:     model.StatusConfirmed,
	}
}

func TestValidateAcceptsValidReservation(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validReservation()); err != nil {
		t.Fatalf("valid reservation rejected: %v", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	v := newTestValidator()

	cases := []struct {
		name      string
		mutate    func(*model.Reservation)
		wantField string
	}{
		{"missing room id", func(r *model.Reservation) { r.RoomID = "" }, "RoomID"},
		{"malformed room id", func(r *model.Reservation) { r.RoomID = "not-an-object-id" }, "RoomID"},
		{"missing guest id", func(r *model.Reservation) { r.GuestID = "" }, "GuestID"},
		{"zero guests", func(r *model.Reservation) { r.GuestCount = 0 }, "GuestCount"},
		{"too many guests", func(r *model.Reservation) { r.GuestCount = 21 }, "GuestCount"},
		{"bad status", func(r *model.Reservation) { r.Status = "checked_in" }, "Status"},
		{"checkout before checkin", func(r *model.Reservation) { r.CheckOut = futureDay(3) }, "CheckOut"},
		{"past checkin", func(r *model.Reservation) {
			r.CheckIn = futureDay(-2)
			r.CheckOut = futureDay(8)
		}, "CheckIn"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReservation()
			tc.mutate(r)

			err := v.Validate(r)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantField) {
				t.Errorf("error %q does not mention field %s", err.Error(), tc.wantField)
			}
		})
	}
}

func TestValidateDatesUpdate(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateDatesUpdate(&model.DatesUpdate{
		CheckIn:  futureDay(5),
		CheckOut: futureDay(9),
	}); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}

	err := v.ValidateDatesUpdate(&model.DatesUpdate{
		CheckIn:  futureDay(9),
		CheckOut: futureDay(5),
	})
	if err == nil {
		t.Fatal("inverted update accepted")
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "RoomID", Message: "RoomID is required"},
		{Field: "GuestCount", Message: "GuestCount must be at least 1"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") {
		t.Errorf("aggregate message missing count: %q", msg)
	}
	if !strings.Contains(msg, "RoomID is required") {
		t.Errorf("aggregate message missing detail: %q", msg)
	}
}
