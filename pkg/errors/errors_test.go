package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestConstructorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		code string
		http int
	}{
		{"invalid range", InvalidRange("check_out must be after check_in", nil), CodeInvalidRange, http.StatusBadRequest},
		{"capacity", CapacityExceeded("room-1", 6, 4), CodeCapacityExceeded, http.StatusUnprocessableEntity},
		{"unavailable room", RoomUnavailable("room-1", "2026-09-01", "2026-09-05"), CodeRoomUnavailable, http.StatusConflict},
		{"room not found", RoomNotFound("room-1"), CodeRoomNotFound, http.StatusNotFound},
		{"not found", NotFoundWithID("Reservation", "abc"), CodeNotFound, http.StatusNotFound},
		{"already cancelled", AlreadyCancelled("abc"), CodeAlreadyCancelled, http.StatusConflict},
		{"forbidden", Forbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"unauthorized", Unauthorized("nope"), CodeUnauthorized, http.StatusUnauthorized},
		{"storage", Storage("write failed", errors.New("io")), CodeStorage, http.StatusServiceUnavailable},
		{"conflict", Conflict("busy"), CodeConflict, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.code)
			}
			if tc.err.StatusCode() != tc.http {
				t.Errorf("status = %d, want %d", tc.err.StatusCode(), tc.http)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("insert failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	var appErr *AppError
	if !errors.As(error(err), &appErr) {
		t.Fatal("errors.As failed")
	}
	if appErr.Code != CodeStorage {
		t.Errorf("code = %s", appErr.Code)
	}
}

func TestRoomUnavailableDetails(t *testing.T) {
	err := RoomUnavailable("room-1", "2026-09-01", "2026-09-05")

	if err.Details["room_id"] != "room-1" {
		t.Errorf("details room_id = %v", err.Details["room_id"])
	}
	if err.Details["check_in"] != "2026-09-01" || err.Details["check_out"] != "2026-09-05" {
		t.Errorf("details range = %v - %v", err.Details["check_in"], err.Details["check_out"])
	}
}

func TestToJSONOmitsInternals(t *testing.T) {
	err := Storage("insert failed", errors.New("dial tcp: refused"))

	var decoded map[string]any
	if jsonErr := json.Unmarshal(err.ToJSON(), &decoded); jsonErr != nil {
		t.Fatalf("unmarshal: %v", jsonErr)
	}

	if _, leaked := decoded["Err"]; leaked {
		t.Error("internal cause serialized")
	}
	if decoded["code"] != CodeStorage {
		t.Errorf("code = %v", decoded["code"])
	}
}
