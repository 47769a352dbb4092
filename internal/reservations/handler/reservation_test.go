package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"seaview/internal/reservations/service"
	"seaview/pkg/client"
	apperrors "seaview/pkg/errors"
	"seaview/pkg/logger"
	"seaview/pkg/middleware"
	"seaview/pkg/model"
)

type stubService struct {
	checkAvailabilityFn func(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	createFn            func(ctx context.Context, req service.CreateReservationRequest) (*model.Reservation, error)
	getByIDFn           func(ctx context.Context, id string) (*model.Reservation, error)
	listFn              func(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
	cancelFn            func(ctx context.Context, id string, requester client.Principal) error
	modifyDatesFn       func(ctx context.Context, id string, update model.DatesUpdate, requester client.Principal) (*model.Reservation, error)
	confirmHoldFn       func(ctx context.Context, id string, requester client.Principal) (*model.Reservation, error)
}

func (s *stubService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	return s.checkAvailabilityFn(ctx, roomID, checkIn, checkOut)
}

func (s *stubService) Create(ctx context.Context, req service.CreateReservationRequest) (*model.Reservation, error) {
	return s.createFn(ctx, req)
}

func (s *stubService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubService) List(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return s.listFn(ctx, filter, limit, offset)
}

func (s *stubService) Cancel(ctx context.Context, id string, requester client.Principal) error {
	return s.cancelFn(ctx, id, requester)
}

func (s *stubService) ModifyDates(ctx context.Context, id string, update model.DatesUpdate, requester client.Principal) (*model.Reservation, error) {
	return s.modifyDatesFn(ctx, id, update, requester)
}

func (s *stubService) ConfirmHold(ctx context.Context, id string, requester client.Principal) (*model.Reservation, error) {
	return s.confirmHoldFn(ctx, id, requester)
}

func (s *stubService) ExpireHolds(ctx context.Context) (int, error) { return 0, nil }

func newTestRouter(svc service.ReservationService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	router := httprouter.New()
	NewReservationHandler(svc, log).RegisterRoutes(router)
	return router
}

func asGuest(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.PrincipalKey, client.Principal{UserID: userID})
	return req.WithContext(ctx)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	svc := &stubService{
		checkAvailabilityFn: func(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
			if roomID != "room-1" {
				t.Errorf("roomID = %q", roomID)
			}
			return true, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?room_id=room-1&check_in=2026-09-01&check_out=2026-09-05", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Data availabilityResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Data.Available {
		t.Error("expected available = true")
	}
}

func TestCheckAvailabilityRejectsBadDates(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?room_id=room-1&check_in=tomorrow&check_out=2026-09-05", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateEndpoint(t *testing.T) {
	var captured service.CreateReservationRequest
	svc := &stubService{
		createFn: func(ctx context.Context, req service.CreateReservationRequest) (*model.Reservation, error) {
			captured = req
			return &model.Reservation{ID: "abc", RoomID: req.RoomID, GuestID: req.GuestID, Status: model.StatusConfirmed}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"room_id":"room-1","check_in":"2026-09-01","check_out":"2026-09-05","guest_count":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req.Header.Set(middleware.IdempotencyHeader, "retry-1")
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// Owner defaults to the authenticated caller.
	if captured.GuestID != "guest-9" {
		t.Errorf("guest id = %q, want guest-9", captured.GuestID)
	}
	if captured.IdempotencyKey != "retry-1" {
		t.Errorf("idempotency key = %q", captured.IdempotencyKey)
	}
	if captured.GuestCount != 2 {
		t.Errorf("guest count = %d", captured.GuestCount)
	}
}

func TestCreateIdempotencyKeySources(t *testing.T) {
	var captured service.CreateReservationRequest
	svc := &stubService{
		createFn: func(ctx context.Context, req service.CreateReservationRequest) (*model.Reservation, error) {
			captured = req
			return &model.Reservation{ID: "abc"}, nil
		},
	}
	router := newTestRouter(svc)

	post := func(t *testing.T, body, headerKey string) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
		if headerKey != "" {
			req.Header.Set(middleware.IdempotencyHeader, headerKey)
		}
		req = asGuest(req, "guest-9")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	}

	t.Run("body field", func(t *testing.T) {
		post(t, `{"room_id":"room-1","check_in":"2026-09-01","check_out":"2026-09-05","guest_count":2,"idempotency_key":"from-body"}`, "")
		if captured.IdempotencyKey != "from-body" {
			t.Errorf("idempotency key = %q, want from-body", captured.IdempotencyKey)
		}
	})

	t.Run("header wins over body", func(t *testing.T) {
		post(t, `{"room_id":"room-1","check_in":"2026-09-01","check_out":"2026-09-05","guest_count":2,"idempotency_key":"from-body"}`, "from-header")
		if captured.IdempotencyKey != "from-header" {
			t.Errorf("idempotency key = %q, want from-header", captured.IdempotencyKey)
		}
	})
}

func TestCreateRequiresAuthentication(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateForbidsBookingForOthers(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := `{"room_id":"room-1","guest_id":"someone-else","check_in":"2026-09-01","check_out":"2026-09-05","guest_count":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCancelEndpointMapsConflict(t *testing.T) {
	svc := &stubService{
		cancelFn: func(ctx context.Context, id string, requester client.Principal) error {
			return apperrors.AlreadyCancelled(id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/id/abc", nil)
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var result struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Code != apperrors.CodeAlreadyCancelled {
		t.Errorf("code = %q, want %q", result.Code, apperrors.CodeAlreadyCancelled)
	}
}

func TestCancelEndpointNoContent(t *testing.T) {
	svc := &stubService{
		cancelFn: func(ctx context.Context, id string, requester client.Principal) error { return nil },
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/id/abc", nil)
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestModifyDatesEndpoint(t *testing.T) {
	svc := &stubService{
		modifyDatesFn: func(ctx context.Context, id string, update model.DatesUpdate, requester client.Principal) (*model.Reservation, error) {
			return &model.Reservation{ID: id, CheckIn: update.CheckIn, CheckOut: update.CheckOut}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"check_in":"2026-09-10","check_out":"2026-09-14"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/id/abc/dates", strings.NewReader(body))
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestListScopesNonAdminToOwnReservations(t *testing.T) {
	var captured model.ReservationFilter
	svc := &stubService{
		listFn: func(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
			captured = filter
			return nil, 0, nil
		},
	}
	router := newTestRouter(svc)

	// A guest asking for someone else's bookings gets their own instead.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations?guest_id=other-guest", nil)
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if captured.GuestID != "guest-9" {
		t.Fatalf("filter guest id = %q, want guest-9", captured.GuestID)
	}
}

func TestListAdminSeesAll(t *testing.T) {
	var captured model.ReservationFilter
	svc := &stubService{
		listFn: func(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
			captured = filter
			return nil, 0, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations?guest_id=other-guest", nil)
	ctx := context.WithValue(req.Context(), middleware.PrincipalKey, client.Principal{UserID: "admin-1", Role: client.RoleAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))

	if captured.GuestID != "other-guest" {
		t.Fatalf("filter guest id = %q, want other-guest", captured.GuestID)
	}
}

func TestGetByIDHidesOtherGuestsReservations(t *testing.T) {
	svc := &stubService{
		getByIDFn: func(ctx context.Context, id string) (*model.Reservation, error) {
			return &model.Reservation{ID: id, GuestID: "owner-1"}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/id/abc", nil)
	req = asGuest(req, "guest-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// NotFound, not Forbidden: a 403 would reveal that the id exists.
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
