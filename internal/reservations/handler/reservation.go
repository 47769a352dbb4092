package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"seaview/internal/reservations/service"
	"seaview/pkg/client"
	apperrors "seaview/pkg/errors"
	"seaview/pkg/httputil"
	"seaview/pkg/logger"
	"seaview/pkg/middleware"
	"seaview/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	logger  *logger.Logger
}

func NewReservationHandler(svc service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		logger:  log,
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.CheckAvailability)
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.List)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
	router.PATCH("/api/v1/reservations/id/:id/dates", h.ModifyDates)
	router.POST("/api/v1/reservations/id/:id/confirm", h.ConfirmHold)
}

type createReservationBody struct {
	RoomID         string `json:"room_id"`
	GuestID        string `json:"guest_id"`
	CheckIn        string `json:"check_in"`
	CheckOut       string `json:"check_out"`
	GuestCount     int    `json:"guest_count"`
	IdempotencyKey string `json:"idempotency_key"`
}

type datesUpdateBody struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type availabilityResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

// CheckAvailability answers an advisory, non-locking availability query.
// GET /api/v1/availability?room_id=...&check_in=2026-09-01&check_out=2026-09-05
func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	roomID := r.URL.Query().Get("room_id")

	checkIn, err := httputil.ExtractDate(r, "check_in")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	checkOut, err := httputil.ExtractDate(r, "check_out")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), roomID, checkIn, checkOut)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, availabilityResponse{
		RoomID:    roomID,
		CheckIn:   checkIn.Format(model.DateLayout),
		CheckOut:  checkOut.Format(model.DateLayout),
		Available: available,
	})
}

// Create books a room for a date range.
// POST /api/v1/reservations
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var body createReservationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	guestID, err := resolveGuestID(principal, body.GuestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	checkIn, checkOut, err := parseStayDates(body.CheckIn, body.CheckOut)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The header takes precedence over the body field.
	idempotencyKey := r.Header.Get(middleware.IdempotencyHeader)
	if idempotencyKey == "" {
		idempotencyKey = body.IdempotencyKey
	}

	reservation, err := h.service.Create(r.Context(), service.CreateReservationRequest{
		RoomID:         body.RoomID,
		GuestID:        guestID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		GuestCount:     body.GuestCount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, reservation)
}

// List returns reservations matching the query filters, paginated.
// GET /api/v1/reservations?guest_id=...&room_id=...&status=...&limit=...&offset=...
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := model.ReservationFilter{
		GuestID: query.Get("guest_id"),
		RoomID:  query.Get("room_id"),
		Status:  model.Status(query.Get("status")),
	}

	// Non-admins only ever see their own reservations.
	if !principal.IsAdmin() {
		filter.GuestID = principal.UserID
	}

	reservations, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, reservations, total, limit, offset)
}

// GetByID returns one reservation.
// GET /api/v1/reservations/id/:id
func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// NotFound rather than Forbidden, so a guessed id does not reveal that
	// someone else's reservation exists.
	if !principal.CanActOn(reservation.GuestID) {
		httputil.WriteError(w, apperrors.NotFoundWithID("Reservation", ps.ByName("id")))
		return
	}

	httputil.WriteSuccess(w, reservation)
}

// Cancel releases a reservation's nights for rebooking.
// DELETE /api/v1/reservations/id/:id
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), principal); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// ModifyDates moves a reservation to a new date range.
// PATCH /api/v1/reservations/id/:id/dates
func (h *ReservationHandler) ModifyDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var body datesUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	checkIn, checkOut, err := parseStayDates(body.CheckIn, body.CheckOut)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reservation, err := h.service.ModifyDates(r.Context(), ps.ByName("id"), model.DatesUpdate{
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

// ConfirmHold promotes a pending hold after payment pre-authorization.
// POST /api/v1/reservations/id/:id/confirm
func (h *ReservationHandler) ConfirmHold(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	reservation, err := h.service.ConfirmHold(r.Context(), ps.ByName("id"), principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

// resolveGuestID defaults the booking owner to the caller; only admins may
// book on behalf of someone else.
func resolveGuestID(principal client.Principal, bodyGuestID string) (string, error) {
	if bodyGuestID == "" {
		return principal.UserID, nil
	}
	if bodyGuestID != principal.UserID && !principal.IsAdmin() {
		return "", apperrors.Forbidden("cannot create a reservation for another guest")
	}
	return bodyGuestID, nil
}

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.ParseInLocation(model.DateLayout, checkIn, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid check_in, expected YYYY-MM-DD: " + checkIn)
	}
	out, err := time.ParseInLocation(model.DateLayout, checkOut, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid check_out, expected YYYY-MM-DD: " + checkOut)
	}
	return in, out, nil
}
