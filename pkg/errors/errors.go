package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	CodeInvalidRange     = "INVALID_RANGE"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeRoomUnavailable  = "ROOM_UNAVAILABLE"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyCancelled = "ALREADY_CANCELLED"
	CodeForbidden        = "FORBIDDEN"
	CodeStorage          = "STORAGE_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// AppError is the single error currency crossing package boundaries. Code is
// stable for callers, Message is human-facing, Details carries the context
// (room id, requested range, reservation id) a precise client message needs.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func InvalidRange(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeInvalidRange,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

func CapacityExceeded(roomID string, requested, capacity int) *AppError {
	return &AppError{
		Code:       CodeCapacityExceeded,
		Message:    fmt.Sprintf("guest count %d exceeds room capacity %d", requested, capacity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"room_id":     roomID,
			"guest_count": requested,
			"capacity":    capacity,
		},
	}
}

// RoomUnavailable is the commit-time conflict: the requested range overlaps an
// active reservation on the same room.
func RoomUnavailable(roomID, checkIn, checkOut string) *AppError {
	return &AppError{
		Code:       CodeRoomUnavailable,
		Message:    "room is not available for the requested dates",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"room_id":   roomID,
			"check_in":  checkIn,
			"check_out": checkOut,
		},
	}
}

func RoomNotFound(roomID string) *AppError {
	return &AppError{
		Code:       CodeRoomNotFound,
		Message:    "room not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"room_id": roomID},
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// AlreadyCancelled is deliberately distinct from a silent no-op so callers can
// detect double-cancel bugs.
func AlreadyCancelled(reservationID string) *AppError {
	return &AppError{
		Code:       CodeAlreadyCancelled,
		Message:    "reservation is already cancelled",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"reservation_id": reservationID},
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Storage marks a transient persistence fault; safe to retry, and combined
// with an idempotency key a retry cannot double-book.
func Storage(message string, err error) *AppError {
	return &AppError{
		Code:       CodeStorage,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
