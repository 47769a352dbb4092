package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"seaview/pkg/logger"
	"seaview/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// ReservationValidator runs struct-tag validation plus the date rules the
// tags cannot express. Now is injectable so tests control "today".
type ReservationValidator struct {
	validate      *validator.Validate
	logger        *logger.Logger
	maxGuestCount int
	now           func() time.Time
}

func NewReservationValidator(log *logger.Logger, maxGuestCount int) *ReservationValidator {
	v := validator.New()

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate:      v,
		logger:        log,
		maxGuestCount: maxGuestCount,
		now:           time.Now,
	}
}

func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if _, err := model.NewBookingRange(reservation.CheckIn, reservation.CheckOut, v.now()); err != nil {
		return ValidationErrors{rangeError(err)}
	}

	if reservation.GuestCount > v.maxGuestCount {
		return ValidationErrors{
			ValidationError{
				Field:   "GuestCount",
				Message: fmt.Sprintf("guest_count (%d) exceeds the allowed maximum (%d)", reservation.GuestCount, v.maxGuestCount),
			},
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateDatesUpdate(update *model.DatesUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if _, err := model.NewBookingRange(update.CheckIn, update.CheckOut, v.now()); err != nil {
		return ValidationErrors{rangeError(err)}
	}

	return nil
}

func rangeError(err error) ValidationError {
	field := "CheckOut"
	if errors.Is(err, model.ErrCheckInPast) {
		field = "CheckIn"
	}
	return ValidationError{
		Field:   field,
		Message: err.Error(),
	}
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
