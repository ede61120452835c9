package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roomline/pkg/logger"
	"roomline/pkg/model"

	"github.com/go-playground/validator/v10"
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

type BookingValidator struct {
	validate    *validator.Validate
	logger      *logger.Logger
	minDuration time.Duration
	maxDuration time.Duration
}

func NewBookingValidator(log *logger.Logger, minDuration, maxDuration time.Duration) *BookingValidator {
	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate:    validator.New(),
		logger:      log,
		minDuration: minDuration,
		maxDuration: maxDuration,
	}
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateWindow(booking.StartTime, booking.EndTime)
}

func (v *BookingValidator) ValidateWindowUpdate(update *model.BookingWindowUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateWindow(update.StartTime, update.EndTime)
}

// WindowError marks a failure of the time-window rules (ordering or
// duration bounds), as opposed to shape problems with the payload.
type WindowError struct {
	Message string
}

func (e *WindowError) Error() string {
	return e.Message
}

func (v *BookingValidator) validateWindow(start, end time.Time) error {
	if !end.After(start) {
		return &WindowError{Message: "end_time must be strictly after start_time"}
	}

	duration := end.Sub(start)
	if duration < v.minDuration {
		return &WindowError{Message: fmt.Sprintf("booking duration %s is below the minimum of %s", duration, v.minDuration)}
	}
	if duration > v.maxDuration {
		return &WindowError{Message: fmt.Sprintf("booking duration %s exceeds the maximum of %s", duration, v.maxDuration)}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
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
