package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_ERROR"
	CodeInvalidTimeRange  = "INVALID_TIME_RANGE"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomInactive      = "ROOM_INACTIVE"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeBookingNotFound   = "BOOKING_NOT_FOUND"
	CodeBookingConflict   = "BOOKING_CONFLICT"
	CodeNotOwner          = "NOT_OWNER"
	CodeCircuitOpen       = "CIRCUIT_OPEN"
	CodeDownstreamUnavail = "DOWNSTREAM_UNAVAILABLE"
	CodeDownstreamError   = "DOWNSTREAM_ERROR"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

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

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func InvalidTimeRange(message string) *AppError {
	return New(CodeInvalidTimeRange, message, http.StatusBadRequest)
}

func RoomNotFound(roomID string) *AppError {
	return &AppError{
		Code:       CodeRoomNotFound,
		Message:    "Room not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"room_id": roomID},
	}
}

func RoomInactive(roomID string) *AppError {
	return &AppError{
		Code:       CodeRoomInactive,
		Message:    "Room is not active and cannot be booked",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"room_id": roomID},
	}
}

func UserNotFound(userID string) *AppError {
	return &AppError{
		Code:       CodeUserNotFound,
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"user_id": userID},
	}
}

func BookingNotFound(bookingID string) *AppError {
	return &AppError{
		Code:       CodeBookingNotFound,
		Message:    "Booking not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"booking_id": bookingID},
	}
}

// BookingConflict carries the IDs of the confirmed bookings that overlap
// the requested window so callers can surface them.
func BookingConflict(conflictingIDs []string) *AppError {
	return &AppError{
		Code:       CodeBookingConflict,
		Message:    "The room is already booked in the requested time range",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"conflicting_booking_ids": conflictingIDs},
	}
}

func NotOwner(message string) *AppError {
	return New(CodeNotOwner, message, http.StatusForbidden)
}

func CircuitOpen(target string) *AppError {
	return &AppError{
		Code:       CodeCircuitOpen,
		Message:    fmt.Sprintf("Circuit for %s is open; downstream call skipped", target),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"target": target},
	}
}

func DownstreamUnavailable(target string, err error) *AppError {
	return &AppError{
		Code:       CodeDownstreamUnavail,
		Message:    fmt.Sprintf("%s is unreachable", target),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"target": target},
		Err:        err,
	}
}

func DownstreamError(target string, upstreamStatus int) *AppError {
	return &AppError{
		Code:       CodeDownstreamError,
		Message:    fmt.Sprintf("%s returned an error response", target),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"target": target, "upstream_status": upstreamStatus},
	}
}

func RateLimitExceeded(limit int, window string) *AppError {
	return &AppError{
		Code:       CodeRateLimitExceeded,
		Message:    fmt.Sprintf("Rate limit exceeded (%d requests per %s)", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
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

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
