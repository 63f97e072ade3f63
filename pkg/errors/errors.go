package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeBookingNotFound    = "BOOKING_NOT_FOUND"
	CodeAlertNotFound      = "ALERT_NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidTimestamp   = "INVALID_TIMESTAMP"
	CodePastBooking        = "PAST_BOOKING_REJECTED"
	CodeInvalidInterval    = "INVALID_INTERVAL"
	CodeBookingConflict    = "BOOKING_CONFLICT"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
	CodeTimeout            = "TIMEOUT"
	CodeRateLimited        = "RATE_LIMITED"
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

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
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

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func RoomNotFound(roomID string) *AppError {
	return &AppError{
		Code:       CodeRoomNotFound,
		Message:    "Meeting room not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"room_id": roomID},
	}
}

func BookingNotFound(roomID, bookingID string) *AppError {
	return &AppError{
		Code:       CodeBookingNotFound,
		Message:    "Booking not found",
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"room_id":    roomID,
			"booking_id": bookingID,
		},
	}
}

func AlertNotFound(alertID string) *AppError {
	return &AppError{
		Code:       CodeAlertNotFound,
		Message:    "Alert not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"alert_id": alertID},
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

func InvalidTimestamp(field, value string) *AppError {
	return &AppError{
		Code:       CodeInvalidTimestamp,
		Message:    fmt.Sprintf("%s is not a valid ISO-8601 date-time", field),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"field": field,
			"value": value,
		},
	}
}

func PastBookingRejected(start, now time.Time) *AppError {
	return &AppError{
		Code:       CodePastBooking,
		Message:    "Cannot book a meeting room in the past",
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"start_time": start.Format(time.RFC3339),
			"now":        now.Format(time.RFC3339),
		},
	}
}

func InvalidInterval(start, end time.Time) *AppError {
	return &AppError{
		Code:       CodeInvalidInterval,
		Message:    "End time must be after start time",
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"start_time": start.Format(time.RFC3339),
			"end_time":   end.Format(time.RFC3339),
		},
	}
}

func BookingConflict(roomName, bookingID string, start, end time.Time) *AppError {
	return &AppError{
		Code: CodeBookingConflict,
		Message: fmt.Sprintf("%s is already booked from %s to %s",
			roomName,
			start.Format(time.RFC3339),
			end.Format(time.RFC3339),
		),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"room_name":           roomName,
			"conflicting_booking": bookingID,
		},
	}
}

func StorageUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:       CodeStorageUnavailable,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
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

func RateLimited() *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "Rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
