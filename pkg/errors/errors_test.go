package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeRoomNotFound,
				Message: "Meeting room not found",
			},
			expected: "ROOM_NOT_FOUND: Meeting room not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeStorageUnavailable,
				Message: "storage unavailable",
				Err:     errors.New("server selection timeout"),
			},
			expected: "STORAGE_UNAVAILABLE: storage unavailable (caused by: server selection timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := StorageUnavailable("wrapped", originalErr)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should see through AppError")
	}
}

func TestConstructors_StatusAndCode(t *testing.T) {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"room not found", RoomNotFound("oval"), CodeRoomNotFound, http.StatusNotFound},
		{"booking not found", BookingNotFound("oval", "b1"), CodeBookingNotFound, http.StatusNotFound},
		{"alert not found", AlertNotFound("a1"), CodeAlertNotFound, http.StatusNotFound},
		{"invalid timestamp", InvalidTimestamp("start_time", "nope"), CodeInvalidTimestamp, http.StatusBadRequest},
		{"past booking", PastBookingRejected(start, end), CodePastBooking, http.StatusBadRequest},
		{"invalid interval", InvalidInterval(end, start), CodeInvalidInterval, http.StatusBadRequest},
		{"conflict", BookingConflict("OVAL MEETING ROOM", "b1", start, end), CodeBookingConflict, http.StatusConflict},
		{"storage", StorageUnavailable("down", nil), CodeStorageUnavailable, http.StatusServiceUnavailable},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestBookingConflict_NamesRoom(t *testing.T) {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	err := BookingConflict("OVAL MEETING ROOM", "b1", start, start.Add(time.Hour))

	want := "OVAL MEETING ROOM is already booked from 2030-01-01T10:00:00Z to 2030-01-01T11:00:00Z"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.Details["conflicting_booking"] != "b1" {
		t.Errorf("expected conflicting booking id in details, got %v", err.Details)
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)
	err = err.WithDetails(map[string]any{"field": "employee_id"})

	if err.Details["field"] != "employee_id" {
		t.Errorf("expected field 'employee_id', got %v", err.Details["field"])
	}
}

func TestIsAppError(t *testing.T) {
	appErr := RoomNotFound("oval")
	wrapped := fmt.Errorf("handler: %w", appErr)
	regularErr := errors.New("regular error")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should return true for wrapped AppError")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("create: %w", BookingConflict("BOARD ROOM", "b1", time.Now(), time.Now()))

	if !HasCode(err, CodeBookingConflict) {
		t.Errorf("HasCode() should match wrapped conflict")
	}
	if HasCode(err, CodeRoomNotFound) {
		t.Errorf("HasCode() should not match other codes")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode() should be false for plain errors")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := RoomNotFound("oval")
	regularErr := errors.New("regular error")

	result := AsAppError(appErr)
	if result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result = AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := RoomNotFound("oval")

	var decoded ErrorResponse
	if jsonErr := json.Unmarshal(err.ToJSON(), &decoded); jsonErr != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", jsonErr)
	}
	if decoded.Code != CodeRoomNotFound {
		t.Errorf("expected code %s, got %s", CodeRoomNotFound, decoded.Code)
	}
	if decoded.Details["room_id"] != "oval" {
		t.Errorf("expected room_id detail, got %v", decoded.Details)
	}
}
