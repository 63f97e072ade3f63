package handler

import (
	"fmt"
	"net/http"

	"officehub/internal/bookings/service"
	apperrors "officehub/pkg/errors"
	httputil "officehub/pkg/http"
	"officehub/pkg/logger"
	"officehub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// ClearAllSegment is the literal room segment of the bulk-clear route.
const ClearAllSegment = "clear-all-bookings"

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), ps.ByName("room_id"), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("booking_id")

	if err := h.service.Cancel(r.Context(), ps.ByName("room_id"), bookingID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteMessage(w, "Booking cancelled successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) ClearRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("room_id")

	count, err := h.service.ClearRoom(r.Context(), roomID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ClearRoom", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := httputil.ClearedResponse{
		Message:         fmt.Sprintf("Cleared %d bookings for room %s", count, roomID),
		BookingsCleared: count,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "ClearRoom", "operation", "WriteSuccess", "error", err)
	}
}

// ClearAll serves DELETE /api/meeting-rooms/clear-all-bookings. The router
// cannot hold that static segment next to :room_id, so any other room id is a 404.
func (h *BookingHandler) ClearAll(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("room_id") != ClearAllSegment {
		if writeErr := httputil.WriteError(w, apperrors.NotFound("Route")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ClearAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	count, err := h.service.ClearAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ClearAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := httputil.ClearedResponse{
		Message:         fmt.Sprintf("Successfully cleared %d bookings", count),
		BookingsCleared: count,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "ClearAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/meeting-rooms/:room_id/book", h.Book)
	router.DELETE("/api/meeting-rooms/:room_id/booking/:booking_id", h.Cancel)
	router.DELETE("/api/meeting-rooms/:room_id/booking", h.ClearRoom)
	router.DELETE("/api/meeting-rooms/:room_id", h.ClearAll)
}
