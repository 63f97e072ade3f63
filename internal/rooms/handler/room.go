package handler

import (
	"net/http"

	"officehub/internal/rooms/service"
	httputil "officehub/pkg/http"
	"officehub/pkg/logger"
	"officehub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type LocationsResponse struct {
	Locations []string `json:"locations"`
}

type FloorsResponse struct {
	Floors []int `json:"floors"`
}

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	floor, err := httputil.QueryInt(r, "floor")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter := model.RoomFilter{
		Location: httputil.QueryString(r, "location"),
		Floor:    floor,
		Status:   httputil.QueryString(r, "status"),
	}

	rooms, err := h.service.ListWithStatus(r.Context(), filter)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Locations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	locations, err := h.service.Locations(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Locations", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, LocationsResponse{Locations: locations}); err != nil {
		h.log.Error("failed to write success response", "handler", "Locations", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Floors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	floors, err := h.service.Floors(r.Context(), httputil.QueryString(r, "location"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Floors", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, FloorsResponse{Floors: floors}); err != nil {
		h.log.Error("failed to write success response", "handler", "Floors", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/meeting-rooms", h.List)
	router.GET("/api/meeting-rooms/locations", h.Locations)
	router.GET("/api/meeting-rooms/floors", h.Floors)
}
