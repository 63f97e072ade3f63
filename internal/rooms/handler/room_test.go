package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"officehub/internal/rooms/repository"
	"officehub/internal/rooms/service"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/logger"
	"officehub/pkg/model"
	"officehub/pkg/timeutil"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noBookings struct{}

func (noBookings) FindActiveFrom(context.Context, string, time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	cfg := &config.Config{Log: logger.Discard()}
	svc := service.NewRoomService(repository.NewMemoryRoomRepository(), noBookings{}, cfg,
		service.WithClock(timeutil.NewFixedClock(time.Date(2030, 3, 4, 8, 0, 0, 0, time.UTC))))
	require.NoError(t, svc.EnsureSeeded(context.Background()))

	router := httprouter.New()
	NewRoomHandler(svc, cfg.Log).RegisterRoutes(router)
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestList(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/api/meeting-rooms")
	require.Equal(t, http.StatusOK, rec.Code)

	var rooms []model.RoomStatusView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	assert.Len(t, rooms, 15)
	for _, r := range rooms {
		assert.Equal(t, model.RoomStatusVacant, r.Status)
		assert.NotNil(t, r.Bookings)
	}
	assert.Contains(t, rec.Body.String(), `"current_booking":null`)
	assert.Contains(t, rec.Body.String(), `"bookings":[]`)
}

func TestList_Filters(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/api/meeting-rooms?location=IFC&floor=12")
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []model.RoomStatusView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "ifc_conf_12a", rooms[0].ID)

	rec = get(router, "/api/meeting-rooms?floor=twelve")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(router, "/api/meeting-rooms?status=haunted")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.CodeInvalidInput, errResp.Code)
}

func TestLocationsAndFloors(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/api/meeting-rooms/locations")
	require.Equal(t, http.StatusOK, rec.Code)
	var locations LocationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &locations))
	assert.Len(t, locations.Locations, 5)

	rec = get(router, "/api/meeting-rooms/floors?location=IFC")
	require.Equal(t, http.StatusOK, rec.Code)
	var floors FloorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &floors))
	assert.Equal(t, []int{11, 12, 14}, floors.Floors)
}
