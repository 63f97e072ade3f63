package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"officehub/internal/alerts/repository"
	"officehub/internal/alerts/service"
	"officehub/internal/alerts/validator"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/logger"
	"officehub/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *httprouter.Router {
	cfg := &config.Config{Log: logger.Discard()}
	svc := service.NewAlertService(repository.NewMemoryAlertRepository(), validator.NewAlertValidator(cfg.Log), cfg)
	router := httprouter.New()
	NewAlertHandler(svc, cfg.Log).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAlertLifecycle(t *testing.T) {
	router := newTestRouter()

	rec := do(router, http.MethodPost, "/api/alerts", `{"title":"Power cut","message":"Floor 14 at 6pm","type":"urgent","target_audience":"ifc"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.AlertTypeUrgent, created.Type)
	assert.Contains(t, rec.Body.String(), `"expires_at":null`)

	rec = do(router, http.MethodGet, "/api/alerts?target_audience=ifc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []model.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)

	rec = do(router, http.MethodGet, "/api/alerts?target_audience=noida", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(router, http.MethodPut, "/api/alerts/"+created.ID, `{"priority":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.AlertPriorityHigh, updated.Priority)
	assert.Equal(t, "Power cut", updated.Title)

	rec = do(router, http.MethodGet, "/api/alerts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodDelete, "/api/alerts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/alerts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errResp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.CodeAlertNotFound, errResp.Code)
}

func TestCreate_BadRequests(t *testing.T) {
	router := newTestRouter()

	rec := do(router, http.MethodPost, "/api/alerts", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/alerts", `{"title":"t"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
