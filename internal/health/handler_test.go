package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"officehub/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, pinger Pinger, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := httprouter.New()
	NewHealthHandler(pinger, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   HealthResponse
	}{
		{"connected", nil, http.StatusOK, HealthResponse{Status: "healthy", StorageConnected: true}},
		{"disconnected", errors.New("no reachable servers"), http.StatusServiceUnavailable, HealthResponse{Status: "degraded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, PingFunc(func(context.Context) error { return tt.pingErr }), "/health")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestReady(t *testing.T) {
	rec := serve(t, PingFunc(func(context.Context) error { return nil }), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","storage":"ok"}`, rec.Body.String())

	rec = serve(t, PingFunc(func(context.Context) error { return errors.New("down") }), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","storage":"error"}`, rec.Body.String())
}
