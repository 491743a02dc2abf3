package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bag-mes/internal/config"
	"bag-mes/internal/service"
	"bag-mes/internal/storage"

	"github.com/stretchr/testify/assert"
)

type stubNotes struct{}

func (stubNotes) Latest(ctx context.Context, limit int) ([]storage.Notification, error) {
	return []storage.Notification{}, nil
}

type stubExcel struct{}

func (stubExcel) GenerateExcel(ctx context.Context, f storage.ReportFilter) ([]byte, error) {
	return []byte("xlsx"), nil
}

func testRouter() http.Handler {
	cfg := config.Config{AdminLogin: "admin", AdminPass: "secret", CORSOrigins: []string{"http://localhost:5173"}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return routes(cfg, log, (*service.ProductionService)(nil), stubNotes{}, stubExcel{})
}

func TestRoutes_AdminRequiresAuth(t *testing.T) {
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	router := testRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report/excel", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// неверный id отсекается до сервиса
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rolls/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/rolls", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
