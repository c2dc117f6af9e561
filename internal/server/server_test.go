// file: internal/server/server_test.go
// version: 1.1.0
// guid: ad606a41-9af1-41e8-a89d-4034e76132f3

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/medication-identifier/internal/config"
	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/models"
)

// setupTestServer creates a test server backed by a temporary Pebble store
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = config.Config{
		DatabaseType: "pebble",
		DatabasePath: t.TempDir(),
	}
	config.AppConfig.Matcher.MinRelevance = 0.1
	config.AppConfig.Matcher.MaxResults = 10
	config.AppConfig.Matcher.FuzzyCutoff = 2

	store, err := database.NewPebbleStore(config.AppConfig.DatabasePath)
	require.NoError(t, err)
	database.GlobalStore = store
	t.Cleanup(func() {
		store.Close()
		database.GlobalStore = nil
	})

	return NewServer()
}

// setupTestServerWithStore creates a test server with a provided store
func setupTestServerWithStore(t *testing.T, store database.Store) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = config.Config{}
	config.AppConfig.Matcher.MinRelevance = 0.1
	config.AppConfig.Matcher.MaxResults = 10
	config.AppConfig.Matcher.FuzzyCutoff = 2

	database.GlobalStore = store
	t.Cleanup(func() { database.GlobalStore = nil })

	return NewServer()
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	return &buf
}

func seedTestRecords(t *testing.T) {
	t.Helper()
	records := []*models.Record{
		{Name: "Aspirin", Metadata: &models.RecordMetadata{
			GenericName:  "acetylsalicylic acid",
			BrandNames:   []string{"Bayer"},
			Dosage:       "500mg",
			Color:        "white",
			Shape:        "round",
			ExternalCode: "8600097010115",
		}},
		{Name: "Ibuprofen", Metadata: &models.RecordMetadata{
			BrandNames: []string{"Advil", "Nurofen"},
			Dosage:     "200mg",
		}},
		{Name: "Acetaminophen", Metadata: &models.RecordMetadata{
			GenericName: "paracetamol",
			BrandNames:  []string{"Tylenol"},
		}},
	}
	for _, rec := range records {
		_, err := database.GlobalStore.CreateRecord(rec)
		require.NoError(t, err)
	}
}

// TestHealthCheck tests the health check endpoint
func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	for _, path := range []string{"/healthz", "/api/health"} {
		w := doJSON(t, server, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ok", response.Status)
		assert.NotZero(t, response.Timestamp)
	}
}

// TestHealthCheckDegraded tests the degraded state without a store
func TestHealthCheckDegraded(t *testing.T) {
	server := setupTestServerWithStore(t, &database.MockStore{})
	database.GlobalStore = nil

	w := doJSON(t, server, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response.Status)
}

// TestMetricsEndpoint tests that /metrics serves Prometheus output
func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

// TestCORSPreflight tests OPTIONS handling
func TestCORSPreflight(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/records", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
