package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/repository/file"
	"github.com/jwalitptl/caredash-api/pkg/logger"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ServiceName:  "CareDash Backend API",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Mode:         gin.TestMode,
		},
		Storage:   config.StorageConfig{Driver: config.StorageFile, DataDir: dir},
		Query:     config.QueryConfig{DefaultPageSize: 10, MaxPageSize: 100},
		Upload:    config.UploadConfig{MaxBytes: 1 << 20},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Auth:      config.AuthConfig{TokenTTL: time.Hour},
		Messaging: config.MessagingConfig{Driver: config.MessagingNone},
		Outbox: config.OutboxConfig{
			BatchSize:     10,
			PollInterval:  20 * time.Millisecond,
			RetryAttempts: 1,
			Retention:     time.Hour,
		},
	}
}

func newTestApp(t *testing.T) (*app, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file.DoctorsFile), []byte(`{
		"doctors": [
			{"id": "D001", "name": "Dr. Emily Rodriguez", "specialization": "Neurologist", "department": "Neurology", "experience": 12, "rating": 4.8, "successRate": 94.5}
		],
		"summary": {"totalDoctors": 1, "averageExperience": 12, "averageRating": 4.8, "averageSuccessRate": 94.5}
	}`), 0o600))

	l := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "json", Output: io.Discard})
	a, err := newApp(context.Background(), testConfig(dir), l)
	require.NoError(t, err)
	return a, dir
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestApp_ServesDashboardRoutes(t *testing.T) {
	a, _ := newTestApp(t)
	defer func() { assert.NoError(t, a.Close()) }()

	w := do(t, a.engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, a.engine, http.MethodGet, "/api/v1/health/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, a.engine, http.MethodGet, "/api/v1/doctors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))

	var doctors struct {
		Doctors []struct {
			Name string `json:"name"`
		} `json:"doctors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doctors))
	require.Len(t, doctors.Doctors, 1)
	assert.Equal(t, "Dr. Emily Rodriguez", doctors.Doctors[0].Name)

	// No patients file in the data dir.
	w = do(t, a.engine, http.MethodGet, "/api/v1/patients", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"no data available"`)

	w = do(t, a.engine, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "caredash_http_requests_total")
}

func TestApp_BookingIsPersistedAndListed(t *testing.T) {
	a, dir := newTestApp(t)

	w := do(t, a.engine, http.MethodPost, "/api/v1/book-appointment", `{
		"patientName": "Robert Chen",
		"patientPhone": "555-0101",
		"selectedDoctor": "Dr. Emily Rodriguez",
		"appointmentDate": "2026-11-02",
		"appointmentTime": "10:30"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"appointment_id":"APT0001"`)

	w = do(t, a.engine, http.MethodGet, "/api/v1/appointments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Robert Chen")

	require.NoError(t, a.Close())
	_, err := os.Stat(filepath.Join(dir, file.AppointmentsFile))
	assert.NoError(t, err)
}

func TestNewStorage_FileDriverRelaysInProcess(t *testing.T) {
	cfg := testConfig(t.TempDir())

	st, err := newStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, st.relay)
	assert.Nil(t, st.closer)
	assert.NoError(t, st.health.Ping(context.Background()))
}

func TestNewBroker_DefaultsToNop(t *testing.T) {
	b, err := newBroker(testConfig(t.TempDir()))
	require.NoError(t, err)
	assert.NoError(t, b.Close())
}
