package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func setup(storageErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "caredash")
	m.AppointmentsBooked.Inc()

	h := NewHandler("CareDash API", pinger{err: storageErr}, reg)
	r := gin.New()
	h.RegisterRoot(r)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestHealth(t *testing.T) {
	r := setup(nil)

	for _, url := range []string{"/health", "/api/v1/health/live"} {
		w := get(r, url)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","service":"CareDash API"}`, w.Body.String())
	}
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health/ready").Code)
}

func TestReadiness_StorageDown(t *testing.T) {
	r := setup(errors.New("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/api/v1/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
}

func TestMetrics(t *testing.T) {
	w := get(setup(nil), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "caredash_appointments_booked_total 1")
}
