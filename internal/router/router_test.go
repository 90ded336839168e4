package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/caredash-api/internal/middleware"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
}

type rootHandler struct{}

func (rootHandler) RegisterRoot(r gin.IRoutes) {
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func newEngine(cfg RouterConfig) *gin.Engine {
	cfg.Mode = gin.TestMode
	return NewRouter(cfg, []RootHandler{rootHandler{}}, pingHandler{}).Setup()
}

func TestSetup_MountsRoutes(t *testing.T) {
	m := metrics.NewNop()
	r := newEngine(RouterConfig{Metrics: m})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_RecoversPanics(t *testing.T) {
	r := newEngine(RouterConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSetup_BodyLimit(t *testing.T) {
	r := newEngine(RouterConfig{MaxBodyBytes: 4})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSetup_RateLimit(t *testing.T) {
	r := newEngine(RouterConfig{RateLimit: &middleware.RateLimiterConfig{RPS: 0.001, Burst: 1}})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
