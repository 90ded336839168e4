package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/repository"
)

const readyTimeout = 2 * time.Second

type Handler struct {
	service  string
	storage  repository.HealthChecker
	gatherer prometheus.Gatherer
}

func NewHandler(service string, storage repository.HealthChecker, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		service:  service,
		storage:  storage,
		gatherer: gatherer,
	}
}

// RegisterRoot mounts the unversioned probe and metrics endpoints.
func (h *Handler) RegisterRoot(r gin.IRoutes) {
	r.GET("/health", h.LivenessCheck)
	r.GET("/metrics", h.Metrics())
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.service})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": h.service,
			"reason":  "storage unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "service": h.service})
}

func (h *Handler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
