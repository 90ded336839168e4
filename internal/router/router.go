package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/middleware"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// RootHandler mounts routes outside /api/v1.
type RootHandler interface {
	RegisterRoot(gin.IRoutes)
}

type Router struct {
	engine   *gin.Engine
	root     []RootHandler
	handlers []Handler
}

type RouterConfig struct {
	Mode         string
	RateLimit    *middleware.RateLimiterConfig
	CORSConfig   middleware.CORSConfig
	Timeout      time.Duration
	MaxBodyBytes int64
	Metrics      *metrics.Metrics
}

func NewRouter(config RouterConfig, root []RootHandler, handlers ...Handler) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNop()
	}

	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(config.Metrics),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	if config.MaxBodyBytes > 0 {
		limits := middleware.DefaultSizeLimitConfig()
		limits.MaxBodySize = config.MaxBodyBytes
		engine.Use(middleware.SizeLimit(limits))
	}

	return &Router{
		engine:   engine,
		root:     root,
		handlers: handlers,
	}
}

func (r *Router) Setup() *gin.Engine {
	for _, h := range r.root {
		h.RegisterRoot(r.engine)
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
	return r.engine
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
