package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		MaxAge:       24 * time.Hour,
	}
}

func CORS(config CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			HeaderXRequestID,
		},
		ExposeHeaders: []string{
			"Content-Length",
			HeaderXRequestID,
		},
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	}

	if len(config.AllowOrigins) == 0 || contains(config.AllowOrigins, "*") {
		if config.AllowCredentials {
			c.AllowOriginFunc = func(string) bool { return true }
		} else {
			c.AllowAllOrigins = true
		}
	} else {
		c.AllowOrigins = config.AllowOrigins
	}

	return cors.New(c)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
