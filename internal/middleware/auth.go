package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/auth"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
)

const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

type AuthMiddleware struct {
	jwtSvc  auth.JWTService
	enabled bool
}

// NewAuthMiddleware returns a middleware set that lets every request through
// when enabled is false.
func NewAuthMiddleware(jwtSvc auth.JWTService, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:  jwtSvc,
		enabled: enabled,
	}
}

// Authenticate verifies the bearer token and stores its claims in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.Unauthorized(fmt.Errorf("missing authorization header")))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, errors.Unauthorized(fmt.Errorf("invalid authorization format")))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, errors.Unauthorized(err))
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects authenticated callers that lack role.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}
		if c.GetString(ContextRole) != role {
			httputil.RespondWithError(c, errors.Forbidden(fmt.Errorf("role %q required", role)))
			return
		}
		c.Next()
	}
}

// Operator chains Authenticate and RequireRole(model.RoleOperator).
func (m *AuthMiddleware) Operator() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Authenticate(), m.RequireRole(model.RoleOperator)}
}
