package auth

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/auth"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
	"github.com/jwalitptl/caredash-api/pkg/validator"
)

type Handler struct {
	svc       auth.AuthService
	validator validator.Validator
}

func NewHandler(svc auth.AuthService, v validator.Validator) *Handler {
	return &Handler{svc: svc, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case stderrors.Is(err, model.ErrInvalidCredentials):
			httputil.RespondWithError(c, errors.Unauthorized(err))
		case stderrors.Is(err, auth.ErrLocked):
			httputil.RespondWithError(c, errors.Forbidden(err))
		default:
			log.Error().Err(err).Msg("login failed")
			httputil.RespondWithError(c, errors.Internal(err))
		}
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}
