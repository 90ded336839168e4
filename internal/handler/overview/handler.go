package overview

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/handler"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/overview"
)

type Handler struct {
	service *overview.Service
}

func NewHandler(service *overview.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/overview", h.GetOverview)
}

func (h *Handler) GetOverview(c *gin.Context) {
	ov, err := h.service.Get(c.Request.Context())
	handler.RespondWithData(c, err, gin.H{
		"doctors":     model.DoctorOverview{},
		"patients":    model.PatientMetrics{},
		"departments": []model.DepartmentLoad{},
	}, ov)
}
