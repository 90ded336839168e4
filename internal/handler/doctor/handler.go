package doctor

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/handler"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/doctor"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
)

type Handler struct {
	service doctor.DoctorService
	opts    handler.ListOptions
}

func NewHandler(service doctor.DoctorService, opts handler.ListOptions) *Handler {
	return &Handler{service: service, opts: opts}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/analytics", h.GetAnalytics)
		doctors.GET("/summary", h.GetSummary)
		doctors.GET("/:id", h.GetDoctor)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	req, err := handler.ParseListQuery(c, doctor.Schema.Fields(), h.opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page, summary, err := h.service.List(c.Request.Context(), req.Query)
	fallback := gin.H{"doctors": []model.Doctor{}, "summary": gin.H{}}
	if err != nil {
		handler.RespondWithData(c, err, fallback, nil)
		return
	}

	body := gin.H{"doctors": page.Items, "summary": summary}
	if meta := req.Pagination(page.Meta); meta != nil {
		body["pagination"] = meta
	}
	handler.RespondWithData(c, nil, nil, body)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id := c.Param("id")
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNoData) {
			err = errors.NotFound("doctor", fmt.Errorf("id %q: %w", id, err))
		}
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithData(c, nil, nil, d)
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	analytics, err := h.service.Analytics(c.Request.Context())
	handler.RespondWithData(c, err, gin.H{
		"specialization_distribution": []model.SpecializationCount{},
		"department_distribution":     []model.DepartmentCount{},
		"rating_distribution":         []model.RatingCount{},
		"experience_vs_success":       []model.ExperiencePoint{},
	}, analytics)
}

func (h *Handler) GetSummary(c *gin.Context) {
	report, err := h.service.Summary(c.Request.Context())
	handler.RespondWithData(c, err, gin.H{
		"totalDoctors":       0,
		"averageExperience":  0,
		"averageRating":      0,
		"averageSuccessRate": 0,
		"calculated_stats":   doctor.CalculateStats(nil),
	}, report)
}
