package patient

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/handler"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/patient"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
	opts    handler.ListOptions
}

func NewHandler(service patient.PatientService, opts handler.ListOptions) *Handler {
	return &Handler{service: service, opts: opts}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/raw", h.GetRaw)
		patients.GET("/insights", h.GetInsights)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	req, err := handler.ParseListQuery(c, patient.Schema.Fields(), h.opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), req.Query)
	if err != nil {
		handler.RespondWithData(c, err, gin.H{"patients": []model.Patient{}}, nil)
		return
	}

	body := gin.H{"patients": page.Items}
	if meta := req.Pagination(page.Meta); meta != nil {
		body["pagination"] = meta
	}
	handler.RespondWithData(c, nil, nil, body)
}

// GetRaw serves the source document byte for byte.
func (h *Handler) GetRaw(c *gin.Context) {
	raw, err := h.service.Raw(c.Request.Context())
	if err != nil {
		handler.RespondWithData(c, err, gin.H{"patients": []model.BackendPatient{}}, nil)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id := c.Param("id")
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNoData) {
			err = errors.NotFound("patient", fmt.Errorf("id %q: %w", id, err))
		}
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithData(c, nil, nil, p)
}

// GetInsights accepts the list filters so the charts can follow the table.
func (h *Handler) GetInsights(c *gin.Context) {
	req, err := handler.ParseListQuery(c, patient.Schema.Fields(), h.opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	insights, err := h.service.Insights(c.Request.Context(), req.Query.Search, req.Query.Selections)
	handler.RespondWithData(c, err, gin.H{
		"metrics":                 model.PatientMetrics{},
		"department_distribution": []model.LabelCount{},
		"status_distribution":     []model.LabelCount{},
		"diagnosis_distribution":  []model.LabelCount{},
		"age_distribution":        []model.LabelCount{},
		"readmission_rate":        0,
		"average_length_of_stay":  0,
		"age_vs_heart_rate":       []model.AgeHeartRatePoint{},
	}, insights)
}
