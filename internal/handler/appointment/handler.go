package appointment

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/handler"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/appointment"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
	"github.com/jwalitptl/caredash-api/pkg/validator"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type Handler struct {
	service appointment.AppointmentService
	opts    handler.ListOptions
	// operator guards the booking list.
	operator []gin.HandlerFunc
}

func NewHandler(service appointment.AppointmentService, opts handler.ListOptions, operator ...gin.HandlerFunc) *Handler {
	return &Handler{service: service, opts: opts, operator: operator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/book-appointment", h.BookAppointment)
	chain := append(append([]gin.HandlerFunc{}, h.operator...), h.ListAppointments)
	r.GET("/appointments", chain...)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.BookAppointmentResponse{
			Status:  statusError,
			Message: "invalid request body",
			Error:   err.Error(),
		})
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		var verr *validator.ValidationError
		if stderrors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  statusError,
				"message": "validation failed",
				"errors":  verr.Fields,
			})
			return
		}

		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("booking failed")
		c.JSON(http.StatusInternalServerError, model.BookAppointmentResponse{
			Status:  statusError,
			Message: "Failed to book appointment",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.BookAppointmentResponse{
		Status:        statusSuccess,
		Message:       "Appointment booked successfully",
		AppointmentID: apt.ID,
		Appointment:   apt,
	})
}

func (h *Handler) ListAppointments(c *gin.Context) {
	req, err := handler.ParseListQuery(c, appointment.Schema.Fields(), h.opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), req.Query)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	body := gin.H{"appointments": page.Items}
	if meta := req.Pagination(page.Meta); meta != nil {
		body["pagination"] = meta
	}
	c.JSON(http.StatusOK, body)
}
