package upload

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/upload"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/httputil"
)

const (
	formField = "file"
	// multipartOverhead leaves room for boundaries and part headers on top of
	// the file itself.
	multipartOverhead = 64 << 10
)

type Handler struct {
	service  upload.UploadService
	maxBytes int64
}

func NewHandler(service upload.UploadService, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
	r.POST("/patient-info", h.PatientInfo)
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := h.readFile(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp, err := h.service.ExtractFeatures(c.Request.Context(), file)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) PatientInfo(c *gin.Context) {
	file, err := h.readFile(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	info, err := h.service.ProcessPatientInfo(c.Request.Context(), file)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) readFile(c *gin.Context) (*model.UploadedFile, error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	fh, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.TooLarge(h.maxBytes)
		}
		return nil, errors.BadRequest(fmt.Sprintf("multipart field %q is required", formField), err)
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return nil, errors.TooLarge(h.maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("read upload: %w", err))
	}

	return &model.UploadedFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  content,
	}, nil
}
