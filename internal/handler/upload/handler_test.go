package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/upload"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

type templates struct{}

func (templates) LoadTemplate(context.Context) (model.JSONMap, error) {
	return model.JSONMap{"patient": map[string]interface{}{"name": "Jane Roe"}}, nil
}

func setup(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(upload.NewService(templates{}, metrics.NewNop()), maxBytes).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartRequest(t *testing.T, url, field string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "scan.dcm")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	r := setup(1 << 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/upload", "file", []byte("scan")))
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "scan.dcm", resp.Filename)
	assert.Len(t, resp.Features, 3)
}

func TestPatientInfo(t *testing.T) {
	r := setup(1 << 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/patient-info", "file", []byte("scan")))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "scan.dcm", resp["processed_file"])
	assert.Contains(t, resp, "patient")
}

func TestUpload_MissingFile(t *testing.T) {
	r := setup(1 << 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/upload", "attachment", []byte("scan")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	r := setup(16)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/upload", "file", bytes.Repeat([]byte("x"), 1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
