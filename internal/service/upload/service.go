package upload

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

const (
	kindFeatures    = "features"
	kindPatientInfo = "patient_info"
	vectorLen       = 4
)

var featureNames = []string{"tissue_density", "lesion_probability", "structural_anomaly"}

type UploadService interface {
	ExtractFeatures(ctx context.Context, file *model.UploadedFile) (*model.UploadResponse, error)
	ProcessPatientInfo(ctx context.Context, file *model.UploadedFile) (model.JSONMap, error)
}

type Service struct {
	templates repository.PatientInfoRepository
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(templates repository.PatientInfoRepository, m *metrics.Metrics) *Service {
	return &Service{templates: templates, metrics: m, now: time.Now}
}

// ExtractFeatures derives a fixed feature set from the content digest, so an
// identical file always yields identical features.
func (s *Service) ExtractFeatures(ctx context.Context, file *model.UploadedFile) (*model.UploadResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := s.now()

	digest := sha256.Sum256(file.Content)
	features := Features(digest)

	s.metrics.Uploads.WithLabelValues(kindFeatures, "success").Inc()
	log.Info().Str("filename", file.Filename).Int64("size", file.Size).Msg("features extracted")

	return &model.UploadResponse{
		Filename:     file.Filename,
		ProcessingMS: int(s.now().Sub(start).Milliseconds()),
		Features:     features,
	}, nil
}

func Features(digest [sha256.Size]byte) []model.Feature {
	prefix := hex.EncodeToString(digest[:4])
	features := make([]model.Feature, len(featureNames))
	for i, name := range featureNames {
		base := i * (vectorLen + 1)
		vector := make([]float64, vectorLen)
		for j := range vector {
			vector[j] = round(float64(digest[base+1+j])/255, 3)
		}
		features[i] = model.Feature{
			ID:         fmt.Sprintf("%s-%d", prefix, i+1),
			Name:       name,
			Confidence: round(0.5+float64(digest[base])/510, 2),
			Vector:     vector,
		}
	}
	return features
}

// ProcessPatientInfo merges the patient-info template with processing
// details. A missing template is reported in the body rather than as an
// error.
func (s *Service) ProcessPatientInfo(ctx context.Context, file *model.UploadedFile) (model.JSONMap, error) {
	tmpl, err := s.templates.LoadTemplate(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrNoData) {
			s.metrics.Uploads.WithLabelValues(kindPatientInfo, "no_data").Inc()
			return model.JSONMap{
				"error":          "Patient info template not found",
				"processed_file": file.Filename,
				"status":         "error",
			}, nil
		}
		s.metrics.Uploads.WithLabelValues(kindPatientInfo, "error").Inc()
		return nil, fmt.Errorf("load patient info template: %w", err)
	}

	digest := sha256.Sum256(file.Content)
	out := make(model.JSONMap, len(tmpl)+3)
	for k, v := range tmpl {
		out[k] = v
	}
	out["processed_file"] = file.Filename
	out["processing_time"] = ProcessingTime(digest)
	out["status"] = "success"

	s.metrics.Uploads.WithLabelValues(kindPatientInfo, "success").Inc()
	return out, nil
}

// ProcessingTime is a content-derived figure in [100, 500].
func ProcessingTime(digest [sha256.Size]byte) int {
	return 100 + int(binary.BigEndian.Uint16(digest[:2])%401)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
