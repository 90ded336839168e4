package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/internal/service/snapshot"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

// Schema is the patient list pipeline: search by name, condition, department
// or assigned doctor; filter by status, department or gender.
var Schema = listquery.Schema[model.Patient]{
	Searchable: []listquery.Field[model.Patient]{
		func(p model.Patient) string { return p.Name },
		func(p model.Patient) string { return p.Condition },
		func(p model.Patient) string { return p.Department },
		func(p model.Patient) string { return p.AssignedDoctor },
	},
	Filters: map[string]listquery.Field[model.Patient]{
		"status":     func(p model.Patient) string { return string(p.Status) },
		"department": func(p model.Patient) string { return p.Department },
		"gender":     func(p model.Patient) string { return p.Gender },
	},
}

// record pairs an enriched patient with its source row so insights over a
// filtered view can still read source-only fields.
type record struct {
	patient model.Patient
	source  model.BackendPatient
}

var recordSchema = listquery.Map(Schema, func(r record) model.Patient { return r.patient })

// Dataset is one enriched snapshot of the patient source.
type Dataset struct {
	records  []record
	Patients []model.Patient
}

type PatientService interface {
	Snapshot(ctx context.Context) (*Dataset, error)
	List(ctx context.Context, q listquery.Query) (listquery.Page[model.Patient], error)
	Get(ctx context.Context, id string) (*model.Patient, error)
	Raw(ctx context.Context) (json.RawMessage, error)
	Insights(ctx context.Context, search string, selections map[string]string) (*model.PatientInsights, error)
}

type Service struct {
	repo    repository.PatientRepository
	data    *snapshot.Cache[*Dataset]
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.PatientRepository, store *cache.Cache, ttl time.Duration, m *metrics.Metrics) *Service {
	s := &Service{
		repo:    repo,
		metrics: m,
		now:     time.Now,
	}
	s.data = snapshot.New(store, "patients", ttl, m, s.load)
	return s
}

func (s *Service) load(ctx context.Context) (*Dataset, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDataset(doc.Patients, NewEnricher(s.now())), nil
}

// BuildDataset enriches every source patient, keeping source order.
func BuildDataset(source []model.BackendPatient, e Enricher) *Dataset {
	ds := &Dataset{
		records:  make([]record, len(source)),
		Patients: make([]model.Patient, len(source)),
	}
	for i, p := range source {
		enriched := e.Enrich(p)
		ds.records[i] = record{patient: enriched, source: p}
		ds.Patients[i] = enriched
	}
	return ds
}

func (s *Service) Snapshot(ctx context.Context) (*Dataset, error) {
	return s.data.Get(ctx)
}

func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Page[model.Patient], error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return listquery.Page[model.Patient]{}, err
	}

	page := Schema.Run(ds.Patients, q)
	s.metrics.ListResults.WithLabelValues("patients").Observe(float64(page.TotalCount))
	return page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ds.Patients {
		if ds.Patients[i].ID == id {
			p := ds.Patients[i]
			return &p, nil
		}
	}
	return nil, errors.NotFound("patient", fmt.Errorf("id %q", id))
}

// Raw returns the source document untouched. It bypasses the snapshot cache.
func (s *Service) Raw(ctx context.Context) (json.RawMessage, error) {
	return s.repo.LoadRaw(ctx)
}

// Insights computes dashboard metrics over the patients matching search and
// selections.
func (s *Service) Insights(ctx context.Context, search string, selections map[string]string) (*model.PatientInsights, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return nil, err
	}
	return BuildInsights(recordSchema.Filter(ds.records, search, selections)), nil
}

// Metrics summarises enriched patients for the summary cards.
func Metrics(patients []model.Patient) model.PatientMetrics {
	total := len(patients)
	discharged := listquery.Count(patients, func(p model.Patient) bool {
		return p.Status == model.PatientStatusDischarged
	})
	return model.PatientMetrics{
		TotalPatients: total,
		AverageAge: int(math.Round(listquery.Mean(patients, func(p model.Patient) float64 {
			return float64(p.Age)
		}))),
		ActivePatients: listquery.Count(patients, func(p model.Patient) bool {
			return p.Status == model.PatientStatusActive
		}),
		RecoveryRate: listquery.Round1(listquery.Percent(discharged, total)),
	}
}

func BuildInsights(records []record) *model.PatientInsights {
	patients := make([]model.Patient, len(records))
	for i, r := range records {
		patients[i] = r.patient
	}

	readmitted := listquery.Count(records, func(r record) bool { return r.source.Readmission })

	points := make([]model.AgeHeartRatePoint, len(records))
	for i, r := range records {
		points[i] = model.AgeHeartRatePoint{
			ID:        r.source.ID,
			Age:       r.source.Age,
			HeartRate: int(math.Round(r.source.VitalSigns.HeartRate)),
		}
	}

	return &model.PatientInsights{
		Metrics: Metrics(patients),
		DepartmentDistribution: labels(listquery.GroupCount(patients, func(p model.Patient) string {
			return p.Department
		})),
		StatusDistribution: labels(listquery.GroupCount(patients, func(p model.Patient) string {
			return string(p.Status)
		})),
		DiagnosisDistribution: labels(listquery.SortByCountDesc(listquery.GroupCount(patients, func(p model.Patient) string {
			return p.Condition
		}))),
		AgeDistribution: labels(listquery.GroupCount(patients, func(p model.Patient) string {
			return ageGroup(p.Age)
		})),
		ReadmissionRate: listquery.Round1(listquery.Percent(readmitted, len(records))),
		AverageLengthOfStay: listquery.Round1(listquery.Mean(records, func(r record) float64 {
			return float64(r.source.LengthOfStay)
		})),
		AgeVsHeartRate: points,
	}
}

// ageGroup labels the decade an age falls in: 47 -> "40-49".
func ageGroup(age int) string {
	decade := int(math.Floor(float64(age)/10)) * 10
	return fmt.Sprintf("%d-%d", decade, decade+9)
}

func labels(groups []listquery.Group[string]) []model.LabelCount {
	out := make([]model.LabelCount, len(groups))
	for i, g := range groups {
		out[i] = model.LabelCount{Label: g.Key, Count: g.Count}
	}
	return out
}
