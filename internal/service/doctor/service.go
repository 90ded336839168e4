package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/internal/service/snapshot"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

// Schema is the doctor list pipeline: search by name, specialization or
// department; filter by department or specialization.
var Schema = listquery.Schema[model.Doctor]{
	Searchable: []listquery.Field[model.Doctor]{
		func(d model.Doctor) string { return d.Name },
		func(d model.Doctor) string { return d.Specialization },
		func(d model.Doctor) string { return d.Department },
	},
	Filters: map[string]listquery.Field[model.Doctor]{
		"department":     func(d model.Doctor) string { return d.Department },
		"specialization": func(d model.Doctor) string { return d.Specialization },
	},
}

type DoctorService interface {
	Snapshot(ctx context.Context) (*model.DoctorsDocument, error)
	List(ctx context.Context, q listquery.Query) (listquery.Page[model.Doctor], model.DoctorSummary, error)
	Get(ctx context.Context, id string) (*model.Doctor, error)
	Summary(ctx context.Context) (*model.DoctorSummaryReport, error)
	Analytics(ctx context.Context) (*model.DoctorAnalytics, error)
}

type Service struct {
	docs    *snapshot.Cache[*model.DoctorsDocument]
	metrics *metrics.Metrics
}

func NewService(repo repository.DoctorRepository, store *cache.Cache, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		docs:    snapshot.New(store, "doctors", ttl, m, repo.Load),
		metrics: m,
	}
}

func (s *Service) Snapshot(ctx context.Context) (*model.DoctorsDocument, error) {
	return s.docs.Get(ctx)
}

// List runs the doctor pipeline over the current snapshot and returns the
// page together with the stored summary.
func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Page[model.Doctor], model.DoctorSummary, error) {
	doc, err := s.docs.Get(ctx)
	if err != nil {
		return listquery.Page[model.Doctor]{}, model.DoctorSummary{}, err
	}

	page := Schema.Run(doc.Doctors, q)
	s.metrics.ListResults.WithLabelValues("doctors").Observe(float64(page.TotalCount))
	return page, doc.Summary, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Doctor, error) {
	doc, err := s.docs.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Doctors {
		if doc.Doctors[i].ID == id {
			d := doc.Doctors[i]
			return &d, nil
		}
	}
	return nil, errors.NotFound("doctor", fmt.Errorf("id %q", id))
}

func (s *Service) Summary(ctx context.Context) (*model.DoctorSummaryReport, error) {
	doc, err := s.docs.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &model.DoctorSummaryReport{
		DoctorSummary:   doc.Summary,
		CalculatedStats: CalculateStats(doc.Doctors),
	}, nil
}

func (s *Service) Analytics(ctx context.Context) (*model.DoctorAnalytics, error) {
	doc, err := s.docs.Get(ctx)
	if err != nil {
		return nil, err
	}
	return BuildAnalytics(doc.Doctors), nil
}

// CalculateStats derives the summary card averages and distinct lists.
func CalculateStats(doctors []model.Doctor) model.CalculatedStats {
	return model.CalculatedStats{
		AverageExperience: listquery.Round1(listquery.Mean(doctors, func(d model.Doctor) float64 {
			return float64(d.Experience)
		})),
		AverageRating: listquery.Round1(listquery.Mean(doctors, func(d model.Doctor) float64 {
			return d.Rating
		})),
		AverageSuccessRate: listquery.Round1(listquery.Mean(doctors, func(d model.Doctor) float64 {
			return d.SuccessRate
		})),
		Departments:     listquery.Distinct(doctors, func(d model.Doctor) string { return d.Department }),
		Specializations: listquery.Distinct(doctors, func(d model.Doctor) string { return d.Specialization }),
	}
}

// BuildAnalytics computes the chart series. Groups keep first-seen order and
// ratings are bucketed to one decimal by flooring.
func BuildAnalytics(doctors []model.Doctor) *model.DoctorAnalytics {
	bySpec := listquery.GroupCount(doctors, func(d model.Doctor) string { return d.Specialization })
	byDept := listquery.GroupCount(doctors, func(d model.Doctor) string { return d.Department })
	byRating := listquery.GroupCount(doctors, func(d model.Doctor) float64 { return listquery.Bucket1(d.Rating) })

	out := &model.DoctorAnalytics{
		SpecializationDistribution: make([]model.SpecializationCount, len(bySpec)),
		DepartmentDistribution:     make([]model.DepartmentCount, len(byDept)),
		RatingDistribution:         make([]model.RatingCount, len(byRating)),
		ExperienceVsSuccess:        make([]model.ExperiencePoint, len(doctors)),
	}
	for i, g := range bySpec {
		out.SpecializationDistribution[i] = model.SpecializationCount{Specialization: g.Key, Count: g.Count}
	}
	for i, g := range byDept {
		out.DepartmentDistribution[i] = model.DepartmentCount{Department: g.Key, Count: g.Count}
	}
	for i, g := range byRating {
		out.RatingDistribution[i] = model.RatingCount{Rating: fmt.Sprintf("%.1f", g.Key), Count: g.Count}
	}
	for i, d := range doctors {
		out.ExperienceVsSuccess[i] = model.ExperiencePoint{
			Experience:  d.Experience,
			SuccessRate: d.SuccessRate,
			Rating:      d.Rating,
			Name:        d.Name,
		}
	}
	return out
}
