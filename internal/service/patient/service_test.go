package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

type stubRepo struct {
	doc *model.PatientsDocument
	err error
}

func (r *stubRepo) Load(context.Context) (*model.PatientsDocument, error) {
	return r.doc, r.err
}

func (r *stubRepo) LoadRaw(context.Context) (json.RawMessage, error) {
	if r.err != nil {
		return nil, r.err
	}
	return json.Marshal(r.doc)
}

func source() []model.BackendPatient {
	return []model.BackendPatient{
		{ID: "P001", Age: 54, Gender: "Male", Diagnosis: "Stroke", LengthOfStay: 12, VitalSigns: model.BackendVitals{HeartRate: 72}},
		{ID: "P002", Age: 47, Gender: "Female", Diagnosis: "Diabetes", LengthOfStay: 5, Readmission: true, VitalSigns: model.BackendVitals{HeartRate: 88.6}},
		{ID: "P013", Age: 33, Gender: "Other", Diagnosis: "Migraine", LengthOfStay: 3, VitalSigns: model.BackendVitals{HeartRate: 65}},
		{ID: "P004", Age: 58, Gender: "Male", Diagnosis: "Stroke", LengthOfStay: 15, VitalSigns: model.BackendVitals{HeartRate: 70}},
	}
}

func lc(label string, count int) model.LabelCount {
	return model.LabelCount{Label: label, Count: count}
}

func newService() *Service {
	svc := NewService(&stubRepo{doc: &model.PatientsDocument{Patients: source()}}, cache.New(time.Minute, time.Minute), time.Minute, metrics.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC) }
	return svc
}

func TestEnrich_DerivedFields(t *testing.T) {
	e := NewEnricher(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	src := source()

	cases := []struct {
		name, doctor, department string
		status                   model.PatientStatus
	}{
		{"Robert Chen", "Dr. Emily Rodriguez", "Neurology", model.PatientStatusDischarged},
		{"Sarah Johnson", "Dr. Michael Brown", "Endocrinology", model.PatientStatusActive},
		{"Michael Davis", "Dr. Jennifer Lee", "General Medicine", model.PatientStatusPending},
		{"David Wilson", "Dr. Jennifer Lee", "Neurology", model.PatientStatusDischarged},
	}
	for i, tc := range cases {
		p := e.Enrich(src[i])
		assert.Equal(t, tc.name, p.Name, src[i].ID)
		assert.Equal(t, tc.doctor, p.AssignedDoctor, src[i].ID)
		assert.Equal(t, tc.department, p.Department, src[i].ID)
		assert.Equal(t, tc.status, p.Status, src[i].ID)
		assert.Equal(t, src[i].Diagnosis, p.Condition)
	}
}

func TestEnrich_IsDeterministic(t *testing.T) {
	e := NewEnricher(time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	later := NewEnricher(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC))

	for _, p := range source() {
		assert.Equal(t, e.Enrich(p), e.Enrich(p))
		assert.Equal(t, e.Enrich(p), later.Enrich(p), "same reference day")
	}
}

func TestEnrich_GeneratedFieldsStayInRange(t *testing.T) {
	e := NewEnricher(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	phone := regexp.MustCompile(`^\+1-555-[1-9]\d{2}-[1-9]\d{3}$`)
	bp := regexp.MustCompile(`^(1[1-4]\d)/([67]\d) mmHg$`)

	for i := 0; i < 200; i++ {
		p := e.Enrich(model.BackendPatient{ID: fmt.Sprintf("P%03d", i), Gender: "Female"})

		assert.Regexp(t, phone, p.Contact.Phone)
		assert.Regexp(t, bp, p.VitalSigns.BloodPressure)
		assert.GreaterOrEqual(t, p.VitalSigns.HeartRate, 60)
		assert.LessOrEqual(t, p.VitalSigns.HeartRate, 99)
		assert.GreaterOrEqual(t, p.VitalSigns.OxygenSaturation, 90)
		assert.LessOrEqual(t, p.VitalSigns.OxygenSaturation, 99)
		assert.GreaterOrEqual(t, p.VitalSigns.Temperature, 97.0)
		assert.LessOrEqual(t, p.VitalSigns.Temperature, 101.0)
		assert.NotEmpty(t, p.MedicalHistory.Allergies)
		assert.LessOrEqual(t, len(p.MedicalHistory.Surgeries), 1)
		assert.NotNil(t, p.MedicalHistory.Surgeries)
		require.Len(t, p.Appointments, 1)
		assert.Equal(t, p.AssignedDoctor, p.Appointments[0].Doctor)
		assert.Equal(t, "09:00 AM", p.Appointments[0].Time)
		assert.LessOrEqual(t, p.AdmissionDate, "2026-03-10")
		assert.GreaterOrEqual(t, p.Appointments[0].Date, "2026-03-10")
	}
}

func TestEnrich_Email(t *testing.T) {
	p := NewEnricher(time.Now()).Enrich(model.BackendPatient{ID: "P001", Gender: "Male"})
	assert.Equal(t, "robert.chen@email.com", p.Contact.Email)
}

func TestIDIndex(t *testing.T) {
	assert.Equal(t, 3, idIndex("P013", 10))
	assert.Equal(t, 0, idIndex("no-digits", 10))
	assert.Equal(t, 12345678901234567%9, idIndex("ID-12345678901234567", 9))
}

func TestList_SearchAndFilter(t *testing.T) {
	svc := newService()

	page, err := svc.List(context.Background(), listquery.Query{Search: "JENNIFER"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)

	page, err = svc.List(context.Background(), listquery.Query{
		Selections: map[string]string{"status": "discharged", "gender": "Male"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "P001", page.Items[0].ID)
	assert.Equal(t, "P004", page.Items[1].ID)
}

func TestGet(t *testing.T) {
	svc := newService()

	p, err := svc.Get(context.Background(), "P002")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", p.Name)

	_, err = svc.Get(context.Background(), "P999")
	assert.Equal(t, 404, errors.StatusOf(err))
}

func TestInsights_AllPatients(t *testing.T) {
	insights, err := newService().Insights(context.Background(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, model.PatientMetrics{TotalPatients: 4, AverageAge: 48, ActivePatients: 1, RecoveryRate: 50.0}, insights.Metrics)
	assert.Equal(t, []model.LabelCount{lc("Neurology", 2), lc("Endocrinology", 1), lc("General Medicine", 1)}, insights.DepartmentDistribution)
	assert.Equal(t, []model.LabelCount{lc("discharged", 2), lc("active", 1), lc("pending", 1)}, insights.StatusDistribution)
	assert.Equal(t, []model.LabelCount{lc("Stroke", 2), lc("Diabetes", 1), lc("Migraine", 1)}, insights.DiagnosisDistribution)
	assert.Equal(t, []model.LabelCount{lc("50-59", 2), lc("40-49", 1), lc("30-39", 1)}, insights.AgeDistribution)
	assert.Equal(t, 25.0, insights.ReadmissionRate)
	assert.Equal(t, 8.8, insights.AverageLengthOfStay)
	require.Len(t, insights.AgeVsHeartRate, 4)
	assert.Equal(t, model.AgeHeartRatePoint{ID: "P002", Age: 47, HeartRate: 89}, insights.AgeVsHeartRate[1])
}

func TestInsights_FilteredView(t *testing.T) {
	insights, err := newService().Insights(context.Background(), "", map[string]string{"department": "Neurology"})
	require.NoError(t, err)

	assert.Equal(t, 2, insights.Metrics.TotalPatients)
	assert.Equal(t, 0.0, insights.ReadmissionRate)
	assert.Equal(t, 13.5, insights.AverageLengthOfStay)
	assert.Equal(t, 100.0, insights.Metrics.RecoveryRate)
}

func TestInsights_EmptyViewIsZero(t *testing.T) {
	insights, err := newService().Insights(context.Background(), "nobody", nil)
	require.NoError(t, err)

	assert.Equal(t, model.PatientMetrics{}, insights.Metrics)
	assert.Equal(t, 0.0, insights.ReadmissionRate)
	assert.Empty(t, insights.DiagnosisDistribution)
	assert.NotNil(t, insights.AgeVsHeartRate)
}

func TestRaw(t *testing.T) {
	raw, err := newService().Raw(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"P013"`)
}

func TestNoDataPropagates(t *testing.T) {
	svc := NewService(&stubRepo{err: fmt.Errorf("patients: %w", errors.ErrNoData)}, cache.New(time.Minute, time.Minute), time.Minute, metrics.NewNop())

	_, err := svc.List(context.Background(), listquery.Query{})
	assert.True(t, errors.Is(err, errors.ErrNoData))
	_, err = svc.Raw(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNoData))
}
