package overview

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/patient"
	"github.com/jwalitptl/caredash-api/pkg/errors"
)

type doctorStub struct {
	doc *model.DoctorsDocument
	err error
}

func (s doctorStub) Snapshot(context.Context) (*model.DoctorsDocument, error) { return s.doc, s.err }

type patientStub struct {
	ds  *patient.Dataset
	err error
}

func (s patientStub) Snapshot(context.Context) (*patient.Dataset, error) { return s.ds, s.err }

func doctors() []model.Doctor {
	return []model.Doctor{
		{ID: "D1", Department: "Cardiology", Experience: 10, Rating: 4.5, SuccessRate: 90},
		{ID: "D2", Department: "Neurology", Experience: 20, Rating: 4.0, SuccessRate: 80},
		{ID: "D3", Department: "Cardiology", Experience: 6, Rating: 5.0, SuccessRate: 100},
	}
}

func patients() []model.Patient {
	return []model.Patient{
		{ID: "P1", Age: 40, Department: "Neurology", Status: model.PatientStatusActive},
		{ID: "P2", Age: 60, Department: "Oncology", Status: model.PatientStatusDischarged},
	}
}

func TestGet(t *testing.T) {
	svc := NewService(
		doctorStub{doc: &model.DoctorsDocument{Doctors: doctors()}},
		patientStub{ds: &patient.Dataset{Patients: patients()}},
	)

	ov, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, ov.Doctors.Total)
	assert.Equal(t, 12.0, ov.Doctors.Stats.AverageExperience)
	assert.Equal(t, []string{"Cardiology", "Neurology"}, ov.Doctors.Stats.Departments)
	assert.Equal(t, model.PatientMetrics{TotalPatients: 2, AverageAge: 50, ActivePatients: 1, RecoveryRate: 50}, ov.Patients)
	assert.Equal(t, []model.DepartmentLoad{
		{Department: "Cardiology", Doctors: 2, Patients: 0},
		{Department: "Neurology", Doctors: 1, Patients: 1},
		{Department: "Oncology", Doctors: 0, Patients: 1},
	}, ov.Departments)
}

func TestGet_PropagatesLoadError(t *testing.T) {
	svc := NewService(
		doctorStub{doc: &model.DoctorsDocument{}},
		patientStub{err: fmt.Errorf("patients: %w", errors.ErrNoData)},
	)

	_, err := svc.Get(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNoData))
}

func TestBuild_Empty(t *testing.T) {
	ov := Build(nil, nil)
	assert.Equal(t, 0, ov.Doctors.Total)
	assert.Equal(t, model.PatientMetrics{}, ov.Patients)
	assert.NotNil(t, ov.Departments)
	assert.Empty(t, ov.Departments)
}
