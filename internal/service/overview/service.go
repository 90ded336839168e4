package overview

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/service/doctor"
	"github.com/jwalitptl/caredash-api/internal/service/patient"
)

type DoctorSource interface {
	Snapshot(ctx context.Context) (*model.DoctorsDocument, error)
}

type PatientSource interface {
	Snapshot(ctx context.Context) (*patient.Dataset, error)
}

type Service struct {
	doctors  DoctorSource
	patients PatientSource
}

func NewService(doctors DoctorSource, patients PatientSource) *Service {
	return &Service{doctors: doctors, patients: patients}
}

// Get loads both snapshots concurrently. The first load error cancels the
// other and is returned as is.
func (s *Service) Get(ctx context.Context) (*model.Overview, error) {
	var (
		docs *model.DoctorsDocument
		ds   *patient.Dataset
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.doctors.Snapshot(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ds, err = s.patients.Snapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Build(docs.Doctors, ds.Patients), nil
}

func Build(doctors []model.Doctor, patients []model.Patient) *model.Overview {
	return &model.Overview{
		Doctors: model.DoctorOverview{
			Total: len(doctors),
			Stats: doctor.CalculateStats(doctors),
		},
		Patients:    patient.Metrics(patients),
		Departments: departmentLoad(doctors, patients),
	}
}

// departmentLoad lists doctor departments in first-seen order followed by
// departments that only appear among patients.
func departmentLoad(doctors []model.Doctor, patients []model.Patient) []model.DepartmentLoad {
	index := make(map[string]int)
	out := make([]model.DepartmentLoad, 0)

	slot := func(name string) *model.DepartmentLoad {
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, model.DepartmentLoad{Department: name})
		}
		return &out[i]
	}

	for _, d := range doctors {
		slot(d.Department).Doctors++
	}
	for _, p := range patients {
		slot(p.Department).Patients++
	}
	return out
}
