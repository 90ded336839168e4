package file

import (
	"context"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
)

type doctorRepository struct {
	store *Store
}

func NewDoctorRepository(store *Store) repository.DoctorRepository {
	return &doctorRepository{store: store}
}

func (r *doctorRepository) Load(_ context.Context) (*model.DoctorsDocument, error) {
	var doc model.DoctorsDocument
	if err := r.store.readJSON(DoctorsFile, &doc); err != nil {
		return nil, err
	}
	if doc.Doctors == nil {
		doc.Doctors = []model.Doctor{}
	}
	return &doc, nil
}
