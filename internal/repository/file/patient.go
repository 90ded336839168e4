package file

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
)

type patientRepository struct {
	store *Store
}

func NewPatientRepository(store *Store) repository.PatientRepository {
	return &patientRepository{store: store}
}

func (r *patientRepository) Load(_ context.Context) (*model.PatientsDocument, error) {
	var doc model.PatientsDocument
	if err := r.store.readJSON(PatientsFile, &doc); err != nil {
		return nil, err
	}
	if doc.Patients == nil {
		doc.Patients = []model.BackendPatient{}
	}
	return &doc, nil
}

func (r *patientRepository) LoadRaw(_ context.Context) (json.RawMessage, error) {
	data, err := r.store.readRaw(PatientsFile)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to decode %s: invalid JSON", PatientsFile)
	}
	return data, nil
}

type patientInfoRepository struct {
	store *Store
}

func NewPatientInfoRepository(store *Store) repository.PatientInfoRepository {
	return &patientInfoRepository{store: store}
}

func (r *patientInfoRepository) LoadTemplate(_ context.Context) (model.JSONMap, error) {
	tmpl := model.JSONMap{}
	if err := r.store.readJSON(PatientInfoFile, &tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}
