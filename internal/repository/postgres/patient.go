package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/errors"
)

type PatientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) *PatientRepository {
	return &PatientRepository{base}
}

func (r *PatientRepository) Load(ctx context.Context) (*model.PatientsDocument, error) {
	var rows []jsonRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, data FROM patients ORDER BY position`); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("patients: %w", errors.ErrNoData)
	}

	doc := &model.PatientsDocument{Patients: make([]model.BackendPatient, 0, len(rows))}
	for _, row := range rows {
		var p model.BackendPatient
		if err := json.Unmarshal(row.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode patient %s: %w", row.ID, err)
		}
		doc.Patients = append(doc.Patients, p)
	}
	return doc, nil
}

// LoadRaw rebuilds the source document from the stored rows.
func (r *PatientRepository) LoadRaw(ctx context.Context) (json.RawMessage, error) {
	var rows []jsonRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, data FROM patients ORDER BY position`); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("patients: %w", errors.ErrNoData)
	}

	items := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		items[i] = row.Data
	}
	return json.Marshal(struct {
		Patients []json.RawMessage `json:"patients"`
	}{items})
}

func (r *PatientRepository) Replace(ctx context.Context, doc *model.PatientsDocument) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM patients`); err != nil {
			return fmt.Errorf("failed to clear patients: %w", err)
		}
		for _, p := range doc.Patients {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode patient %s: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO patients (id, data) VALUES ($1, $2)`, p.ID, data); err != nil {
				return fmt.Errorf("failed to insert patient %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
