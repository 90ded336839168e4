package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/errors"
)

type jsonRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

type DoctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) *DoctorRepository {
	return &DoctorRepository{base}
}

func (r *DoctorRepository) Load(ctx context.Context) (*model.DoctorsDocument, error) {
	var rows []jsonRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, data FROM doctors ORDER BY position`); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	var summary []byte
	err := r.db.GetContext(ctx, &summary, `SELECT data FROM doctor_summary WHERE id = 1`)
	if err == sql.ErrNoRows && len(rows) == 0 {
		return nil, fmt.Errorf("doctors: %w", errors.ErrNoData)
	}
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get doctor summary: %w", err)
	}

	doc := &model.DoctorsDocument{Doctors: make([]model.Doctor, 0, len(rows))}
	for _, row := range rows {
		var d model.Doctor
		if err := json.Unmarshal(row.Data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode doctor %s: %w", row.ID, err)
		}
		doc.Doctors = append(doc.Doctors, d)
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &doc.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode doctor summary: %w", err)
		}
	}
	return doc, nil
}

// Replace swaps the whole roster and summary for doc in one transaction.
func (r *DoctorRepository) Replace(ctx context.Context, doc *model.DoctorsDocument) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM doctors`); err != nil {
			return fmt.Errorf("failed to clear doctors: %w", err)
		}
		for _, d := range doc.Doctors {
			data, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("failed to encode doctor %s: %w", d.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO doctors (id, data) VALUES ($1, $2)`, d.ID, data); err != nil {
				return fmt.Errorf("failed to insert doctor %s: %w", d.ID, err)
			}
		}

		summary, err := json.Marshal(doc.Summary)
		if err != nil {
			return fmt.Errorf("failed to encode doctor summary: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO doctor_summary (id, data) VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
		`, summary)
		if err != nil {
			return fmt.Errorf("failed to save doctor summary: %w", err)
		}
		return nil
	})
}
