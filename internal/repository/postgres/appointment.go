package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/caredash-api/internal/model"
)

type AppointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) *AppointmentRepository {
	return &AppointmentRepository{base}
}

// Create numbers bookings by row count under a table lock so concurrent
// inserts cannot reuse an id.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("appointment cannot be nil")
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE appointments IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock appointments: %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments`); err != nil {
			return fmt.Errorf("failed to count appointments: %w", err)
		}
		appointment.ID = fmt.Sprintf(model.AppointmentIDFormat, count+1)

		query := `
			INSERT INTO appointments (
				id, patient_name, patient_phone, selected_doctor,
				appointment_date, appointment_time, notes,
				document_name, document_size, booking_date,
				status, created_at
			) VALUES (
				:id, :patient_name, :patient_phone, :selected_doctor,
				:appointment_date, :appointment_time, :notes,
				:document_name, :document_size, :booking_date,
				:status, :created_at
			)
		`
		if _, err := tx.NamedExecContext(ctx, query, appointment); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	query := `
		SELECT id, patient_name, patient_phone, selected_doctor,
			   appointment_date, appointment_time, notes,
			   document_name, document_size, booking_date,
			   status, created_at
		FROM appointments
		ORDER BY seq
	`
	list := []model.Appointment{}
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}
