package file

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/pkg/errors"
)

// appointmentRepository keeps bookings in one JSON array file. The mutex
// serialises read-modify-write so concurrent bookings never share an id.
type appointmentRepository struct {
	store *Store
	mu    sync.Mutex
}

func NewAppointmentRepository(store *Store) repository.AppointmentRepository {
	return &appointmentRepository{store: store}
}

func (r *appointmentRepository) load() ([]model.Appointment, error) {
	var list []model.Appointment
	if err := r.store.readJSON(AppointmentsFile, &list); err != nil {
		if errors.Is(err, errors.ErrNoData) {
			return []model.Appointment{}, nil
		}
		return nil, err
	}
	if list == nil {
		list = []model.Appointment{}
	}
	return list, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("appointment cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	list, err := r.load()
	if err != nil {
		return err
	}

	appointment.ID = fmt.Sprintf(model.AppointmentIDFormat, len(list)+1)
	list = append(list, *appointment)

	if err := r.store.writeJSON(AppointmentsFile, list); err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(_ context.Context) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}
