package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/caredash-api/internal/model"
)

// All repository interfaces in one file. Loaders return errors.ErrNoData
// (wrapped) when the backing data source does not exist.
type (
	DoctorRepository interface {
		Load(ctx context.Context) (*model.DoctorsDocument, error)
	}

	PatientRepository interface {
		Load(ctx context.Context) (*model.PatientsDocument, error)
		// LoadRaw returns the source document exactly as stored.
		LoadRaw(ctx context.Context) (json.RawMessage, error)
	}

	PatientInfoRepository interface {
		LoadTemplate(ctx context.Context) (model.JSONMap, error)
	}

	AppointmentRepository interface {
		// Create assigns the next booking id to appointment and persists it.
		Create(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context) ([]model.Appointment, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)
