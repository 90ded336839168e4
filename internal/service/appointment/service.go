package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/internal/email"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/internal/service/event"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
	"github.com/jwalitptl/caredash-api/pkg/validator"
)

// notifyTimeout bounds the detached confirmation email.
const notifyTimeout = 30 * time.Second

var Schema = listquery.Schema[model.Appointment]{
	Searchable: []listquery.Field[model.Appointment]{
		func(a model.Appointment) string { return a.PatientName },
		func(a model.Appointment) string { return a.SelectedDoctor },
	},
	Filters: map[string]listquery.Field[model.Appointment]{
		"status":         func(a model.Appointment) string { return string(a.Status) },
		"selectedDoctor": func(a model.Appointment) string { return a.SelectedDoctor },
	},
}

type AppointmentService interface {
	Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error)
	List(ctx context.Context, q listquery.Query) (listquery.Page[model.Appointment], error)
}

type Service struct {
	repo      repository.AppointmentRepository
	validator validator.Validator
	events    event.Emitter
	mailer    email.Service
	metrics   *metrics.Metrics
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewService(repo repository.AppointmentRepository, v validator.Validator, events event.Emitter, mailer email.Service, m *metrics.Metrics) *Service {
	if events == nil {
		events = event.NopEmitter{}
	}
	if mailer == nil {
		mailer = email.NopService{}
	}
	return &Service{
		repo:      repo,
		validator: v,
		events:    events,
		mailer:    mailer,
		metrics:   m,
		now:       time.Now,
	}
}

// Book validates and persists a booking. The returned error is a
// *validator.ValidationError for bad input; side effects never fail a booking
// that has been stored.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		PatientName:     req.PatientName,
		PatientPhone:    req.PatientPhone,
		SelectedDoctor:  req.SelectedDoctor,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Notes:           req.Notes,
		DocumentName:    req.DocumentName,
		DocumentSize:    req.DocumentSize,
		BookingDate:     req.BookingDate,
		Status:          model.AppointmentStatusConfirmed,
		CreatedAt:       s.now().UTC().Format(model.CreatedAtLayout),
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	s.metrics.AppointmentsBooked.Inc()

	log.Info().
		Str("appointment_id", apt.ID).
		Str("doctor", apt.SelectedDoctor).
		Str("date", apt.AppointmentDate).
		Msg("appointment booked")

	s.afterBooking(ctx, apt)
	return apt, nil
}

func (s *Service) afterBooking(ctx context.Context, apt *model.Appointment) {
	if err := s.events.Emit(ctx, model.EventAppointmentBooked, apt); err != nil {
		log.Error().Err(err).Str("appointment_id", apt.ID).Msg("failed to queue booking event")
	}

	booked := *apt
	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		if err := s.mailer.SendBookingConfirmation(ctx, &booked); err != nil {
			log.Warn().Err(err).Str("appointment_id", booked.ID).Msg("failed to send booking confirmation")
		}
	}()
}

// Wait blocks until in-flight confirmation emails finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) List(ctx context.Context, q listquery.Query) (listquery.Page[model.Appointment], error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return listquery.Page[model.Appointment]{}, fmt.Errorf("failed to list appointments: %w", err)
	}
	page := Schema.Run(list, q)
	s.metrics.ListResults.WithLabelValues("appointments").Observe(float64(page.TotalCount))
	return page, nil
}
