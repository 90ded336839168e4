package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/email"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository/file"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
	"github.com/jwalitptl/caredash-api/pkg/validator"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (e *recordingEmitter) Emit(_ context.Context, eventType string, _ interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType)
	return e.err
}

type recordingMailer struct {
	email.NopService
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) SendBookingConfirmation(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, a.ID)
	return m.err
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *model.Appointment) error {
	return errors.New("disk full")
}

func (failingRepo) List(context.Context) ([]model.Appointment, error) {
	return nil, errors.New("disk full")
}

func validRequest() *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		PatientName:     "Jane Roe",
		PatientPhone:    "555-0100",
		SelectedDoctor:  "Dr. Sarah Johnson",
		AppointmentDate: "2026-04-01",
		AppointmentTime: "10:30",
	}
}

func newTestService(t *testing.T) (*Service, *recordingEmitter, *recordingMailer) {
	t.Helper()
	store := file.NewStore(t.TempDir())

	events := &recordingEmitter{}
	mailer := &recordingMailer{}
	svc := NewService(file.NewAppointmentRepository(store), validator.New(), events, mailer, metrics.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 15, 30, 123000000, time.FixedZone("X", 3600)) }
	return svc, events, mailer
}

func TestBook_AssignsIDStatusAndTimestamp(t *testing.T) {
	svc, events, mailer := newTestService(t)

	apt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "APT0001", apt.ID)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	assert.Equal(t, "2026-03-10T07:15:30.123Z", apt.CreatedAt)
	assert.Equal(t, []string{model.EventAppointmentBooked}, events.events)
	assert.Equal(t, []string{"APT0001"}, mailer.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.AppointmentsBooked))

	second, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, "APT0002", second.ID)
}

func TestBook_ValidationErrors(t *testing.T) {
	svc, events, _ := newTestService(t)

	req := validRequest()
	req.PatientName = ""
	req.AppointmentDate = "04/01/2026"

	_, err := svc.Book(context.Background(), req)
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"patientName", "appointmentDate"}, fields)
	assert.Empty(t, events.events)
}

func TestBook_SideEffectFailuresDoNotFailBooking(t *testing.T) {
	svc, events, mailer := newTestService(t)
	events.err = errors.New("outbox down")
	mailer.err = errors.New("smtp down")

	apt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, "APT0001", apt.ID)
}

func TestBook_PersistenceFailure(t *testing.T) {
	svc := NewService(failingRepo{}, validator.New(), nil, nil, metrics.NewNop())

	_, err := svc.Book(context.Background(), validRequest())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0.0, testutil.ToFloat64(svc.metrics.AppointmentsBooked))
}

func TestList_SearchAndFilter(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, doctor := range []string{"Dr. Sarah Johnson", "Dr. Michael Brown", "Dr. Sarah Johnson"} {
		req := validRequest()
		req.SelectedDoctor = doctor
		_, err := svc.Book(ctx, req)
		require.NoError(t, err)
	}
	svc.Wait()

	page, err := svc.List(ctx, listquery.Query{Search: "michael"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "APT0002", page.Items[0].ID)

	page, err = svc.List(ctx, listquery.Query{Selections: map[string]string{"selectedDoctor": "Dr. Sarah Johnson"}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestList_Error(t *testing.T) {
	svc := NewService(failingRepo{}, validator.New(), nil, nil, metrics.NewNop())
	_, err := svc.List(context.Background(), listquery.Query{})
	assert.Error(t, err)
}
