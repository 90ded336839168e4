package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/pkg/errors"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestDoctorRepository_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DoctorsFile, `{
		"doctors": [{"id": "D1", "name": "Dr. A", "department": "Cardiology", "rating": 4.5, "successRate": 92.5}],
		"summary": {"totalDoctors": 1, "averageRating": 4.5}
	}`)

	doc, err := NewDoctorRepository(NewStore(dir)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Doctors, 1)
	assert.Equal(t, "Dr. A", doc.Doctors[0].Name)
	assert.Equal(t, 92.5, doc.Doctors[0].SuccessRate)
	assert.Equal(t, 1, doc.Summary.TotalDoctors)
}

func TestDoctorRepository_MissingFileIsNoData(t *testing.T) {
	_, err := NewDoctorRepository(NewStore(t.TempDir())).Load(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNoData))
}

func TestDoctorRepository_MalformedFileIsNotNoData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DoctorsFile, `{"doctors": [`)

	_, err := NewDoctorRepository(NewStore(dir)).Load(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, errors.ErrNoData))
}

func TestPatientRepository_LoadAndRaw(t *testing.T) {
	dir := t.TempDir()
	body := `{"patients":[{"id":"P001","age":54,"gender":"Male","diagnosis":"Stroke","lengthOfStay":12,"readmission":false,"vitalSigns":{"heartRate":72,"bloodPressure":120,"temperature":98.6,"oxygenSaturation":97}}]}`
	writeFile(t, dir, PatientsFile, body)
	repo := NewPatientRepository(NewStore(dir))

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Patients, 1)
	assert.Equal(t, 12, doc.Patients[0].LengthOfStay)
	assert.Equal(t, 72.0, doc.Patients[0].VitalSigns.HeartRate)

	raw, err := repo.LoadRaw(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
}

func TestPatientInfoRepository_LoadTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, PatientInfoFile, `{"patient":{"name":"Sarah Johnson"}}`)

	tmpl, err := NewPatientInfoRepository(NewStore(dir)).LoadTemplate(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tmpl, "patient")

	_, err = NewPatientInfoRepository(NewStore(t.TempDir())).LoadTemplate(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNoData))
}

func TestAppointmentRepository_AssignsSequentialIDs(t *testing.T) {
	dir := t.TempDir()
	repo := NewAppointmentRepository(NewStore(dir))
	ctx := context.Background()

	first := &model.Appointment{PatientName: "Ann", Status: model.AppointmentStatusConfirmed}
	second := &model.Appointment{PatientName: "Bob", Status: model.AppointmentStatusConfirmed}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, "APT0001", first.ID)
	assert.Equal(t, "APT0002", second.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ann", list[0].PatientName)

	reopened, err := NewAppointmentRepository(NewStore(dir)).List(ctx)
	require.NoError(t, err)
	assert.Len(t, reopened, 2)
}

func TestAppointmentRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repo := NewAppointmentRepository(NewStore(t.TempDir()))
	ctx := context.Background()

	const n = 20
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := &model.Appointment{PatientName: fmt.Sprintf("p%d", i)}
			if assert.NoError(t, repo.Create(ctx, a)) {
				ids[i] = a.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestAppointmentRepository_EmptyListWhenMissing(t *testing.T) {
	list, err := NewAppointmentRepository(NewStore(t.TempDir())).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStore_Ping(t *testing.T) {
	assert.NoError(t, NewStore(t.TempDir()).Ping(context.Background()))
	assert.Error(t, NewStore(filepath.Join(t.TempDir(), "missing")).Ping(context.Background()))
}
