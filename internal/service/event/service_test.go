package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository/memory"
)

func TestEmit_QueuesPendingEvent(t *testing.T) {
	repo := memory.NewOutboxRepository()
	svc := NewEventService(repo)

	err := svc.Emit(context.Background(), model.EventAppointmentBooked, map[string]string{"id": "APT0001"})
	require.NoError(t, err)

	pending, err := repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.EventAppointmentBooked, pending[0].EventType)
	assert.Equal(t, model.OutboxStatusPending, pending[0].Status)
	assert.JSONEq(t, `{"id":"APT0001"}`, string(pending[0].Payload))
}

func TestEmit_UnmarshalablePayload(t *testing.T) {
	svc := NewEventService(memory.NewOutboxRepository())

	err := svc.Emit(context.Background(), "BROKEN", func() {})
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}
