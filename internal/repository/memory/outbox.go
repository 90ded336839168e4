package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
)

// outboxRepository is an in-process outbox for the file storage driver,
// where the API relays its own events.
type outboxRepository struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
	now    func() time.Time
}

func NewOutboxRepository() repository.OutboxRepository {
	return &outboxRepository{now: time.Now}
}

func (r *outboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = now
	event.UpdatedAt = now

	stored := *event
	r.events = append(r.events, &stored)
	return nil
}

func (r *outboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.OutboxEvent
	for _, e := range r.events {
		if limit > 0 && len(out) >= limit {
			break
		}
		if e.Status == model.OutboxStatusPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *outboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.ID != id {
			continue
		}
		now := r.now()
		e.Status = status
		e.ErrorMessage = errMsg
		e.UpdatedAt = now
		if status == model.OutboxStatusProcessed {
			e.ProcessedAt = &now
		}
		if status == model.OutboxStatusFailed {
			e.RetryCount++
		}
		return nil
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (r *outboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var deleted int64
	for _, e := range r.events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return deleted, nil
}
