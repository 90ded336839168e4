package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaBroker_PublishKeysByChannel(t *testing.T) {
	w := &fakeWriter{}
	b := newKafkaBroker(w, "caredash.events", nil)

	err := b.Publish(context.Background(), "APPOINTMENT_BOOKED", json.RawMessage(`{"id":"APT0001"}`))
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "APPOINTMENT_BOOKED", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"id":"APT0001"}`, string(w.msgs[0].Value))
}

func TestKafkaBroker_PublishEncodesStructs(t *testing.T) {
	w := &fakeWriter{}
	b := newKafkaBroker(w, "t", nil)

	require.NoError(t, b.Publish(context.Background(), "k", map[string]int{"n": 1}))
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
}

func TestKafkaBroker_PublishWrapsWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	b := newKafkaBroker(w, "t", nil)

	err := b.Publish(context.Background(), "k", []byte("x"))
	assert.ErrorContains(t, err, "leader not available")
}

func TestNewKafkaBroker_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaBroker(Config{Brokers: []string{" "}, Topic: "t"}, nil)
	assert.Error(t, err)

	_, err = NewKafkaBroker(Config{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)
}
