package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Broker defines the interface for message brokers
type Broker interface {
	// Publish sends a message on channel. []byte and json.RawMessage are sent
	// as-is; anything else is JSON encoded.
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Subscriber is implemented by brokers that can deliver messages back.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode turns a publish argument into wire bytes.
func Encode(message interface{}) ([]byte, error) {
	switch m := message.(type) {
	case []byte:
		return m, nil
	case json.RawMessage:
		return m, nil
	default:
		return json.Marshal(m)
	}
}

// NopBroker logs and drops every message. Used when messaging.driver is "none".
type NopBroker struct{}

func NewNopBroker() Broker {
	return NopBroker{}
}

func (NopBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	log.Debug().Str("channel", channel).Msg("messaging disabled, dropping message")
	return nil
}

func (NopBroker) Close() error {
	return nil
}
