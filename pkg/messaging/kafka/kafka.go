package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jwalitptl/caredash-api/pkg/circuitbreaker"
	"github.com/jwalitptl/caredash-api/pkg/messaging"
)

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// messageWriter is the part of *kafka.Writer the broker uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroker publishes every channel to one topic, keyed by channel name.
type KafkaBroker struct {
	writer messageWriter
	topic  string
	cb     *circuitbreaker.CircuitBreaker
	logger *zerolog.Logger
}

func NewKafkaBroker(config Config, logger *zerolog.Logger) (*KafkaBroker, error) {
	brokers := make([]string, 0, len(config.Brokers))
	for _, b := range config.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("kafka topic not configured")
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 100 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           config.BatchTimeout,
		AllowAutoTopicCreation: true,
	}

	return newKafkaBroker(writer, config.Topic, logger), nil
}

func newKafkaBroker(writer messageWriter, topic string, logger *zerolog.Logger) *KafkaBroker {
	return &KafkaBroker{
		writer: writer,
		topic:  topic,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "kafka-broker",
			MaxRequests: 1,
			Interval:    10 * time.Second,
			Timeout:     5 * time.Second,
		}),
		logger: logger,
	}
}

func (b *KafkaBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	value, err := messaging.Encode(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = b.cb.Execute(func() error {
		return b.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(channel),
			Value: value,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", b.topic, err)
	}

	if b.logger != nil {
		b.logger.Debug().Str("topic", b.topic).Str("key", channel).Msg("message published")
	}
	return nil
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}
