package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/pkg/events"
	pkgkafka "github.com/bibbank/breachrisk/pkg/kafka"
)

var _ port.EventPublisher = (*EventPublisher)(nil)

// Producer is the subset of *pkgkafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// BreakerConfig tunes the circuit breaker in front of the producer.
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig opens after five failures for thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, OpenTimeout: 30 * time.Second}
}

// EventPublisher implements the EventPublisher port using Kafka. While the
// broker is failing, the breaker rejects publishes immediately instead of
// letting every request wait on the network.
type EventPublisher struct {
	producer Producer
	breaker  *gobreaker.CircuitBreaker[struct{}]
	logger   *slog.Logger
	topic    string
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(producer Producer, topic string, cfg BreakerConfig, logger *slog.Logger) *EventPublisher {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "kafka:" + topic,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("event publisher circuit changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &EventPublisher{
		producer: producer,
		breaker:  breaker,
		logger:   logger,
		topic:    topic,
	}
}

// Publish sends domain events to Kafka, keyed by aggregate so events for
// one prediction or model version stay ordered.
func (p *EventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		env, err := events.Seal(evt)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to marshal envelope %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing event to Kafka",
			slog.String("topic", p.topic),
			slog.String("event_type", evt.EventType()),
			slog.Int("payload_size", len(payload)),
		)
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   env.ID,
			},
		})
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.producer.Publish(ctx, p.topic, messages...)
	})
	if err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// State reports the breaker state, for readiness output.
func (p *EventPublisher) State() string {
	return p.breaker.State().String()
}
