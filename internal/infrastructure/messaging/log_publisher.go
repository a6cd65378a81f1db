package messaging

import (
	"context"
	"log/slog"

	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/pkg/events"
)

var _ port.EventPublisher = (*LogPublisher)(nil)

// LogPublisher implements port.EventPublisher by logging each event. It is
// used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish seals each event and logs its envelope metadata.
func (p *LogPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	for _, evt := range evts {
		env, err := events.Seal(evt)
		if err != nil {
			return err
		}
		p.logger.InfoContext(ctx, "domain event",
			"event_id", env.ID,
			"event_type", env.Type,
			"aggregate_id", env.AggregateID,
			"payload_size", len(env.Payload),
		)
	}
	return nil
}
