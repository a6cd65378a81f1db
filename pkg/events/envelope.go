package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Envelope is the wire form of a domain event on the message bus.
type Envelope struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Seal marshals evt into an Envelope.
func Seal(evt DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s: %w", evt.EventType(), err)
	}
	return Envelope{
		ID:          evt.EventID().String(),
		Type:        evt.EventType(),
		AggregateID: evt.AggregateID(),
		OccurredAt:  evt.OccurredAt(),
		Payload:     payload,
	}, nil
}
