package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// Base carries the metadata shared by every event. Embed it in concrete
// event structs; its fields serialise alongside the payload.
type Base struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	Aggregate string    `json:"aggregate_id"`
	At        time.Time `json:"occurred_at"`
}

// NewBase creates event metadata with a generated ID and the current time.
func NewBase(eventType, aggregateID string) Base {
	return Base{
		ID:        uuid.New(),
		Type:      eventType,
		Aggregate: aggregateID,
		At:        time.Now().UTC(),
	}
}

func (b Base) EventID() uuid.UUID    { return b.ID }
func (b Base) EventType() string     { return b.Type }
func (b Base) AggregateID() string   { return b.Aggregate }
func (b Base) OccurredAt() time.Time { return b.At }
