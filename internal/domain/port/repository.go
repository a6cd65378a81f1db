package port

import (
	"context"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	"github.com/bibbank/breachrisk/pkg/events"
)

// RecordStore defines the persistence port for incident records.
type RecordStore interface {
	// FetchAll returns every stored record.
	FetchAll(ctx context.Context) ([]model.IncidentRecord, error)

	// FetchMatching returns records whose organization contains
	// organization, ignoring case, with the given type.
	FetchMatching(ctx context.Context, organization string, incidentType valueobject.IncidentType) ([]model.IncidentRecord, error)

	// Save stores records and returns how many were written.
	Save(ctx context.Context, records ...model.IncidentRecord) (int, error)
}

// ArtifactStore persists trained artifact sets.
type ArtifactStore interface {
	// Load returns the current artifacts or model.ErrArtifactsNotFound.
	Load(ctx context.Context) (*service.FittedArtifacts, error)

	// Save stores artifacts and makes them current.
	Save(ctx context.Context, artifacts *service.FittedArtifacts) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
