package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// TrainResponse is returned after a training run publishes new artifacts.
type TrainResponse struct {
	Message     string `json:"message"`
	Kind        string `json:"kind"`
	Version     int    `json:"version"`
	RecordCount int    `json:"recordCount"`
	Synthetic   bool   `json:"synthetic"`
}

// ModelInfoResponse describes the artifacts serving predictions.
type ModelInfoResponse struct {
	TrainedAt             time.Time `json:"trainedAt"`
	Kind                  string    `json:"kind"`
	Schema                string    `json:"schema"`
	Version               int       `json:"version"`
	RecordCount           int       `json:"recordCount"`
	OrganizationVocab     int       `json:"organizationVocabulary"`
	IncidentTypeVocab     int       `json:"incidentTypeVocabulary"`
	OrganizationVocabLive int       `json:"organizationVocabularyLive"`
	IncidentTypeVocabLive int       `json:"incidentTypeVocabularyLive"`
	Synthetic             bool      `json:"synthetic"`
	ID                    uuid.UUID `json:"id"`
}

// FromMetadata builds a TrainResponse from artifact metadata.
func FromMetadata(md model.ArtifactMetadata) TrainResponse {
	return TrainResponse{
		Message:     "model trained",
		Kind:        string(md.Kind),
		Version:     md.Version,
		RecordCount: md.RecordCount,
		Synthetic:   md.Synthetic,
	}
}
