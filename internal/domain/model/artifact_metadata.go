package model

import (
	"time"

	"github.com/google/uuid"
)

// FeatureSchema identifies the layout of the feature vector the model was
// trained on. Artifacts with any other schema cannot be served.
const FeatureSchema = "organization_code,incident_type_code,scaled_year,scaled_month/v1"

// ModelKind names a regression family.
type ModelKind string

const (
	ModelKindForest ModelKind = "forest"
	ModelKindMLP    ModelKind = "mlp"
)

// Valid reports whether k is a known kind.
func (k ModelKind) Valid() bool {
	return k == ModelKindForest || k == ModelKindMLP
}

// VocabularyInfo describes a trained encoder.
type VocabularyInfo struct {
	Size        int    `json:"size"`
	Fingerprint string `json:"fingerprint"`
}

// ArtifactMetadata describes one trained artifact set.
type ArtifactMetadata struct {
	TrainedAt     time.Time      `json:"trained_at"`
	Kind          ModelKind      `json:"kind"`
	Schema        string         `json:"schema"`
	Organizations VocabularyInfo `json:"organizations"`
	IncidentTypes VocabularyInfo `json:"incident_types"`
	Version       int            `json:"version"`
	RecordCount   int            `json:"record_count"`
	Synthetic     bool           `json:"synthetic"`
	ID            uuid.UUID      `json:"id"`
}
