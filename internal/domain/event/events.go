package event

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/bibbank/breachrisk/pkg/events"
)

const (
	// EventTypeRiskPredicted is emitted for every completed risk prediction.
	EventTypeRiskPredicted = "risk.prediction.completed"

	// EventTypeHighRiskPredicted is emitted when a prediction lands in the high tier.
	EventTypeHighRiskPredicted = "risk.high_risk.predicted"

	// EventTypeModelRetrained is emitted after a new artifact set is published.
	EventTypeModelRetrained = "risk.model.retrained"
)

// RiskPredicted is published when a risk prediction has been served.
type RiskPredicted struct {
	events.Base
	Organization     string    `json:"organization"`
	IncidentType     string    `json:"incident_type"`
	Tier             string    `json:"tier"`
	RiskScore        float64   `json:"risk_score"`
	Confidence       float64   `json:"confidence"`
	PredictedRecords int64     `json:"predicted_records"`
	Year             int       `json:"year"`
	ModelVersion     int       `json:"model_version"`
	PredictionID     uuid.UUID `json:"prediction_id"`
}

// NewRiskPredicted creates a RiskPredicted keyed by prediction ID.
func NewRiskPredicted(predictionID uuid.UUID, organization, incidentType, tier string, year int, score, confidence float64, records int64, modelVersion int) RiskPredicted {
	return RiskPredicted{
		Base:             events.NewBase(EventTypeRiskPredicted, predictionID.String()),
		PredictionID:     predictionID,
		Organization:     organization,
		IncidentType:     incidentType,
		Tier:             tier,
		Year:             year,
		RiskScore:        score,
		Confidence:       confidence,
		PredictedRecords: records,
		ModelVersion:     modelVersion,
	}
}

// HighRiskPredicted is published alongside RiskPredicted for high-tier
// predictions so alerting consumers need not filter.
type HighRiskPredicted struct {
	events.Base
	Organization    string    `json:"organization"`
	IncidentType    string    `json:"incident_type"`
	Recommendations []string  `json:"recommendations"`
	RiskScore       float64   `json:"risk_score"`
	PredictionID    uuid.UUID `json:"prediction_id"`
}

// NewHighRiskPredicted creates a HighRiskPredicted keyed by prediction ID.
func NewHighRiskPredicted(predictionID uuid.UUID, organization, incidentType string, score float64, recommendations []string) HighRiskPredicted {
	return HighRiskPredicted{
		Base:            events.NewBase(EventTypeHighRiskPredicted, predictionID.String()),
		PredictionID:    predictionID,
		Organization:    organization,
		IncidentType:    incidentType,
		RiskScore:       score,
		Recommendations: recommendations,
	}
}

// ModelRetrained is published when training publishes a new artifact set.
type ModelRetrained struct {
	events.Base
	Kind        string    `json:"kind"`
	Version     int       `json:"version"`
	RecordCount int       `json:"record_count"`
	Synthetic   bool      `json:"synthetic"`
	ArtifactID  uuid.UUID `json:"artifact_id"`
}

// NewModelRetrained creates a ModelRetrained keyed by artifact version.
func NewModelRetrained(artifactID uuid.UUID, version int, kind string, recordCount int, synthetic bool) ModelRetrained {
	return ModelRetrained{
		Base:        events.NewBase(EventTypeModelRetrained, "model-v"+strconv.Itoa(version)),
		ArtifactID:  artifactID,
		Version:     version,
		Kind:        kind,
		RecordCount: recordCount,
		Synthetic:   synthetic,
	}
}
