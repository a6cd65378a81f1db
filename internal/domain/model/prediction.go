package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

// Factors lists the inputs every prediction is based on.
var Factors = []string{
	"historical_trends",
	"organization_size",
	"breach_type_frequency",
	"year_trend",
}

// MaxConfidence caps every confidence value.
const MaxConfidence = 0.95

// PredictionResult is the outcome of one risk prediction. It is never
// mutated after construction.
type PredictionResult struct {
	predictedAt      time.Time
	organization     string
	incidentType     string
	tier             valueobject.RiskTier
	recommendations  []string
	riskScore        float64
	confidence       float64
	predictedRecords int64
	matches          int
	year             int
	modelVersion     int
	id               uuid.UUID
}

// PredictionInput carries the values a PredictionResult is built from.
type PredictionInput struct {
	Organization     string
	IncidentType     string
	Year             int
	RiskScore        float64
	Confidence       float64
	PredictedRecords int64
	Matches          int
	Recommendations  []string
	ModelVersion     int
}

// NewPredictionResult validates bounds and creates a PredictionResult.
func NewPredictionResult(in PredictionInput) (*PredictionResult, error) {
	if in.RiskScore < 0 || in.RiskScore > 100 {
		return nil, fmt.Errorf("risk score must be between 0 and 100, got %v", in.RiskScore)
	}
	if in.Confidence < 0 || in.Confidence > MaxConfidence {
		return nil, fmt.Errorf("confidence must be between 0 and %v, got %v", MaxConfidence, in.Confidence)
	}
	if in.PredictedRecords < 0 {
		return nil, fmt.Errorf("predicted records must be non-negative, got %d", in.PredictedRecords)
	}

	return &PredictionResult{
		id:               uuid.New(),
		predictedAt:      time.Now().UTC(),
		organization:     in.Organization,
		incidentType:     in.IncidentType,
		year:             in.Year,
		riskScore:        in.RiskScore,
		confidence:       in.Confidence,
		predictedRecords: in.PredictedRecords,
		matches:          in.Matches,
		tier:             valueobject.RiskTierFromScore(in.RiskScore),
		recommendations:  slices.Clone(in.Recommendations),
		modelVersion:     in.ModelVersion,
	}, nil
}

func (p *PredictionResult) ID() uuid.UUID              { return p.id }
func (p *PredictionResult) PredictedAt() time.Time     { return p.predictedAt }
func (p *PredictionResult) Organization() string       { return p.organization }
func (p *PredictionResult) IncidentType() string       { return p.incidentType }
func (p *PredictionResult) Year() int                  { return p.year }
func (p *PredictionResult) RiskScore() float64         { return p.riskScore }
func (p *PredictionResult) Confidence() float64        { return p.confidence }
func (p *PredictionResult) PredictedRecords() int64    { return p.predictedRecords }
func (p *PredictionResult) Tier() valueobject.RiskTier { return p.tier }
func (p *PredictionResult) HistoricalMatches() int     { return p.matches }
func (p *PredictionResult) ModelVersion() int          { return p.modelVersion }
func (p *PredictionResult) Factors() []string          { return slices.Clone(Factors) }
func (p *PredictionResult) Recommendations() []string  { return slices.Clone(p.recommendations) }
