package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// PredictRiskRequest is the input DTO for risk and magnitude predictions.
// A zero Year means the current year.
type PredictRiskRequest struct {
	Organization string `json:"organization" validate:"required,max=256"`
	IncidentType string `json:"incidentType" validate:"required,max=64"`
	Year         int    `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2200"`
}

// YearOr returns the requested year or the year of now.
func (r PredictRiskRequest) YearOr(now time.Time) int {
	if r.Year == 0 {
		return now.Year()
	}
	return r.Year
}

// PredictionResponse is the output DTO for a risk prediction.
type PredictionResponse struct {
	PredictedAt      time.Time `json:"predictedAt"`
	Organization     string    `json:"organization"`
	IncidentType     string    `json:"incidentType"`
	Tier             string    `json:"tier"`
	Factors          []string  `json:"factors"`
	Recommendations  []string  `json:"recommendations"`
	RiskScore        float64   `json:"riskScore"`
	Confidence       float64   `json:"confidence"`
	PredictedRecords int64     `json:"predictedRecords"`
	Year             int       `json:"year"`
	HistoricalCount  int       `json:"historicalMatches"`
	ModelVersion     int       `json:"modelVersion"`
	ID               uuid.UUID `json:"id"`
}

// FromPrediction converts a domain PredictionResult to a response DTO.
func FromPrediction(p *model.PredictionResult) PredictionResponse {
	return PredictionResponse{
		ID:               p.ID(),
		PredictedAt:      p.PredictedAt(),
		Organization:     p.Organization(),
		IncidentType:     p.IncidentType(),
		Year:             p.Year(),
		Tier:             p.Tier().String(),
		RiskScore:        p.RiskScore(),
		Confidence:       p.Confidence(),
		PredictedRecords: p.PredictedRecords(),
		HistoricalCount:  p.HistoricalMatches(),
		Factors:          p.Factors(),
		Recommendations:  p.Recommendations(),
		ModelVersion:     p.ModelVersion(),
	}
}

// MagnitudeResponse is the output DTO for a magnitude-only prediction.
type MagnitudeResponse struct {
	PredictedRecords int64 `json:"predictedRecords"`
	ModelVersion     int   `json:"modelVersion"`
}
