package service

import (
	"math"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

// absoluteScale is the predicted magnitude that maps to a full score when
// no matching history exists.
const absoluteScale = 1_000_000

// Calibration is a bounded risk score derived from a raw magnitude.
type Calibration struct {
	RiskScore  float64
	Confidence float64
	Matches    int
}

// Calibrator turns predicted magnitudes into risk scores using history.
type Calibrator struct{}

// NewCalibrator creates a new Calibrator instance.
func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

// Calibrate scores predictedRecords against the history matching
// organization and incidentType. A prediction equal to the historical mean
// scores 50; without history one million records scores 100.
func (c *Calibrator) Calibrate(
	predictedRecords float64,
	organization string,
	incidentType valueobject.IncidentType,
	history []model.IncidentRecord,
) Calibration {
	if math.IsNaN(predictedRecords) || predictedRecords < 0 {
		predictedRecords = 0
	}

	var (
		matches int
		sum     float64
	)
	for _, r := range history {
		if r.MatchesQuery(organization, incidentType) {
			matches++
			sum += float64(r.RecordsExposed())
		}
	}

	var score float64
	if matches > 0 {
		score = predictedRecords / (sum / float64(matches)) * 50
	} else {
		score = predictedRecords / absoluteScale * 100
	}

	return Calibration{
		RiskScore:  math.Min(100, score),
		Confidence: ConfidenceFor(matches),
		Matches:    matches,
	}
}

// ConfidenceFor grows by 0.1 per matching record from 0.5, capped at 0.95.
func ConfidenceFor(matches int) float64 {
	if matches < 0 {
		matches = 0
	}
	return math.Min(model.MaxConfidence, 0.5+0.1*float64(matches))
}
