package service

import (
	"log/slog"
	"math"
	"strings"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

// PredictionMonth is assumed for every query, which carries only a year.
const PredictionMonth = 6

// Query is one prediction request after transport validation.
type Query struct {
	Organization string
	// IncidentType is the caller's raw text. Known names are canonicalised;
	// anything else is encoded as given.
	IncidentType string
	Year         int
}

// VocabularyGrowthFunc is told which encoder admitted a new value.
type VocabularyGrowthFunc func(encoder string)

// Predictor runs encode, scale, infer, calibrate and recommend against one
// artifact snapshot.
type Predictor struct {
	calibrator  *Calibrator
	recommender *Recommender
	logger      *slog.Logger
	onGrowth    VocabularyGrowthFunc
}

// NewPredictor creates a Predictor. onGrowth may be nil.
func NewPredictor(logger *slog.Logger, onGrowth VocabularyGrowthFunc) *Predictor {
	return &Predictor{
		calibrator:  NewCalibrator(),
		recommender: NewRecommender(),
		logger:      logger,
		onGrowth:    onGrowth,
	}
}

func (p *Predictor) encode(enc *CategoryEncoder, name, value string) float64 {
	code, added := enc.Encode(value)
	if added {
		p.logger.Debug("vocabulary grew for unseen value", "encoder", name, "value", value, "code", code)
		if p.onGrowth != nil {
			p.onGrowth(name)
		}
	}
	return float64(code)
}

func checkQuery(q Query) (Query, error) {
	q.Organization = strings.TrimSpace(q.Organization)
	q.IncidentType = strings.TrimSpace(q.IncidentType)
	if q.Organization == "" {
		return q, model.NewValidationError("organization", "is required")
	}
	if q.IncidentType == "" {
		return q, model.NewValidationError("incidentType", "is required")
	}
	return q, nil
}

// Features builds the encoded feature vector for q.
func (p *Predictor) Features(a *FittedArtifacts, q Query) ([]float64, error) {
	if a == nil {
		return nil, model.NewConfigurationError("no artifacts loaded")
	}
	q, err := checkQuery(q)
	if err != nil {
		return nil, err
	}
	typeName := q.IncidentType
	if t, err := valueobject.ParseIncidentType(typeName); err == nil {
		typeName = t.String()
	}

	vec := make([]float64, 0, featureCount)
	vec = append(vec,
		p.encode(a.Organizations, "organization", q.Organization),
		p.encode(a.IncidentTypes, "incident_type", typeName),
	)
	return append(vec, a.Scaler.Transform(float64(q.Year), PredictionMonth)...), nil
}

// Magnitude predicts records exposed for q. The result is never negative.
func (p *Predictor) Magnitude(a *FittedArtifacts, q Query) (float64, error) {
	vec, err := p.Features(a, q)
	if err != nil {
		return 0, err
	}
	m := MagnitudeFromLog(a.Model.Predict(vec))
	if math.IsNaN(m) || m < 0 {
		return 0, nil
	}
	return m, nil
}

// Assess predicts, calibrates against history and recommends. An incident
// type that is not a known name matches no history and gets no
// type-specific recommendation.
func (p *Predictor) Assess(a *FittedArtifacts, q Query, history []model.IncidentRecord) (*model.PredictionResult, error) {
	magnitude, err := p.Magnitude(a, q)
	if err != nil {
		return nil, err
	}
	q, _ = checkQuery(q)

	incidentType, err := valueobject.ParseIncidentType(q.IncidentType)
	typeName := q.IncidentType
	if err == nil {
		typeName = incidentType.String()
	}

	cal := p.calibrator.Calibrate(magnitude, q.Organization, incidentType, history)
	return model.NewPredictionResult(model.PredictionInput{
		Organization:     q.Organization,
		IncidentType:     typeName,
		Year:             q.Year,
		RiskScore:        cal.RiskScore,
		Confidence:       cal.Confidence,
		PredictedRecords: TruncateRecords(magnitude),
		Matches:          cal.Matches,
		Recommendations:  p.recommender.Recommend(cal.RiskScore, incidentType),
		ModelVersion:     a.Metadata.Version,
	})
}

// TruncateRecords converts a magnitude to a whole record count, clamped to
// the int64 range.
func TruncateRecords(m float64) int64 {
	switch {
	case math.IsNaN(m) || m <= 0:
		return 0
	case m >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(m)
	}
}
