package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// PredictMagnitude is the use case for predicting records exposed without
// calibration or recommendations.
type PredictMagnitude struct {
	active    *service.ActiveArtifacts
	predictor *service.Predictor
	now       func() time.Time
}

// NewPredictMagnitude creates a new PredictMagnitude use case.
func NewPredictMagnitude(active *service.ActiveArtifacts, metrics *Metrics, logger *slog.Logger) *PredictMagnitude {
	return &PredictMagnitude{
		active:    active,
		predictor: service.NewPredictor(logger, metrics.vocabularyGrew),
		now:       time.Now,
	}
}

// Execute predicts the magnitude for req.
func (uc *PredictMagnitude) Execute(ctx context.Context, req dto.PredictRiskRequest) (dto.MagnitudeResponse, error) {
	_, span := tracer.Start(ctx, "PredictMagnitude.Execute")
	defer span.End()

	if err := dto.Validate(req); err != nil {
		return dto.MagnitudeResponse{}, err
	}
	artifacts, err := uc.active.Load()
	if err != nil {
		return dto.MagnitudeResponse{}, err
	}

	m, err := uc.predictor.Magnitude(artifacts, service.Query{
		Organization: req.Organization,
		IncidentType: req.IncidentType,
		Year:         req.YearOr(uc.now()),
	})
	if err != nil {
		return dto.MagnitudeResponse{}, fmt.Errorf("failed to predict magnitude: %w", err)
	}
	return dto.MagnitudeResponse{
		PredictedRecords: service.TruncateRecords(m),
		ModelVersion:     artifacts.Metadata.Version,
	}, nil
}
