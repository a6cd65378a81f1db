package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/event"
	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	"github.com/bibbank/breachrisk/pkg/events"
)

// PredictRisk is the use case for scoring the breach risk of an
// organization and incident type.
type PredictRisk struct {
	active    *service.ActiveArtifacts
	records   port.RecordStore
	publisher port.EventPublisher
	predictor *service.Predictor
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewPredictRisk creates a new PredictRisk use case.
func NewPredictRisk(
	active *service.ActiveArtifacts,
	records port.RecordStore,
	publisher port.EventPublisher,
	metrics *Metrics,
	logger *slog.Logger,
) *PredictRisk {
	return &PredictRisk{
		active:    active,
		records:   records,
		publisher: publisher,
		predictor: service.NewPredictor(logger, metrics.vocabularyGrew),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute validates the request, predicts against the active artifacts and
// matching history, and publishes prediction events.
func (uc *PredictRisk) Execute(ctx context.Context, req dto.PredictRiskRequest) (dto.PredictionResponse, error) {
	ctx, span := tracer.Start(ctx, "PredictRisk.Execute", trace.WithAttributes(
		attribute.String("organization", req.Organization),
		attribute.String("incident_type", req.IncidentType),
	))
	defer span.End()

	if err := dto.Validate(req); err != nil {
		return dto.PredictionResponse{}, err
	}

	// 1. Take one artifact snapshot for the whole request.
	artifacts, err := uc.active.Load()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.PredictionResponse{}, err
	}

	// 2. Only a known incident type can match history.
	var history []model.IncidentRecord
	if incidentType, perr := valueobject.ParseIncidentType(req.IncidentType); perr == nil {
		history, err = uc.records.FetchMatching(ctx, strings.TrimSpace(req.Organization), incidentType)
		if err != nil {
			span.RecordError(err)
			return dto.PredictionResponse{}, fmt.Errorf("failed to fetch history: %w", err)
		}
	}

	// 3. Predict, calibrate and recommend.
	result, err := uc.predictor.Assess(artifacts, service.Query{
		Organization: req.Organization,
		IncidentType: req.IncidentType,
		Year:         req.YearOr(uc.now()),
	}, history)
	if err != nil {
		span.RecordError(err)
		return dto.PredictionResponse{}, fmt.Errorf("failed to assess risk: %w", err)
	}
	uc.metrics.recordPrediction(ctx, result)
	span.SetAttributes(attribute.Float64("risk_score", result.RiskScore()))

	// 4. Publish domain events. Delivery problems never fail the prediction.
	uc.publish(ctx, result)

	return dto.FromPrediction(result), nil
}

func (uc *PredictRisk) publish(ctx context.Context, r *model.PredictionResult) {
	var collector events.Collector
	collector.Record(event.NewRiskPredicted(
		r.ID(), r.Organization(), r.IncidentType(), r.Tier().String(), r.Year(),
		r.RiskScore(), r.Confidence(), r.PredictedRecords(), r.ModelVersion(),
	))
	if r.Tier().Equal(valueobject.RiskTierHigh) {
		collector.Record(event.NewHighRiskPredicted(
			r.ID(), r.Organization(), r.IncidentType(), r.RiskScore(), r.Recommendations(),
		))
	}
	if err := uc.publisher.Publish(ctx, collector.Drain()...); err != nil {
		uc.logger.Warn("failed to publish prediction events",
			"prediction_id", r.ID(),
			"error", err,
		)
	}
}
