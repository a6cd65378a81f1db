package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

const instrumentationName = "github.com/bibbank/breachrisk/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)

// Metrics holds the instruments recorded by the use cases.
type Metrics struct {
	predictions      metric.Int64Counter
	riskScore        metric.Float64Histogram
	trainingRuns     metric.Int64Counter
	trainingDuration metric.Float64Histogram
	vocabularyGrowth metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.predictions, err = meter.Int64Counter("risk_predictions",
		metric.WithDescription("Risk predictions served, by tier.")); err != nil {
		return nil, fmt.Errorf("creating predictions counter: %w", err)
	}
	if m.riskScore, err = meter.Float64Histogram("risk_score",
		metric.WithDescription("Distribution of calibrated risk scores."),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)); err != nil {
		return nil, fmt.Errorf("creating risk score histogram: %w", err)
	}
	if m.trainingRuns, err = meter.Int64Counter("model_training_runs",
		metric.WithDescription("Completed training runs, by data source.")); err != nil {
		return nil, fmt.Errorf("creating training counter: %w", err)
	}
	if m.trainingDuration, err = meter.Float64Histogram("model_training_duration",
		metric.WithDescription("Wall time of training runs."),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating training duration histogram: %w", err)
	}
	if m.vocabularyGrowth, err = meter.Int64Counter("vocabulary_growth",
		metric.WithDescription("Unseen category values admitted at prediction time.")); err != nil {
		return nil, fmt.Errorf("creating vocabulary counter: %w", err)
	}
	return &m, nil
}

// NopMetrics returns instruments that record nothing.
func NopMetrics() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) recordPrediction(ctx context.Context, p *model.PredictionResult) {
	tier := attribute.String("tier", p.Tier().String())
	m.predictions.Add(ctx, 1, metric.WithAttributes(tier))
	m.riskScore.Record(ctx, p.RiskScore(), metric.WithAttributes(tier))
}

func (m *Metrics) recordTraining(ctx context.Context, synthetic bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("synthetic", synthetic))
	m.trainingRuns.Add(ctx, 1, attrs)
	m.trainingDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) vocabularyGrew(encoder string) {
	m.vocabularyGrowth.Add(context.Background(), 1, metric.WithAttributes(attribute.String("encoder", encoder)))
}
