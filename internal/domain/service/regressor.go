package service

import (
	"context"
	"fmt"
	"math"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// Regressor maps a feature vector to a predicted log-magnitude. Any
// regression family satisfying this contract can back the engine.
type Regressor interface {
	Kind() model.ModelKind
	// Fit trains on X and targets y, which are already in log space.
	Fit(ctx context.Context, X [][]float64, y []float64) error
	Predict(x []float64) float64
}

// ModelConfig selects and parameterises a Regressor.
type ModelConfig struct {
	Kind   model.ModelKind
	Forest ForestConfig
	MLP    MLPConfig
}

// DefaultModelConfig returns the forest with its default parameters.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Kind:   model.ModelKindForest,
		Forest: DefaultForestConfig(),
		MLP:    DefaultMLPConfig(),
	}
}

// NewRegressor creates an untrained regressor of the configured kind.
func NewRegressor(cfg ModelConfig) (Regressor, error) {
	switch cfg.Kind {
	case model.ModelKindForest:
		return NewRandomForest(cfg.Forest), nil
	case model.ModelKindMLP:
		return NewMLP(cfg.MLP), nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", cfg.Kind)
	}
}

// LogTarget converts records exposed into the regression target.
func LogTarget(records int64) float64 {
	return math.Log1p(float64(records))
}

// MagnitudeFromLog inverts LogTarget.
func MagnitudeFromLog(v float64) float64 {
	return math.Expm1(v)
}
