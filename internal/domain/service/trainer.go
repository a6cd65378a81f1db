package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// TrainerConfig controls the training pipeline.
type TrainerConfig struct {
	Model ModelConfig
	// Below MinRecords real records, SyntheticSize generated records are
	// used instead.
	MinRecords    int
	SyntheticSize int
	SyntheticSeed uint64
}

// DefaultTrainerConfig returns the production defaults.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Model:         DefaultModelConfig(),
		MinRecords:    10,
		SyntheticSize: 100,
		SyntheticSeed: 42,
	}
}

// Trainer fits encoders, scaler and model from incident history. It
// persists nothing.
type Trainer struct {
	logger *slog.Logger
	now    func() time.Time
	cfg    TrainerConfig
}

// NewTrainer creates a new Trainer.
func NewTrainer(cfg TrainerConfig, logger *slog.Logger) *Trainer {
	return &Trainer{cfg: cfg, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Train produces a validated artifact set tagged with version.
func (t *Trainer) Train(ctx context.Context, records []model.IncidentRecord, version int) (*FittedArtifacts, error) {
	synthetic := len(records) < t.cfg.MinRecords
	if synthetic {
		t.logger.Warn("insufficient history, training on synthetic records",
			"records", len(records),
			"min_records", t.cfg.MinRecords,
			"synthetic_records", t.cfg.SyntheticSize,
		)
		records = SyntheticRecords(t.cfg.SyntheticSize, t.cfg.SyntheticSeed)
	}

	orgs := make([]string, len(records))
	types := make([]string, len(records))
	numeric := make([][]float64, len(records))
	y := make([]float64, len(records))
	for i, r := range records {
		orgs[i] = r.Organization()
		types[i] = r.IncidentType().String()
		numeric[i] = []float64{float64(r.Year()), float64(r.Month())}
		y[i] = LogTarget(r.RecordsExposed())
	}

	orgEnc := FitCategoryEncoder(orgs)
	typeEnc := FitCategoryEncoder(types)
	scaler, err := FitFeatureScaler(numeric)
	if err != nil {
		return nil, fmt.Errorf("fitting scaler: %w", err)
	}
	if scaler.HasDegenerate() {
		t.logger.Warn("zero variance in numeric features, using identity scaling",
			"year_degenerate", scaler.Degenerate[0],
			"month_degenerate", scaler.Degenerate[1],
		)
	}

	X := make([][]float64, len(records))
	for i := range records {
		orgCode, _ := orgEnc.Lookup(orgs[i])
		typeCode, _ := typeEnc.Lookup(types[i])
		X[i] = append([]float64{float64(orgCode), float64(typeCode)}, scaler.Transform(numeric[i]...)...)
	}

	reg, err := NewRegressor(t.cfg.Model)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(ctx, X, y); err != nil {
		return nil, fmt.Errorf("fitting %s model: %w", reg.Kind(), err)
	}

	artifacts := &FittedArtifacts{
		Organizations: orgEnc,
		IncidentTypes: typeEnc,
		Scaler:        scaler,
		Model:         reg,
		Metadata: model.ArtifactMetadata{
			ID:            uuid.New(),
			Version:       version,
			TrainedAt:     t.now(),
			RecordCount:   len(records),
			Synthetic:     synthetic,
			Kind:          reg.Kind(),
			Schema:        model.FeatureSchema,
			Organizations: model.VocabularyInfo{Size: orgEnc.TrainedSize(), Fingerprint: orgEnc.Fingerprint()},
			IncidentTypes: model.VocabularyInfo{Size: typeEnc.TrainedSize(), Fingerprint: typeEnc.Fingerprint()},
		},
	}
	if err := artifacts.Validate(); err != nil {
		return nil, fmt.Errorf("trained artifacts are inconsistent: %w", err)
	}
	return artifacts, nil
}
