package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// LoadModel brings the service to a ready state at startup: it serves the
// stored artifacts, or trains when there are none.
type LoadModel struct {
	store  port.ArtifactStore
	active *service.ActiveArtifacts
	train  *TrainModel
	logger *slog.Logger
}

// NewLoadModel creates a new LoadModel use case.
func NewLoadModel(store port.ArtifactStore, active *service.ActiveArtifacts, train *TrainModel, logger *slog.Logger) *LoadModel {
	return &LoadModel{store: store, active: active, train: train, logger: logger}
}

// Execute loads or trains. With forceTrain a fresh run always follows;
// stored artifacts, if readable, serve until it completes and fix the next
// version number. Stored artifacts that fail validation are replaced by a
// fresh training run.
func (uc *LoadModel) Execute(ctx context.Context, forceTrain bool) (model.ArtifactMetadata, error) {
	artifacts, err := uc.store.Load(ctx)
	switch {
	case err == nil:
		if err := uc.active.Publish(artifacts); err != nil {
			uc.logger.Warn("stored artifacts are inconsistent, retraining", "error", err)
			break
		}
		uc.logger.Info("loaded stored model artifacts",
			"version", artifacts.Metadata.Version,
			"kind", artifacts.Metadata.Kind,
		)
		if !forceTrain {
			return artifacts.Metadata, nil
		}
	case errors.Is(err, model.ErrArtifactsNotFound):
		uc.logger.Info("no stored model artifacts, training")
	case model.IsConfigurationError(err):
		uc.logger.Warn("stored artifacts are unreadable, retraining", "error", err)
	default:
		return model.ArtifactMetadata{}, fmt.Errorf("failed to load artifacts: %w", err)
	}

	if _, err := uc.train.Execute(ctx); err != nil {
		return model.ArtifactMetadata{}, err
	}
	current, err := uc.active.Load()
	if err != nil {
		return model.ArtifactMetadata{}, err
	}
	return current.Metadata, nil
}
