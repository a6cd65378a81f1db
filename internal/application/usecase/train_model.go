package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/event"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/pkg/events"
)

// TrainModel is the use case for retraining from the record store and
// publishing the result.
type TrainModel struct {
	records   port.RecordStore
	store     port.ArtifactStore
	active    *service.ActiveArtifacts
	trainer   *service.Trainer
	publisher port.EventPublisher
	metrics   *Metrics
	logger    *slog.Logger
	flight    singleflight.Group
}

// NewTrainModel creates a new TrainModel use case.
func NewTrainModel(
	records port.RecordStore,
	store port.ArtifactStore,
	active *service.ActiveArtifacts,
	trainer *service.Trainer,
	publisher port.EventPublisher,
	metrics *Metrics,
	logger *slog.Logger,
) *TrainModel {
	return &TrainModel{
		records:   records,
		store:     store,
		active:    active,
		trainer:   trainer,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute runs a training pass. At most one pass runs at a time; callers
// arriving while one is in flight share its result. The pass is detached
// from ctx cancellation so an impatient caller cannot abort a shared run.
func (uc *TrainModel) Execute(ctx context.Context) (dto.TrainResponse, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := uc.flight.DoChan("train", func() (any, error) {
		return uc.train(runCtx)
	})

	select {
	case <-ctx.Done():
		return dto.TrainResponse{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return dto.TrainResponse{}, res.Err
		}
		return res.Val.(dto.TrainResponse), nil
	}
}

func (uc *TrainModel) train(ctx context.Context) (dto.TrainResponse, error) {
	ctx, span := tracer.Start(ctx, "TrainModel.train")
	defer span.End()
	start := time.Now()

	records, err := uc.records.FetchAll(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.TrainResponse{}, fmt.Errorf("failed to fetch records: %w", err)
	}

	version := 1
	if current, err := uc.active.Load(); err == nil {
		version = current.Metadata.Version + 1
	}

	artifacts, err := uc.trainer.Train(ctx, records, version)
	if err != nil {
		span.RecordError(err)
		return dto.TrainResponse{}, fmt.Errorf("failed to train model: %w", err)
	}

	// Persist before publishing so a restart serves what clients last saw.
	if err := uc.store.Save(ctx, artifacts); err != nil {
		span.RecordError(err)
		return dto.TrainResponse{}, fmt.Errorf("failed to save artifacts: %w", err)
	}
	if err := uc.active.Publish(artifacts); err != nil {
		return dto.TrainResponse{}, fmt.Errorf("failed to publish artifacts: %w", err)
	}

	md := artifacts.Metadata
	elapsed := time.Since(start)
	uc.metrics.recordTraining(ctx, md.Synthetic, elapsed)
	span.SetAttributes(
		attribute.Int("version", md.Version),
		attribute.Int("record_count", md.RecordCount),
		attribute.Bool("synthetic", md.Synthetic),
	)
	uc.logger.Info("model artifacts published",
		"version", md.Version,
		"kind", md.Kind,
		"records", md.RecordCount,
		"synthetic", md.Synthetic,
		"duration", elapsed,
	)

	var collector events.Collector
	collector.Record(event.NewModelRetrained(md.ID, md.Version, string(md.Kind), md.RecordCount, md.Synthetic))
	if err := uc.publisher.Publish(ctx, collector.Drain()...); err != nil {
		uc.logger.Warn("failed to publish retrain event", "version", md.Version, "error", err)
	}

	return dto.FromMetadata(md), nil
}
