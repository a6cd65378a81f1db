package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// ImportRecords cleans raw incidents, stores the survivors and optionally
// retrains on the enlarged dataset.
type ImportRecords struct {
	records port.RecordStore
	train   *TrainModel
	logger  *slog.Logger
	now     func() time.Time
}

// NewImportRecords creates a new ImportRecords use case. train may be nil
// when imports never trigger retraining.
func NewImportRecords(records port.RecordStore, train *TrainModel, logger *slog.Logger) *ImportRecords {
	return &ImportRecords{records: records, train: train, logger: logger, now: time.Now}
}

// Execute imports raw. With retrain set, a training pass follows a
// successful store.
func (uc *ImportRecords) Execute(ctx context.Context, raw []service.RawRecord, retrain bool) (dto.ImportResponse, error) {
	report := service.CleanRecords(raw, uc.now())
	resp := dto.ImportResponse{
		Received: len(raw),
		Dropped:  report.Dropped,
		Coerced:  report.Coerced,
		Redated:  report.Redated,
	}

	if len(report.Records) > 0 {
		stored, err := uc.records.Save(ctx, report.Records...)
		if err != nil {
			return resp, fmt.Errorf("failed to store records: %w", err)
		}
		resp.Stored = stored
	}
	uc.logger.Info("imported incident records",
		"received", resp.Received,
		"stored", resp.Stored,
		"dropped", resp.Dropped,
		"coerced", resp.Coerced,
		"redated", resp.Redated,
	)

	if retrain && uc.train != nil && resp.Stored > 0 {
		if _, err := uc.train.Execute(ctx); err != nil {
			return resp, err
		}
		resp.Retrain = true
	}
	return resp, nil
}
