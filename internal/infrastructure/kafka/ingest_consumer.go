package kafka

import (
	"context"
	"log/slog"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/infrastructure/dataset"
	pkgkafka "github.com/bibbank/breachrisk/pkg/kafka"
)

// Importer is satisfied by *usecase.ImportRecords.
type Importer interface {
	Execute(ctx context.Context, raw []service.RawRecord, retrain bool) (dto.ImportResponse, error)
}

// IngestHandler turns incident messages into imports. A message holds one
// incident object or an array of them in the dataset JSON form.
type IngestHandler struct {
	importer Importer
	logger   *slog.Logger
	retrain  bool
}

// NewIngestHandler creates a handler that imports through importer,
// retraining after each stored batch when retrain is set.
func NewIngestHandler(importer Importer, retrain bool, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{importer: importer, retrain: retrain, logger: logger}
}

// Handle is a pkgkafka.Handler. Malformed payloads are logged and
// acknowledged so they do not block the partition; storage failures are
// returned so the offset is not committed.
func (h *IngestHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	raw, err := dataset.DecodeJSON(msg.Value)
	if err != nil {
		h.logger.Warn("discarding malformed incident message",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	resp, err := h.importer.Execute(ctx, raw, h.retrain)
	if err != nil {
		return err
	}
	if resp.Dropped > 0 {
		h.logger.Warn("incident message had invalid records",
			"key", string(msg.Key),
			"dropped", resp.Dropped,
		)
	}
	return nil
}

// NewIngestConsumer subscribes handler to topic.
func NewIngestConsumer(cfg pkgkafka.Config, topic string, handler *IngestHandler, logger *slog.Logger) (*pkgkafka.Consumer, error) {
	return pkgkafka.NewConsumer(cfg, topic, handler.Handle, logger)
}
