package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/service"
)

// GetStatistics summarises the stored dataset.
type GetStatistics struct {
	records port.RecordStore
}

// NewGetStatistics creates a new GetStatistics use case.
func NewGetStatistics(records port.RecordStore) *GetStatistics {
	return &GetStatistics{records: records}
}

// Execute computes statistics over every stored record.
func (uc *GetStatistics) Execute(ctx context.Context) (dto.StatisticsResponse, error) {
	ctx, span := tracer.Start(ctx, "GetStatistics.Execute")
	defer span.End()

	records, err := uc.records.FetchAll(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.StatisticsResponse{}, fmt.Errorf("failed to fetch records: %w", err)
	}
	return dto.FromStatistics(service.ComputeStatistics(records)), nil
}
