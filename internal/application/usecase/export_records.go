package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
)

// ExportRecords reads the full dataset for writing out.
type ExportRecords struct {
	records port.RecordStore
}

// NewExportRecords creates a new ExportRecords use case.
func NewExportRecords(records port.RecordStore) *ExportRecords {
	return &ExportRecords{records: records}
}

// Execute returns every stored record.
func (uc *ExportRecords) Execute(ctx context.Context) ([]model.IncidentRecord, error) {
	records, err := uc.records.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	return records, nil
}
