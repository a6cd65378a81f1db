package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/port"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

var _ port.RecordStore = (*RecordStore)(nil)

// RecordStore keeps incident records in process memory. It backs local
// runs and the CLI when no database is configured.
type RecordStore struct {
	mu      sync.RWMutex
	records []model.IncidentRecord
}

// NewRecordStore creates a store seeded with records.
func NewRecordStore(records ...model.IncidentRecord) *RecordStore {
	return &RecordStore{records: slices.Clone(records)}
}

func (s *RecordStore) FetchAll(_ context.Context) ([]model.IncidentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

func (s *RecordStore) FetchMatching(_ context.Context, organization string, incidentType valueobject.IncidentType) ([]model.IncidentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.IncidentRecord
	for _, r := range s.records {
		if r.MatchesQuery(organization, incidentType) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RecordStore) Save(_ context.Context, records ...model.IncidentRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return len(records), nil
}
