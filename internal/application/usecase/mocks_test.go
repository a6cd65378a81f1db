package usecase_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	"github.com/bibbank/breachrisk/pkg/events"
	"github.com/bibbank/breachrisk/pkg/observability"
	"github.com/bibbank/breachrisk/pkg/testutil"
)

// --- Mock implementations ---

type mockRecordStore struct {
	fetchAllFunc      func(ctx context.Context) ([]model.IncidentRecord, error)
	fetchMatchingFunc func(ctx context.Context, org string, t valueobject.IncidentType) ([]model.IncidentRecord, error)
	saveFunc          func(ctx context.Context, records ...model.IncidentRecord) (int, error)

	mu            sync.Mutex
	saved         []model.IncidentRecord
	matchingCalls int
}

func (m *mockRecordStore) FetchAll(ctx context.Context) ([]model.IncidentRecord, error) {
	if m.fetchAllFunc != nil {
		return m.fetchAllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.IncidentRecord(nil), m.saved...), nil
}

func (m *mockRecordStore) FetchMatching(ctx context.Context, org string, t valueobject.IncidentType) ([]model.IncidentRecord, error) {
	m.mu.Lock()
	m.matchingCalls++
	m.mu.Unlock()
	if m.fetchMatchingFunc != nil {
		return m.fetchMatchingFunc(ctx, org, t)
	}
	return nil, nil
}

func (m *mockRecordStore) Save(ctx context.Context, records ...model.IncidentRecord) (int, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, records...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, records...)
	return len(records), nil
}

type mockArtifactStore struct {
	loadFunc func(ctx context.Context) (*service.FittedArtifacts, error)
	saveFunc func(ctx context.Context, a *service.FittedArtifacts) error

	mu    sync.Mutex
	saved []*service.FittedArtifacts
}

func (m *mockArtifactStore) Load(ctx context.Context) (*service.FittedArtifacts, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return nil, model.ErrArtifactsNotFound
}

func (m *mockArtifactStore) Save(ctx context.Context, a *service.FittedArtifacts) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, a)
	return nil
}

type mockEventPublisher struct {
	publishFunc func(ctx context.Context, evts ...events.DomainEvent) error

	mu        sync.Mutex
	published []events.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.EventType())
	}
	return out
}

// stubRegressor always predicts the given magnitude.
type stubRegressor struct {
	records float64
}

func (s stubRegressor) Kind() model.ModelKind                             { return model.ModelKindForest }
func (s stubRegressor) Fit(context.Context, [][]float64, []float64) error { return nil }
func (s stubRegressor) Predict([]float64) float64                         { return math.Log1p(s.records) }

// --- Helpers ---

func stubArtifacts(t *testing.T, records float64, version int) *service.FittedArtifacts {
	t.Helper()
	orgs := service.FitCategoryEncoder([]string{"TechCorp", "BankSecure"})
	types := service.FitCategoryEncoder([]string{"Hacking", "Phishing"})
	scaler, err := service.FitFeatureScaler([][]float64{{2020, 1}, {2022, 11}})
	require.NoError(t, err)

	a := &service.FittedArtifacts{
		Organizations: orgs,
		IncidentTypes: types,
		Scaler:        scaler,
		Model:         stubRegressor{records: records},
		Metadata: model.ArtifactMetadata{
			Version:       version,
			Kind:          model.ModelKindForest,
			Schema:        model.FeatureSchema,
			RecordCount:   2,
			TrainedAt:     testutil.TestTrainedAt,
			ID:            testutil.TestModelID,
			Organizations: model.VocabularyInfo{Size: orgs.TrainedSize(), Fingerprint: orgs.Fingerprint()},
			IncidentTypes: model.VocabularyInfo{Size: types.TrainedSize(), Fingerprint: types.Fingerprint()},
		},
	}
	require.NoError(t, a.Validate())
	return a
}

func activeWith(t *testing.T, a *service.FittedArtifacts) *service.ActiveArtifacts {
	t.Helper()
	active := service.NewActiveArtifacts()
	require.NoError(t, active.Publish(a))
	return active
}

func fastTrainer() *service.Trainer {
	cfg := service.DefaultTrainerConfig()
	cfg.Model.Forest.Trees = 5
	return service.NewTrainer(cfg, observability.NopLogger())
}

func record(org string, typ valueobject.IncidentType, year int, records int64) model.IncidentRecord {
	return model.MustIncidentRecord(org, typ, time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC), records)
}
