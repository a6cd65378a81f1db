package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/application/usecase"
	"github.com/bibbank/breachrisk/internal/domain/event"
	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	"github.com/bibbank/breachrisk/pkg/events"
	"github.com/bibbank/breachrisk/pkg/observability"
)

func TestPredictRisk_HighRiskWithHistory(t *testing.T) {
	records := &mockRecordStore{
		fetchMatchingFunc: func(_ context.Context, org string, typ valueobject.IncidentType) ([]model.IncidentRecord, error) {
			assert.Equal(t, "TechCorp", org)
			assert.Equal(t, valueobject.IncidentHacking, typ)
			return []model.IncidentRecord{
				record("TechCorp", valueobject.IncidentHacking, 2021, 1_000_000),
				record("TechCorp", valueobject.IncidentHacking, 2022, 1_000_000),
			}, nil
		},
	}
	publisher := &mockEventPublisher{}
	uc := usecase.NewPredictRisk(activeWith(t, stubArtifacts(t, 2_000_000, 3)), records, publisher, usecase.NopMetrics(), observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.PredictRiskRequest{
		Organization: " TechCorp ",
		IncidentType: "hacking",
		Year:         2025,
	})
	require.NoError(t, err)

	assert.Equal(t, "TechCorp", resp.Organization)
	assert.Equal(t, "Hacking", resp.IncidentType)
	assert.Equal(t, 2025, resp.Year)
	assert.InDelta(t, 100.0, resp.RiskScore, 1e-9)
	assert.InDelta(t, 0.7, resp.Confidence, 1e-9)
	assert.Equal(t, 2, resp.HistoricalCount)
	assert.Equal(t, 3, resp.ModelVersion)
	assert.Equal(t, valueobject.RiskTierHigh.String(), resp.Tier)
	assert.InDelta(t, 2_000_000, resp.PredictedRecords, 1)
	assert.Equal(t, model.Factors, resp.Factors)
	assert.NotEmpty(t, resp.Recommendations)

	assert.Equal(t, []string{event.EventTypeRiskPredicted, event.EventTypeHighRiskPredicted}, publisher.types())
}

func TestPredictRisk_NoHistoryUsesAbsoluteScale(t *testing.T) {
	publisher := &mockEventPublisher{}
	uc := usecase.NewPredictRisk(activeWith(t, stubArtifacts(t, 300_000, 1)), &mockRecordStore{}, publisher, usecase.NopMetrics(), observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.PredictRiskRequest{
		Organization: "NewCo",
		IncidentType: "Phishing",
		Year:         2024,
	})
	require.NoError(t, err)

	assert.InDelta(t, 30.0, resp.RiskScore, 1e-6)
	assert.InDelta(t, 0.5, resp.Confidence, 1e-9)
	assert.Equal(t, 0, resp.HistoricalCount)
	assert.Equal(t, valueobject.RiskTierBaseline.String(), resp.Tier)
	assert.Equal(t, []string{event.EventTypeRiskPredicted}, publisher.types())
}

func TestPredictRisk_UnknownIncidentTypeSkipsHistory(t *testing.T) {
	records := &mockRecordStore{}
	uc := usecase.NewPredictRisk(activeWith(t, stubArtifacts(t, 300_000, 1)), records, &mockEventPublisher{}, usecase.NopMetrics(), observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.PredictRiskRequest{
		Organization: "TechCorp",
		IncidentType: "Ransomware",
		Year:         2024,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ransomware", resp.IncidentType)
	assert.Equal(t, 0, records.matchingCalls)
}

func TestPredictRisk_ValidationError(t *testing.T) {
	uc := usecase.NewPredictRisk(activeWith(t, stubArtifacts(t, 1, 1)), &mockRecordStore{}, &mockEventPublisher{}, usecase.NopMetrics(), observability.NopLogger())

	_, err := uc.Execute(context.Background(), dto.PredictRiskRequest{IncidentType: "Hacking"})
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestPredictRisk_ModelNotAvailable(t *testing.T) {
	uc := usecase.NewPredictRisk(service.NewActiveArtifacts(), &mockRecordStore{}, &mockEventPublisher{}, usecase.NopMetrics(), observability.NopLogger())

	_, err := uc.Execute(context.Background(), dto.PredictRiskRequest{Organization: "TechCorp", IncidentType: "Hacking"})
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))
	assert.ErrorIs(t, err, model.ErrModelNotAvailable)
}

func TestPredictRisk_HistoryFailure(t *testing.T) {
	records := &mockRecordStore{
		fetchMatchingFunc: func(context.Context, string, valueobject.IncidentType) ([]model.IncidentRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	uc := usecase.NewPredictRisk(activeWith(t, stubArtifacts(t, 1, 1)), records, &mockEventPublisher{}, usecase.NopMetrics(), observability.NopLogger())

	_, err := uc.Execute(context.Background(), dto.PredictRiskRequest{Organization: "TechCorp", IncidentType: "Hacking"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, model.IsConfigurationError(err))
}

func TestPredictRisk_PublishFailureDoesNotFailPrediction(t *testing.T) {
	publisher := &mockEventPublisher{
		publishFunc: func(context.Context, ...events.DomainEvent) error {
			return errors.New("broker down")
		},
	}
	uc := usecase.NewPredictRisk(activeWith(t, stubArtifacts(t, 300_000, 1)), &mockRecordStore{}, publisher, usecase.NopMetrics(), observability.NopLogger())

	_, err := uc.Execute(context.Background(), dto.PredictRiskRequest{Organization: "TechCorp", IncidentType: "Hacking"})
	assert.NoError(t, err)
}

func TestPredictMagnitude(t *testing.T) {
	uc := usecase.NewPredictMagnitude(activeWith(t, stubArtifacts(t, 250_000, 4)), usecase.NopMetrics(), observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.PredictRiskRequest{Organization: "TechCorp", IncidentType: "Hacking", Year: 2024})
	require.NoError(t, err)
	assert.InDelta(t, 250_000, resp.PredictedRecords, 1)
	assert.Equal(t, 4, resp.ModelVersion)

	_, err = usecase.NewPredictMagnitude(service.NewActiveArtifacts(), usecase.NopMetrics(), observability.NopLogger()).
		Execute(context.Background(), dto.PredictRiskRequest{Organization: "TechCorp", IncidentType: "Hacking"})
	assert.ErrorIs(t, err, model.ErrModelNotAvailable)
}
