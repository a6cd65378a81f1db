package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	"github.com/bibbank/breachrisk/pkg/observability"
)

func TestPredictor_AssessScenario(t *testing.T) {
	a := fixedArtifacts(t, fixedRegressor{records: 1_500_000})
	p := service.NewPredictor(observability.NopLogger(), nil)
	history := []model.IncidentRecord{record("TechCorp", valueobject.IncidentHacking, 2020, 1_000_000)}

	got, err := p.Assess(a, service.Query{Organization: "TechCorp", IncidentType: "Hacking", Year: 2024}, history)
	require.NoError(t, err)

	assert.InDelta(t, 75.0, got.RiskScore(), 1e-6)
	assert.InDelta(t, 0.6, got.Confidence(), 1e-9)
	assert.InDelta(t, 1_500_000, got.PredictedRecords(), 1)
	assert.Equal(t, 1, got.HistoricalMatches())
	assert.Equal(t, valueobject.RiskTierHigh, got.Tier())
	assert.Equal(t, model.Factors, got.Factors())
	assert.Len(t, got.Recommendations(), 5)
	assert.Equal(t, "Implement network segmentation", got.Recommendations()[4])
	assert.Equal(t, 1, got.ModelVersion())
}

func TestPredictor_NoHistorySaturates(t *testing.T) {
	a := fixedArtifacts(t, fixedRegressor{records: 2_000_000})
	got, err := service.NewPredictor(observability.NopLogger(), nil).
		Assess(a, service.Query{Organization: "Nobody", IncidentType: "Phishing", Year: 2024}, nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.RiskScore())
	assert.InDelta(t, 0.5, got.Confidence(), 1e-9)
	assert.Equal(t, "Deploy email security solutions", got.Recommendations()[4])
}

func TestPredictor_CanonicalisesKnownTypes(t *testing.T) {
	a := fixedArtifacts(t, fixedRegressor{records: 10})
	p := service.NewPredictor(observability.NopLogger(), nil)

	upper, err := p.Features(a, service.Query{Organization: "TechCorp", IncidentType: "Hacking", Year: 2021})
	require.NoError(t, err)
	lower, err := p.Features(a, service.Query{Organization: "TechCorp", IncidentType: "  hacking", Year: 2021})
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	assert.Equal(t, 2, a.IncidentTypes.Size())
	assert.Len(t, upper, 4)
	assert.Equal(t, []float64{1, 0, 0, 0}, upper)
}

func TestPredictor_UnknownTypeGrowsVocabularyWithoutTypeAdvice(t *testing.T) {
	a := fixedArtifacts(t, fixedRegressor{records: 100})
	var grown []string
	p := service.NewPredictor(observability.NopLogger(), func(enc string) { grown = append(grown, enc) })
	history := []model.IncidentRecord{record("TechCorp", valueobject.IncidentOther, 2020, 10)}

	got, err := p.Assess(a, service.Query{Organization: "TechCorp", IncidentType: "Ransomware", Year: 2024}, history)
	require.NoError(t, err)

	assert.Equal(t, "Ransomware", got.IncidentType())
	assert.Zero(t, got.HistoricalMatches())
	assert.Len(t, got.Recommendations(), 4)
	assert.Equal(t, []string{"incident_type"}, grown)

	_, err = p.Assess(a, service.Query{Organization: "TechCorp", IncidentType: "Ransomware", Year: 2024}, nil)
	require.NoError(t, err)
	assert.Len(t, grown, 1)
}

func TestPredictor_UnseenOrganization(t *testing.T) {
	a := fixedArtifacts(t, fixedRegressor{records: 100})
	var grown []string
	p := service.NewPredictor(observability.NopLogger(), func(enc string) { grown = append(grown, enc) })

	first, err := p.Features(a, service.Query{Organization: "Brand New Org", IncidentType: "Malware", Year: 2024})
	require.NoError(t, err)
	second, err := p.Features(a, service.Query{Organization: "Brand New Org", IncidentType: "Malware", Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, 2.0, first[0])
	assert.Equal(t, first, second)
	// Malware was not in the trained type vocabulary either.
	assert.Equal(t, []string{"organization", "incident_type"}, grown)
	assert.Equal(t, 2, a.Organizations.TrainedSize())
}

func TestPredictor_Errors(t *testing.T) {
	p := service.NewPredictor(observability.NopLogger(), nil)
	a := fixedArtifacts(t, fixedRegressor{records: 1})

	_, err := p.Assess(nil, service.Query{Organization: "x", IncidentType: "Hacking"}, nil)
	assert.True(t, model.IsConfigurationError(err))

	_, err = p.Assess(a, service.Query{Organization: " ", IncidentType: "Hacking"}, nil)
	assert.True(t, model.IsValidationError(err))

	_, err = p.Magnitude(a, service.Query{Organization: "x"})
	assert.True(t, model.IsValidationError(err))
}

func TestPredictor_NegativeMagnitudeClampsToZero(t *testing.T) {
	a := fixedArtifacts(t, fixedRegressor{records: -0.99})

	got, err := service.NewPredictor(observability.NopLogger(), nil).
		Assess(a, service.Query{Organization: "TechCorp", IncidentType: "Hacking", Year: 2024}, nil)
	require.NoError(t, err)
	assert.Zero(t, got.PredictedRecords())
	assert.Zero(t, got.RiskScore())
}

func TestPredictor_TrainedModelStaysInBounds(t *testing.T) {
	a, err := service.NewTrainer(fastTrainerConfig(model.ModelKindForest), observability.NopLogger()).Train(context.Background(), sampleHistory(), 1)
	require.NoError(t, err)
	p := service.NewPredictor(observability.NopLogger(), nil)

	for _, org := range []string{"TechCorp", "BankSecure", "Unknown Org"} {
		for _, typ := range valueobject.AllIncidentTypes() {
			got, err := p.Assess(a, service.Query{Organization: org, IncidentType: typ.String(), Year: 2025}, sampleHistory())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.RiskScore(), 0.0)
			assert.LessOrEqual(t, got.RiskScore(), 100.0)
			assert.LessOrEqual(t, got.Confidence(), 0.95)
			assert.GreaterOrEqual(t, got.PredictedRecords(), int64(0))
		}
	}
}

func TestTruncateRecords(t *testing.T) {
	assert.Equal(t, int64(0), service.TruncateRecords(-3))
	assert.Equal(t, int64(12), service.TruncateRecords(12.9))
	assert.Equal(t, int64(9223372036854775807), service.TruncateRecords(1e30))
}
