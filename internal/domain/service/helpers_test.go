package service_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

// fixedRegressor always predicts the log of records.
type fixedRegressor struct {
	records float64
}

func (f fixedRegressor) Kind() model.ModelKind { return model.ModelKindForest }
func (f fixedRegressor) Fit(context.Context, [][]float64, []float64) error {
	return nil
}
func (f fixedRegressor) Predict([]float64) float64 { return math.Log1p(f.records) }

// fixedArtifacts builds a consistent set around reg without training.
func fixedArtifacts(t *testing.T, reg service.Regressor) *service.FittedArtifacts {
	t.Helper()
	orgs := service.FitCategoryEncoder([]string{"TechCorp", "BankSecure"})
	types := service.FitCategoryEncoder([]string{"Hacking", "Phishing"})
	scaler, err := service.FitFeatureScaler([][]float64{{2020, 1}, {2022, 11}})
	require.NoError(t, err)

	a := &service.FittedArtifacts{
		Organizations: orgs,
		IncidentTypes: types,
		Scaler:        scaler,
		Model:         reg,
		Metadata: model.ArtifactMetadata{
			Version:       1,
			Kind:          reg.Kind(),
			Schema:        model.FeatureSchema,
			Organizations: model.VocabularyInfo{Size: orgs.TrainedSize(), Fingerprint: orgs.Fingerprint()},
			IncidentTypes: model.VocabularyInfo{Size: types.TrainedSize(), Fingerprint: types.Fingerprint()},
		},
	}
	require.NoError(t, a.Validate())
	return a
}

func record(org string, typ valueobject.IncidentType, year int, records int64) model.IncidentRecord {
	return model.MustIncidentRecord(org, typ, time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC), records)
}

func sampleHistory() []model.IncidentRecord {
	return []model.IncidentRecord{
		record("TechCorp", valueobject.IncidentHacking, 2019, 1_200_000),
		record("TechCorp", valueobject.IncidentPhishing, 2020, 40_000),
		record("BankSecure", valueobject.IncidentInsider, 2018, 9_000),
		record("BankSecure", valueobject.IncidentHacking, 2021, 3_500_000),
		record("HealthData", valueobject.IncidentMalware, 2022, 780_000),
		record("HealthData", valueobject.IncidentPhysical, 2017, 1_500),
		record("EduNet", valueobject.IncidentPhishing, 2023, 64_000),
		record("EduNet", valueobject.IncidentHacking, 2016, 200_000),
		record("RetailChain", valueobject.IncidentMalware, 2020, 5_600_000),
		record("RetailChain", valueobject.IncidentSocialEngineering, 2021, 12_000),
		record("TechCorp", valueobject.IncidentMalware, 2022, 310_000),
		record("BankSecure", valueobject.IncidentPhishing, 2023, 27_000),
	}
}
