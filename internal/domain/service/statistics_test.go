package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

func TestComputeStatistics(t *testing.T) {
	stats := service.ComputeStatistics([]model.IncidentRecord{
		record("A", valueobject.IncidentHacking, 2020, 100),
		record("A", valueobject.IncidentPhishing, 2020, 300),
		record("B", valueobject.IncidentHacking, 2021, 50),
	})

	assert.Equal(t, 3, stats.TotalIncidents)
	assert.Equal(t, int64(450), stats.TotalRecords)
	assert.Equal(t, int64(300), stats.MaxRecords)
	assert.Equal(t, int64(50), stats.MinRecords)
	assert.Equal(t, "150", stats.AverageRecords.String())
	assert.Equal(t, map[string]int{"Hacking": 2, "Phishing": 1}, stats.ByType)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, stats.ByOrganization)

	require.Len(t, stats.Trends, 2)
	assert.Equal(t, 2020, stats.Trends[0].Year)
	assert.Equal(t, 2, stats.Trends[0].Count)
	assert.Equal(t, int64(400), stats.Trends[0].Total)
	assert.Equal(t, "200", stats.Trends[0].Average.String())
	assert.Equal(t, 2021, stats.Trends[1].Year)
}

func TestComputeStatistics_RoundsAverage(t *testing.T) {
	stats := service.ComputeStatistics([]model.IncidentRecord{
		record("A", valueobject.IncidentHacking, 2020, 1),
		record("A", valueobject.IncidentHacking, 2020, 1),
		record("A", valueobject.IncidentHacking, 2020, 2),
	})
	assert.Equal(t, "1.33", stats.AverageRecords.String())
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := service.ComputeStatistics(nil)
	assert.Zero(t, stats.TotalIncidents)
	assert.True(t, stats.AverageRecords.IsZero())
	assert.Empty(t, stats.Trends)
	assert.NotNil(t, stats.ByType)
}
