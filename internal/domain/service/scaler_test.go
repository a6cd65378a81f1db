package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/service"
)

func TestFitFeatureScaler(t *testing.T) {
	s, err := service.FitFeatureScaler([][]float64{{2020, 1}, {2022, 3}})
	require.NoError(t, err)

	assert.Equal(t, []float64{2021, 2}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std)
	assert.False(t, s.HasDegenerate())
	assert.Equal(t, []float64{1, 1}, s.Transform(2022, 3))
	assert.Equal(t, []float64{-1, -1}, s.Transform(2020, 1))
}

func TestFitFeatureScaler_ZeroVarianceFallsBackToIdentity(t *testing.T) {
	s, err := service.FitFeatureScaler([][]float64{{2020, 6}, {2020, 7}})
	require.NoError(t, err)

	assert.True(t, s.HasDegenerate())
	assert.Equal(t, []bool{true, false}, s.Degenerate)

	out := s.Transform(2020, 6)
	assert.Equal(t, 2020.0, out[0])
	assert.InDelta(t, -1.0, out[1], 1e-12)
}

func TestFitFeatureScaler_Errors(t *testing.T) {
	_, err := service.FitFeatureScaler(nil)
	assert.Error(t, err)

	_, err = service.FitFeatureScaler([][]float64{{}})
	assert.Error(t, err)

	_, err = service.FitFeatureScaler([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestFeatureScaler_TransformWidthMismatchPanics(t *testing.T) {
	s, err := service.FitFeatureScaler([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Panics(t, func() { s.Transform(1) })
}
