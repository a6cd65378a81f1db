package service_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/pkg/testutil"
)

func TestLogTargetRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		records := 1 + rng.Int64N(50_000_000)
		got := service.MagnitudeFromLog(service.LogTarget(records))
		assert.InEpsilon(t, float64(records), got, 1e-9)
	}
	assert.InDelta(t, 1.0, service.MagnitudeFromLog(service.LogTarget(1)), 1e-12)
}

func TestNewRegressor(t *testing.T) {
	forest, err := service.NewRegressor(service.ModelConfig{Kind: model.ModelKindForest})
	require.NoError(t, err)
	assert.Equal(t, model.ModelKindForest, forest.Kind())

	mlp, err := service.NewRegressor(service.ModelConfig{Kind: model.ModelKindMLP})
	require.NoError(t, err)
	assert.Equal(t, model.ModelKindMLP, mlp.Kind())

	_, err = service.NewRegressor(service.ModelConfig{Kind: "xgboost"})
	assert.Error(t, err)
}

func stepData() ([][]float64, []float64) {
	X := make([][]float64, 50)
	y := make([]float64, 50)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 3)}
		if i < 25 {
			y[i] = 1
		} else {
			y[i] = 10
		}
	}
	return X, y
}

func TestRandomForest_LearnsStepFunction(t *testing.T) {
	X, y := stepData()
	f := service.NewRandomForest(service.ForestConfig{Trees: 20, Seed: 3})
	require.NoError(t, f.Fit(context.Background(), X, y))

	assert.Len(t, f.Trees, 20)
	assert.InDelta(t, 1.0, f.Predict([]float64{5, 2}), 1e-9)
	assert.InDelta(t, 10.0, f.Predict([]float64{45, 0}), 1e-9)
}

func TestRandomForest_DeterministicForSeed(t *testing.T) {
	X, y := stepData()
	for i := range y {
		y[i] += float64(i%7) * 0.3
	}

	a := service.NewRandomForest(service.ForestConfig{Trees: 15, Seed: 42})
	b := service.NewRandomForest(service.ForestConfig{Trees: 15, Seed: 42})
	require.NoError(t, a.Fit(context.Background(), X, y))
	require.NoError(t, b.Fit(context.Background(), X, y))

	for _, x := range [][]float64{{0, 0}, {12.5, 1}, {24.7, 2}, {49, 1}} {
		assert.Equal(t, a.Predict(x), b.Predict(x))
	}
}

func TestRandomForest_MaxDepthAndMinLeaf(t *testing.T) {
	X, y := stepData()
	stump := service.NewRandomForest(service.ForestConfig{Trees: 1, MaxDepth: 1, Seed: 1})
	require.NoError(t, stump.Fit(context.Background(), X, y))
	assert.LessOrEqual(t, len(stump.Trees[0].Nodes), 3)

	leafy := service.NewRandomForest(service.ForestConfig{Trees: 1, MinSamplesLeaf: 50, Seed: 1})
	require.NoError(t, leafy.Fit(context.Background(), X, y))
	assert.Len(t, leafy.Trees[0].Nodes, 1)
}

func TestRandomForest_Errors(t *testing.T) {
	f := service.NewRandomForest(service.DefaultForestConfig())
	assert.Error(t, f.Fit(context.Background(), nil, nil))
	assert.Error(t, f.Fit(context.Background(), [][]float64{{1}}, []float64{1, 2}))
	assert.Error(t, f.Fit(context.Background(), [][]float64{{1}, {1, 2}}, []float64{1, 2}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	X, y := stepData()
	assert.ErrorIs(t, f.Fit(ctx, X, y), context.Canceled)

	assert.Zero(t, service.NewRandomForest(service.ForestConfig{}).Predict([]float64{1}))
}

func TestMLP_FitsConstantTarget(t *testing.T) {
	X := make([][]float64, 32)
	y := make([]float64, 32)
	for i := range X {
		X[i] = []float64{float64(i % 5), float64(i % 3), float64(i-16) / 10, float64(i%12-6) / 4}
		y[i] = 5
	}
	loss := func(m *service.MLP) float64 {
		var sum float64
		for i, x := range X {
			d := m.Predict(x) - y[i]
			sum += d * d
		}
		return sum / float64(len(X))
	}

	short := service.NewMLP(service.MLPConfig{Epochs: 1, LearningRate: 0.01, Seed: 9})
	long := service.NewMLP(service.MLPConfig{Epochs: 500, LearningRate: 0.01, Seed: 9})
	require.NoError(t, short.Fit(context.Background(), X, y))
	require.NoError(t, long.Fit(context.Background(), X, y))

	assert.Less(t, loss(long), loss(short))
	assert.InDelta(t, 5.0, long.Predict(X[3]), 1.0)
	testutil.AssertFinite(t, long.Predict(X[0]), short.Predict(X[0]))

	assert.Len(t, long.Layers, 3)
	assert.Len(t, long.Layers[0].W, 64)
	assert.Len(t, long.Layers[0].W[0], 4)
	assert.Len(t, long.Layers[2].B, 1)
}

func TestMLP_Defaults(t *testing.T) {
	m := service.NewMLP(service.MLPConfig{})
	assert.Equal(t, []int{64, 32}, m.Config.Hidden)
	assert.Equal(t, 20, m.Config.Epochs)
	assert.Equal(t, 16, m.Config.BatchSize)
	assert.Equal(t, 0.001, m.Config.LearningRate)
	assert.Zero(t, m.Predict([]float64{1, 2, 3, 4}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Fit(ctx, [][]float64{{1, 2, 3, 4}}, []float64{1}), context.Canceled)
}
