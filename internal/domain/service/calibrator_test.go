package service_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
)

func TestCalibrate_AgainstMatchingHistory(t *testing.T) {
	c := service.NewCalibrator()
	history := []model.IncidentRecord{record("TechCorp", valueobject.IncidentHacking, 2020, 1_000_000)}

	got := c.Calibrate(1_500_000, "TechCorp", valueobject.IncidentHacking, history)

	assert.InDelta(t, 75.0, got.RiskScore, 1e-9)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
	assert.Equal(t, 1, got.Matches)
}

func TestCalibrate_AverageMapsToFifty(t *testing.T) {
	c := service.NewCalibrator()
	history := []model.IncidentRecord{
		record("Global TechCorp", valueobject.IncidentHacking, 2020, 100),
		record("techcorp labs", valueobject.IncidentHacking, 2021, 300),
		record("TechCorp", valueobject.IncidentPhishing, 2021, 1),
		record("BankSecure", valueobject.IncidentHacking, 2021, 1),
	}

	got := c.Calibrate(200, "TECHCORP", valueobject.IncidentHacking, history)

	assert.InDelta(t, 50.0, got.RiskScore, 1e-9)
	assert.Equal(t, 2, got.Matches)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestCalibrate_AbsoluteFallback(t *testing.T) {
	c := service.NewCalibrator()

	tests := []struct {
		name      string
		predicted float64
		want      float64
	}{
		{"two million saturates", 2_000_000, 100},
		{"one million is the maximum", 1_000_000, 100},
		{"half a million", 500_000, 50},
		{"zero", 0, 0},
		{"negative clamps to zero", -10, 0},
		{"NaN clamps to zero", math.NaN(), 0},
		{"infinity saturates", math.Inf(1), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Calibrate(tt.predicted, "Nobody", valueobject.IncidentHacking, nil)
			assert.InDelta(t, tt.want, got.RiskScore, 1e-9)
			assert.InDelta(t, 0.5, got.Confidence, 1e-9)
			assert.Zero(t, got.Matches)
		})
	}
}

func TestCalibrate_ZeroTypeMatchesNothing(t *testing.T) {
	history := []model.IncidentRecord{record("TechCorp", valueobject.IncidentOther, 2020, 10)}
	got := service.NewCalibrator().Calibrate(10, "TechCorp", valueobject.IncidentType{}, history)
	assert.Zero(t, got.Matches)
}

func TestCalibrate_Bounds(t *testing.T) {
	c := service.NewCalibrator()
	rng := rand.New(rand.NewPCG(7, 7))

	for i := 0; i < 500; i++ {
		n := rng.IntN(20)
		history := make([]model.IncidentRecord, n)
		for j := range history {
			history[j] = record("Org", valueobject.IncidentMalware, 2020, 1+rng.Int64N(10_000_000))
		}
		predicted := math.Pow(10, rng.Float64()*10) - 1

		got := c.Calibrate(predicted, "org", valueobject.IncidentMalware, history)
		assert.GreaterOrEqual(t, got.RiskScore, 0.0)
		assert.LessOrEqual(t, got.RiskScore, 100.0)
		assert.GreaterOrEqual(t, got.Confidence, 0.0)
		assert.LessOrEqual(t, got.Confidence, model.MaxConfidence)
	}
}

func TestConfidenceFor_MonotonicAndCapped(t *testing.T) {
	prev := -1.0
	for n := 0; n <= 20; n++ {
		c := service.ConfidenceFor(n)
		assert.GreaterOrEqual(t, c, prev, "matches=%d", n)
		assert.LessOrEqual(t, c, 0.95)
		prev = c
	}
	assert.InDelta(t, 0.5, service.ConfidenceFor(0), 1e-12)
	assert.InDelta(t, 0.9, service.ConfidenceFor(4), 1e-12)
	assert.Equal(t, 0.95, service.ConfidenceFor(5))
	assert.Equal(t, 0.95, service.ConfidenceFor(100))
}

func TestRecommend(t *testing.T) {
	r := service.NewRecommender()

	high := []string{
		"Implement immediate security audit",
		"Upgrade authentication systems",
		"Deploy advanced threat detection",
		"Conduct employee security training",
	}
	assert.Equal(t, append(high, "Deploy email security solutions"), r.Recommend(85, valueobject.IncidentPhishing))

	tests := []struct {
		name  string
		score float64
		typ   valueobject.IncidentType
		first string
		last  string
		count int
	}{
		{"high hacking", 71, valueobject.IncidentHacking, high[0], "Implement network segmentation", 5},
		{"medium malware", 70, valueobject.IncidentMalware, "Review security protocols", "Install advanced antivirus software", 5},
		{"medium insider", 40.5, valueobject.IncidentInsider, "Review security protocols", "Implement access controls and monitoring", 5},
		{"baseline physical", 40, valueobject.IncidentPhysical, "Maintain current security measures", "Enhance physical security measures", 5},
		{"unmapped social engineering", 90, valueobject.IncidentSocialEngineering, high[0], high[3], 4},
		{"unmapped other", 10, valueobject.IncidentOther, "Maintain current security measures", "Periodic security reviews", 4},
		{"unknown type", 50, valueobject.IncidentType{}, "Review security protocols", "Employee awareness training", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Recommend(tt.score, tt.typ)
			assert.Len(t, got, tt.count)
			assert.Equal(t, tt.first, got[0])
			assert.Equal(t, tt.last, got[len(got)-1])
		})
	}
}

func TestRecommend_ReturnsFreshSlices(t *testing.T) {
	r := service.NewRecommender()
	first := r.Recommend(90, valueobject.IncidentOther)
	first[0] = "mutated"
	assert.Equal(t, "Implement immediate security audit", r.Recommend(90, valueobject.IncidentOther)[0])
}
