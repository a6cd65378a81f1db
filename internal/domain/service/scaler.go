package service

import (
	"errors"
	"fmt"
	"math"
)

// FeatureScaler standardises numeric features with stored per-dimension
// mean and population standard deviation.
type FeatureScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
	// Degenerate marks dimensions that had zero variance at fit time. They
	// are passed through unchanged.
	Degenerate []bool `json:"degenerate"`
}

// FitFeatureScaler computes statistics over rows. Every row must have the
// same width. A dimension with a single distinct value is not an error: it
// falls back to identity scaling and is flagged in Degenerate.
func FitFeatureScaler(rows [][]float64) (*FeatureScaler, error) {
	if len(rows) == 0 {
		return nil, errors.New("scaler: no rows to fit")
	}
	dims := len(rows[0])
	if dims == 0 {
		return nil, errors.New("scaler: rows have no features")
	}

	s := &FeatureScaler{
		Mean:       make([]float64, dims),
		Std:        make([]float64, dims),
		Degenerate: make([]bool, dims),
	}
	for i, row := range rows {
		if len(row) != dims {
			return nil, fmt.Errorf("scaler: row %d has %d features, want %d", i, len(row), dims)
		}
		for d, v := range row {
			s.Mean[d] += v
		}
	}
	n := float64(len(rows))
	for d := range s.Mean {
		s.Mean[d] /= n
	}
	for _, row := range rows {
		for d, v := range row {
			diff := v - s.Mean[d]
			s.Std[d] += diff * diff
		}
	}
	for d := range s.Std {
		s.Std[d] = math.Sqrt(s.Std[d] / n)
		if s.Std[d] == 0 {
			s.Mean[d], s.Std[d], s.Degenerate[d] = 0, 1, true
		}
	}
	return s, nil
}

// Dims is the number of features the scaler was fitted on.
func (s *FeatureScaler) Dims() int {
	return len(s.Mean)
}

// HasDegenerate reports whether any dimension fell back to identity.
func (s *FeatureScaler) HasDegenerate() bool {
	for _, d := range s.Degenerate {
		if d {
			return true
		}
	}
	return false
}

// Transform scales values. It panics if the width differs from Dims.
func (s *FeatureScaler) Transform(values ...float64) []float64 {
	if len(values) != len(s.Mean) {
		panic(fmt.Sprintf("scaler: got %d features, want %d", len(values), len(s.Mean)))
	}
	out := make([]float64, len(values))
	for d, v := range values {
		out[d] = (v - s.Mean[d]) / s.Std[d]
	}
	return out
}

func (s *FeatureScaler) validate() error {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Std) || len(s.Mean) != len(s.Degenerate) {
		return errors.New("scaler statistics are incomplete")
	}
	for d, std := range s.Std {
		if std <= 0 || math.IsNaN(std) || math.IsInf(std, 0) || math.IsNaN(s.Mean[d]) {
			return fmt.Errorf("scaler dimension %d has invalid statistics", d)
		}
	}
	return nil
}
