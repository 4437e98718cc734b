package model

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
)

// #region risk-model

// RiskModel maps a feature vector to a risk probability for one domain.
// Parameters are read through an atomic pointer so a retrain swaps them
// wholesale: concurrent predictions see either the old or the new fit.
type RiskModel struct {
	domain event.Domain
	params atomic.Pointer[Parameters]
}

// NewRiskModel creates an unloaded model for the given domain.
func NewRiskModel(domain event.Domain) *RiskModel {
	return &RiskModel{domain: domain}
}

// Domain returns the domain this model serves.
func (m *RiskModel) Domain() event.Domain {
	return m.domain
}

// Loaded reports whether parameters are available.
func (m *RiskModel) Loaded() bool {
	return m.params.Load() != nil
}

// #endregion risk-model

// #region load

// Load validates and installs a parameter set.
func (m *RiskModel) Load(p Parameters) error {
	if err := validate(p); err != nil {
		return err
	}
	if p.Domain != m.domain {
		return fmt.Errorf("parameters for %s loaded into %s model", p.Domain, m.domain)
	}
	m.params.Store(&p)
	return nil
}

func validate(p Parameters) error {
	if len(p.Weights) != feature.Size {
		return fmt.Errorf("weights length %d, want %d", len(p.Weights), feature.Size)
	}
	if len(p.Normalization.Mean) != feature.Size || len(p.Normalization.Scale) != feature.Size {
		return fmt.Errorf("normalization length mean=%d scale=%d, want %d",
			len(p.Normalization.Mean), len(p.Normalization.Scale), feature.Size)
	}
	for i, w := range p.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("non-finite weight at index %d", i)
		}
	}
	return nil
}

// #endregion load

// #region predict

// Predict standardizes the raw vector, applies the linear classifier and the
// logistic link. Returns ErrModelNotLoaded before parameters are installed.
func (m *RiskModel) Predict(features feature.Vector) (Prediction, error) {
	p := m.params.Load()
	if p == nil {
		return Prediction{}, fmt.Errorf("%s: %w", m.domain, ErrModelNotLoaded)
	}

	scaled := Standardize(features.Slice(), p.Normalization)
	logit := floats.Dot(p.Weights, scaled) + p.Bias
	risk := sigmoid(logit)

	// Confidence grows with distance from the 0.5 decision boundary.
	confidence := 2 * math.Abs(risk-0.5)

	return Prediction{
		Risk:       clamp01(risk),
		Confidence: clamp01(confidence),
	}, nil
}

// Standardize applies (x - mean) / scale per feature. A zero scale leaves the
// centered value unscaled rather than dividing by zero.
func Standardize(x []float64, n Normalization) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		centered := x[i] - n.Mean[i]
		if n.Scale[i] != 0 {
			out[i] = centered / n.Scale[i]
		} else {
			out[i] = centered
		}
	}
	return out
}

// #endregion predict

// #region helpers

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
