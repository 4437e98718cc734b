package model

import (
	"errors"
	"time"

	"github.com/traceai/engine/internal/event"
)

// #region errors

// ErrModelNotLoaded indicates a predict call before parameters were loaded.
// The coordinator excludes the domain and renormalizes weights; it never
// aborts the whole evaluation for this.
var ErrModelNotLoaded = errors.New("model parameters not loaded")

// #endregion errors

// #region parameters

// Normalization holds per-feature standardization parameters. Fitted by the
// trainer together with the weights; the pair is one atomic unit.
type Normalization struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Parameters is a fitted logistic classifier for one domain. Immutable during
// serving; replaced wholesale on retrain.
type Parameters struct {
	Domain        event.Domain  `json:"domain"`
	Weights       []float64     `json:"weights"`
	Bias          float64       `json:"bias"`
	Normalization Normalization `json:"normalization"`
	TrainedOn     int           `json:"trained_on"`
	TrainedAt     time.Time     `json:"trained_at"`
}

// #endregion parameters

// #region prediction

// Prediction is the output of a single model invocation.
type Prediction struct {
	// Risk is the calibrated probability in [0,1].
	Risk float64
	// Confidence reflects distance from the decision boundary, not accuracy.
	Confidence float64
}

// #endregion prediction
