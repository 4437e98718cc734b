package trainer

import (
	"errors"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
)

// #region errors

// ErrInsufficientData is raised when a domain has fewer labeled samples than
// the configured minimum. Fatal to that training run; never produced by the
// serving path.
var ErrInsufficientData = errors.New("insufficient labeled samples")

// #endregion errors

// #region sample

// Sample is one labeled training example for one domain.
type Sample struct {
	Features feature.Vector
	Domain   event.Domain
	Label    bool // true = needed intervention
}

// #endregion sample

// #region config

// Config holds the fitting hyperparameters.
type Config struct {
	MinSamples   int     `koanf:"min_samples"` // refuse to fit below this count per domain
	L2Penalty    float64 `koanf:"l2_penalty"`  // ridge strength on the weights (not the bias)
	LearningRate float64 `koanf:"learning_rate"`
	Epochs       int     `koanf:"epochs"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinSamples:   10,
		L2Penalty:    0.01,
		LearningRate: 0.1,
		Epochs:       500,
	}
}

// #endregion config

// #region metrics

// HoldoutMetrics summarizes classifier quality on a held-out set.
type HoldoutMetrics struct {
	Domain    event.Domain
	Samples   int
	Accuracy  float64
	Precision float64
	Recall    float64
}

// #endregion metrics
