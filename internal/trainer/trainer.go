package trainer

import (
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/model"
)

// #region trainer

// Trainer fits per-domain logistic classifiers from labeled samples.
type Trainer struct {
	config Config
}

// NewTrainer creates a trainer with the given hyperparameters.
func NewTrainer(config Config) *Trainer {
	return &Trainer{config: config}
}

// #endregion trainer

// #region train

// Train fits one domain's classifier. Returns ErrInsufficientData below the
// configured minimum so a degenerate fit can never be persisted.
func (t *Trainer) Train(domain event.Domain, samples []Sample) (model.Parameters, error) {
	var xs [][]float64
	var ys []float64
	for _, s := range samples {
		if s.Domain != domain {
			continue
		}
		xs = append(xs, s.Features.Slice())
		y := 0.0
		if s.Label {
			y = 1.0
		}
		ys = append(ys, y)
	}

	if len(xs) < t.config.MinSamples {
		return model.Parameters{}, fmt.Errorf("%s: %d samples, need %d: %w",
			domain, len(xs), t.config.MinSamples, ErrInsufficientData)
	}

	norm := fitNormalization(xs)
	scaled := make([][]float64, len(xs))
	for i, x := range xs {
		scaled[i] = model.Standardize(x, norm)
	}

	weights, bias := t.fitLogistic(scaled, ys)

	log.Printf("[TRAIN] %s: fitted on %d samples (positives=%d)",
		domain, len(xs), countPositives(ys))

	return model.Parameters{
		Domain:        domain,
		Weights:       weights,
		Bias:          bias,
		Normalization: norm,
		TrainedOn:     len(xs),
		TrainedAt:     time.Now().UTC(),
	}, nil
}

// TrainAll fits every domain that has enough samples and persists each fit
// atomically under artifactDir. Domains below the minimum are reported and
// skipped; the error is returned only if no domain could be fitted.
func (t *Trainer) TrainAll(samples []Sample, artifactDir string) (map[event.Domain]model.Parameters, error) {
	fitted := make(map[event.Domain]model.Parameters)
	for _, d := range event.Domains {
		params, err := t.Train(d, samples)
		if err != nil {
			log.Printf("[TRAIN] %s skipped: %v", d, err)
			continue
		}
		if err := model.SaveArtifact(artifactDir, params); err != nil {
			return fitted, fmt.Errorf("persist %s: %w", d, err)
		}
		fitted[d] = params
	}
	if len(fitted) == 0 {
		return nil, fmt.Errorf("no domain reached %d samples: %w", t.config.MinSamples, ErrInsufficientData)
	}
	return fitted, nil
}

// #endregion train

// #region fit-logistic

// fitLogistic runs batch gradient descent on the cross-entropy loss with an
// L2 penalty on the weights.
func (t *Trainer) fitLogistic(xs [][]float64, ys []float64) ([]float64, float64) {
	n := float64(len(xs))
	weights := make([]float64, feature.Size)
	bias := 0.0

	grad := make([]float64, feature.Size)
	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		gradBias := 0.0

		for i, x := range xs {
			p := sigmoid(floats.Dot(weights, x) + bias)
			residual := p - ys[i]
			floats.AddScaled(grad, residual, x)
			gradBias += residual
		}

		floats.Scale(1/n, grad)
		floats.AddScaled(grad, t.config.L2Penalty, weights)
		gradBias /= n

		floats.AddScaled(weights, -t.config.LearningRate, grad)
		bias -= t.config.LearningRate * gradBias
	}

	return weights, bias
}

// #endregion fit-logistic

// #region normalization

// fitNormalization computes per-feature mean and population scale.
func fitNormalization(xs [][]float64) model.Normalization {
	mean := make([]float64, feature.Size)
	scale := make([]float64, feature.Size)
	col := make([]float64, len(xs))

	for j := 0; j < feature.Size; j++ {
		for i, x := range xs {
			col[i] = x[j]
		}
		mean[j] = stat.Mean(col, nil)
		scale[j] = stat.PopStdDev(col, nil)
	}
	return model.Normalization{Mean: mean, Scale: scale}
}

// #endregion normalization

// #region helpers

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func countPositives(ys []float64) int {
	n := 0
	for _, y := range ys {
		if y == 1 {
			n++
		}
	}
	return n
}

// #endregion helpers
