package trainer

import (
	"fmt"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/model"
)

// #region evaluate

// Evaluate scores a fitted model against held-out samples for its domain.
// Precision and recall are 0 when undefined (no predicted/actual positives).
func Evaluate(m *model.RiskModel, holdout []Sample) (HoldoutMetrics, error) {
	metrics := HoldoutMetrics{Domain: m.Domain()}

	var tp, fp, fn, correct int
	for _, s := range holdout {
		if s.Domain != m.Domain() {
			continue
		}
		pred, err := m.Predict(s.Features)
		if err != nil {
			return HoldoutMetrics{}, fmt.Errorf("evaluate %s: %w", m.Domain(), err)
		}
		metrics.Samples++

		predicted := pred.Risk >= 0.5
		if predicted == s.Label {
			correct++
		}
		switch {
		case predicted && s.Label:
			tp++
		case predicted && !s.Label:
			fp++
		case !predicted && s.Label:
			fn++
		}
	}

	if metrics.Samples > 0 {
		metrics.Accuracy = float64(correct) / float64(metrics.Samples)
	}
	if tp+fp > 0 {
		metrics.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		metrics.Recall = float64(tp) / float64(tp+fn)
	}
	return metrics, nil
}

// EvaluateAll scores every loaded model against the holdout set.
func EvaluateAll(models map[event.Domain]*model.RiskModel, holdout []Sample) []HoldoutMetrics {
	var out []HoldoutMetrics
	for _, d := range event.Domains {
		m, ok := models[d]
		if !ok || !m.Loaded() {
			continue
		}
		metrics, err := Evaluate(m, holdout)
		if err != nil {
			continue
		}
		out = append(out, metrics)
	}
	return out
}

// #endregion evaluate
