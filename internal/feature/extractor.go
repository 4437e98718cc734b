package feature

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/traceai/engine/internal/event"
)

// #region extractor

// Extractor converts domain-filtered events into fixed-length feature vectors.
// Pure: no side effects, no clock reads; the caller supplies now.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates an extractor with the given configuration.
func NewExtractor(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// #endregion extractor

// #region extract

// Extract computes the feature vector for one domain at the evaluation
// instant now. A domain with no events yields the all-zero vector with only
// max_days_since_event set to the max-horizon sentinel, never NaN or Inf.
func (x *Extractor) Extract(events []event.FrictionEvent, d event.Domain, now time.Time) Vector {
	matched := event.ForDomain(events, d)
	if len(matched) == 0 {
		var v Vector
		v[IdxMaxDaysSince] = x.config.MaxHorizonDays
		return v
	}

	severities := make([]float64, len(matched))
	daysSince := make([]float64, len(matched))
	maxSeverity := 0.0
	maxDays := 0.0
	for i, e := range matched {
		severities[i] = e.Severity
		if e.Severity > maxSeverity {
			maxSeverity = e.Severity
		}
		days := now.Sub(e.Timestamp).Hours() / 24
		if days < 0 {
			days = 0
		}
		daysSince[i] = days
		if days > maxDays {
			maxDays = days
		}
	}

	var severityStd float64
	if len(matched) >= 2 {
		severityStd = stat.PopStdDev(severities, nil)
	}

	var v Vector
	v[IdxEventCount] = float64(len(matched))
	v[IdxAvgSeverity] = stat.Mean(severities, nil)
	v[IdxMaxSeverity] = maxSeverity
	v[IdxSeverityStd] = severityStd
	v[IdxAvgDaysSince] = stat.Mean(daysSince, nil)
	v[IdxMaxDaysSince] = maxDays
	return v
}

// #endregion extract
