package feature

// #region vector

// Size is the number of scalars in a feature vector. The trainer and the
// serving path both depend on this order; changing it invalidates every
// persisted model artifact.
const Size = 6

// Indices into a Vector.
const (
	IdxEventCount = iota
	IdxAvgSeverity
	IdxMaxSeverity
	IdxSeverityStd
	IdxAvgDaysSince
	IdxMaxDaysSince
)

// Vector is a fixed-length numeric feature vector for one domain.
// Derived, ephemeral, recomputed on every evaluation; never persisted.
type Vector [Size]float64

// Slice returns the vector as a []float64 for matrix arithmetic.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// #endregion vector

// #region config

// ExtractorConfig holds tuning knobs for feature extraction.
type ExtractorConfig struct {
	// MaxHorizonDays is the "no recent signal" sentinel written into
	// max_days_since_event when a domain has no events.
	MaxHorizonDays float64 `koanf:"max_horizon_days"`
}

// DefaultExtractorConfig returns sensible defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxHorizonDays: 365,
	}
}

// #endregion config
