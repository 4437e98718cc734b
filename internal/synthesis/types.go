package synthesis

import (
	"context"
	"time"
)

// #region generator-interface

// Generator abstracts the natural-language generation capability. The live
// implementation calls an external service; the fallback is deterministic.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// #endregion generator-interface

// #region config

// Config holds synthesis limits and the severity band boundaries used by the
// deterministic fallback. Bands are policy constants subject to calibration,
// so they live in configuration rather than code.
type Config struct {
	Timeout     time.Duration `koanf:"timeout"`       // per-call budget for the live generator
	MaxChars    int           `koanf:"max_chars"`     // explanations are truncated to this length
	LowBandMax  float64       `koanf:"low_band_max"`  // severity < this is "low"
	HighBandMin float64       `koanf:"high_band_min"` // severity >= this is "high"; between is "moderate"
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     3 * time.Second,
		MaxChars:    600,
		LowBandMax:  0.35,
		HighBandMin: 0.7,
	}
}

// #endregion config
