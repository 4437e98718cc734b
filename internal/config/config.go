package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/traceai/engine/internal/coordinator"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/gate"
	"github.com/traceai/engine/internal/knowledge"
	"github.com/traceai/engine/internal/synthesis"
	"github.com/traceai/engine/internal/trainer"
)

// #region types

// Config is the full engine configuration. Every policy constant lives here
// so a calibration change never requires a rebuild.
type Config struct {
	Coordinator coordinator.Config        `koanf:"coordinator"`
	Feature     feature.ExtractorConfig   `koanf:"feature"`
	Gate        gate.Config               `koanf:"gate"`
	Synthesis   synthesis.Config          `koanf:"synthesis"`
	Anthropic   synthesis.AnthropicConfig `koanf:"anthropic"`
	Knowledge   knowledge.RetrieverConfig `koanf:"knowledge"`
	Trainer     trainer.Config            `koanf:"trainer"`
	Storage     StorageConfig             `koanf:"storage"`
}

// StorageConfig names the on-disk locations the engine reads and writes.
type StorageConfig struct {
	ArtifactDir     string `koanf:"artifact_dir"`     // trained model parameters
	SampleDBPath    string `koanf:"sample_db_path"`   // labeled training data
	DecisionLogPath string `koanf:"decision_log_path"`
}

// Defaults returns the production configuration baseline.
func Defaults() Config {
	return Config{
		Coordinator: coordinator.DefaultConfig(),
		Feature:     feature.DefaultExtractorConfig(),
		Gate:        gate.DefaultConfig(),
		Synthesis:   synthesis.DefaultConfig(),
		Knowledge:   knowledge.DefaultRetrieverConfig(),
		Trainer:     trainer.DefaultConfig(),
		Storage: StorageConfig{
			ArtifactDir:     "artifacts",
			SampleDBPath:    "samples.db",
			DecisionLogPath: "decisions.db",
		},
	}
}

// #endregion types

// #region load

// EnvPrefix namespaces the engine's environment variables. A double
// underscore separates nesting levels: TRACE_COORDINATOR__RETRIEVE_K=5.
const EnvPrefix = "TRACE_"

// Load layers a YAML file (optional) and environment variables over the
// defaults. path may be empty to skip file loading.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run under. The
// coordinator re-checks its own policy at construction; failing here gives
// the operator one early, named error instead.
func (c *Config) Validate() error {
	if sum := c.Coordinator.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("coordinator weights sum to %.4f, want 1", sum)
	}
	t := c.Coordinator.Thresholds
	if t.Escalate < t.SoftOutreach || t.SoftOutreach < t.Watch {
		return fmt.Errorf("coordinator thresholds out of order: %.2f/%.2f/%.2f",
			t.Escalate, t.SoftOutreach, t.Watch)
	}
	if c.Gate.MinEvents < 1 {
		return fmt.Errorf("gate min_events %d, want >= 1", c.Gate.MinEvents)
	}
	if c.Synthesis.LowBandMax <= 0 || c.Synthesis.HighBandMin <= c.Synthesis.LowBandMax {
		return fmt.Errorf("synthesis severity bands out of order: %.2f/%.2f",
			c.Synthesis.LowBandMax, c.Synthesis.HighBandMin)
	}
	if c.Storage.ArtifactDir == "" {
		return fmt.Errorf("storage artifact_dir is required")
	}
	return nil
}

// #endregion load
