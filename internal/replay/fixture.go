package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/traceai/engine/internal/event"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a set of
// recorded evaluations with the decisions they are expected to reproduce.
type Fixture struct {
	Description string `json:"description"`
	// EvaluatedAt anchors recency computations so the fixture keeps passing
	// as wall-clock time moves on.
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded evaluation.
type FixtureCase struct {
	CaseID      string                `json:"case_id"`
	Description string                `json:"description,omitempty"`
	Events      []event.FrictionEvent `json:"events"`
	Expected    ExpectedDecision      `json:"expected"`
}

// ExpectedDecision is the recorded outcome a replayed case must match.
// MinRisk/MaxRisk bound the aggregate risk; a zero MaxRisk means unbounded.
type ExpectedDecision struct {
	Decision   string  `json:"decision"`
	EthicsVeto bool    `json:"ethics_veto"`
	MinRisk    float64 `json:"min_risk"`
	MaxRisk    float64 `json:"max_risk,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	if f.EvaluatedAt.IsZero() {
		return fmt.Errorf("missing evaluated_at")
	}
	if len(f.Cases) == 0 {
		return fmt.Errorf("no cases")
	}
	seen := make(map[string]bool, len(f.Cases))
	for i, c := range f.Cases {
		if c.CaseID == "" {
			return fmt.Errorf("case %d has no case_id", i)
		}
		if seen[c.CaseID] {
			return fmt.Errorf("duplicate case_id %s", c.CaseID)
		}
		seen[c.CaseID] = true
		if c.Expected.Decision == "" {
			return fmt.Errorf("case %s has no expected decision", c.CaseID)
		}
	}
	return nil
}

// #endregion fixture-loader
