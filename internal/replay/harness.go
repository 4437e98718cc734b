package replay

import (
	"context"
	"fmt"

	"github.com/traceai/engine/internal/coordinator"
)

// #region types

// Result captures the outcome of replaying one recorded case.
type Result struct {
	CaseID string
	Passed bool
	Reason string // empty when passed
	// Decision is the replayed output, zero-valued when evaluation errored.
	Decision coordinator.Decision
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalCases int
	Passed     int
	Failed     int
}

// #endregion types

// #region replay

// Replay runs every fixture case through the coordinator and checks each
// decision against its recorded expectation. The coordinator must be built
// without a live generator so the replay is deterministic.
func Replay(ctx context.Context, c *coordinator.Coordinator, f *Fixture) []Result {
	results := make([]Result, 0, len(f.Cases))
	for _, fc := range f.Cases {
		results = append(results, replayCase(ctx, c, f, fc))
	}
	return results
}

func replayCase(ctx context.Context, c *coordinator.Coordinator, f *Fixture, fc FixtureCase) Result {
	decision, err := c.Evaluate(ctx, fc.Events, f.EvaluatedAt)
	if err != nil {
		return Result{
			CaseID: fc.CaseID,
			Reason: fmt.Sprintf("evaluate: %v", err),
		}
	}

	r := Result{CaseID: fc.CaseID, Decision: decision}
	want := fc.Expected
	switch {
	case string(decision.Decision) != want.Decision:
		r.Reason = fmt.Sprintf("decision %s, recorded %s", decision.Decision, want.Decision)
	case decision.EthicsVeto != want.EthicsVeto:
		r.Reason = fmt.Sprintf("ethics veto %v, recorded %v", decision.EthicsVeto, want.EthicsVeto)
	case decision.FinalRisk < want.MinRisk:
		r.Reason = fmt.Sprintf("final risk %.4f below recorded minimum %.4f", decision.FinalRisk, want.MinRisk)
	case want.MaxRisk > 0 && decision.FinalRisk > want.MaxRisk:
		r.Reason = fmt.Sprintf("final risk %.4f above recorded maximum %.4f", decision.FinalRisk, want.MaxRisk)
	default:
		r.Passed = true
	}
	return r
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalCases: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay
