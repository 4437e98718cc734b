package decisionlog

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/traceai/engine/internal/coordinator"
	"github.com/traceai/engine/internal/event"
)

// #region helpers

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "decisions.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDecision() coordinator.Decision {
	evaluated, _ := time.Parse(time.RFC3339, "2026-06-01T12:00:00Z")
	return coordinator.Decision{
		FinalRisk:                 0.62,
		Decision:                  coordinator.SoftOutreach,
		DistanceToIrreversibility: 0.38,
		Headline:                  "Significant Friction Detected",
		Justification:             "Aggregate risk 0.62 led to SOFT_OUTREACH.",
		AgentOutputs: []coordinator.AgentOutput{
			{Agent: event.DomainFinancial, Risk: 0.8, Confidence: 0.6, Reasoning: "fee holds"},
			{Agent: event.DomainAcademic, Risk: 0.4, Confidence: 0.2, Reasoning: "stable"},
		},
		EvaluatedAt: evaluated,
	}
}

// #endregion helpers

// #region tests

func TestAppendAndGetRoundTrip(t *testing.T) {
	s := testStore(t)
	policy := coordinator.DefaultConfig()

	stored, err := s.Append(sampleDecision(), policy.Weights, policy.Thresholds)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("empty entry ID")
	}

	got, err := s.Get(stored.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if math.Abs(got.Decision.FinalRisk-0.62) > 1e-9 {
		t.Fatalf("final risk = %.4f, want 0.62", got.Decision.FinalRisk)
	}
	if got.Decision.Decision != coordinator.SoftOutreach {
		t.Fatalf("decision = %s", got.Decision.Decision)
	}
	if len(got.Decision.AgentOutputs) != 2 {
		t.Fatalf("got %d agent outputs, want 2", len(got.Decision.AgentOutputs))
	}
	if got.Decision.AgentOutputs[0].Agent != event.DomainFinancial {
		t.Fatalf("first agent = %s", got.Decision.AgentOutputs[0].Agent)
	}
	if got.Weights != policy.Weights {
		t.Fatalf("weights snapshot = %+v", got.Weights)
	}
	if got.Thresholds != policy.Thresholds {
		t.Fatalf("thresholds snapshot = %+v", got.Thresholds)
	}
	if !got.Decision.EvaluatedAt.Equal(sampleDecision().EvaluatedAt) {
		t.Fatalf("evaluated at = %s", got.Decision.EvaluatedAt)
	}
}

func TestVetoReasonsSurviveStorage(t *testing.T) {
	s := testStore(t)
	policy := coordinator.DefaultConfig()

	d := sampleDecision()
	d.Decision = coordinator.Watch
	d.EthicsVeto = true
	d.VetoReasons = []string{"newest evidence is 90 days old, beyond the 60 day window"}

	stored, err := s.Append(d, policy.Weights, policy.Thresholds)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := s.Get(stored.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Decision.EthicsVeto {
		t.Fatal("veto flag lost")
	}
	if len(got.Decision.VetoReasons) != 1 {
		t.Fatalf("veto reasons = %v", got.Decision.VetoReasons)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	policy := coordinator.DefaultConfig()

	for i := 0; i < 3; i++ {
		if _, err := s.Append(sampleDecision(), policy.Weights, policy.Thresholds); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := s.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].CreatedAt.Before(entries[1].CreatedAt) {
		t.Fatal("entries not newest first")
	}
}

func TestSaveHookAppends(t *testing.T) {
	s := testStore(t)
	policy := coordinator.DefaultConfig()

	hook := s.SaveHook(policy)
	if err := hook(sampleDecision()); err != nil {
		t.Fatalf("hook: %v", err)
	}

	entries, err := s.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}

func TestGetMissingFails(t *testing.T) {
	s := testStore(t)
	if _, err := s.Get("no-such-id"); err == nil {
		t.Fatal("expected error for missing decision")
	}
}

// #endregion tests
