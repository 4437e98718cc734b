package trainer

import (
	"testing"
	"time"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
)

// #region tests

func TestBuildSamplesOnePerDomain(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2026-05-01T10:00:00Z")
	students := []LabeledStudent{
		{
			StudentID: "s1",
			Label:     true,
			Events: []event.FrictionEvent{
				{EventType: event.TypeFeePayment, Severity: 0.8, Timestamp: now.Add(-24 * time.Hour)},
			},
		},
		{StudentID: "s2", Label: false},
	}

	x := feature.NewExtractor(feature.DefaultExtractorConfig())
	samples := BuildSamples(students, x, now)
	if len(samples) != 2*len(event.Domains) {
		t.Fatalf("got %d samples, want %d", len(samples), 2*len(event.Domains))
	}

	// The first student's financial sample carries the event count; every
	// other domain holds the no-signal sentinel.
	var financial, academic *Sample
	for i := range samples[:len(event.Domains)] {
		switch samples[i].Domain {
		case event.DomainFinancial:
			financial = &samples[i]
		case event.DomainAcademic:
			academic = &samples[i]
		}
	}
	if financial == nil || academic == nil {
		t.Fatal("missing domain samples")
	}
	if financial.Features[feature.IdxEventCount] != 1 {
		t.Fatalf("financial event count = %.0f, want 1", financial.Features[feature.IdxEventCount])
	}
	if academic.Features[feature.IdxMaxDaysSince] != feature.DefaultExtractorConfig().MaxHorizonDays {
		t.Fatalf("academic days-since = %.0f, want sentinel", academic.Features[feature.IdxMaxDaysSince])
	}
	if !financial.Label {
		t.Fatal("label lost")
	}
}

func TestSplitIsDeterministicAndDisjoint(t *testing.T) {
	samples := make([]Sample, 20)
	for i := range samples {
		samples[i].Features[feature.IdxEventCount] = float64(i)
	}

	train1, hold1 := Split(samples, 0.2, 42)
	train2, hold2 := Split(samples, 0.2, 42)
	if len(hold1) != 4 || len(train1) != 16 {
		t.Fatalf("split sizes = %d/%d", len(train1), len(hold1))
	}
	for i := range hold1 {
		if hold1[i] != hold2[i] {
			t.Fatal("holdout differs between identical seeds")
		}
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatal("train set differs between identical seeds")
		}
	}

	// Every original sample lands in exactly one side.
	seen := make(map[float64]int)
	for _, s := range train1 {
		seen[s.Features[feature.IdxEventCount]]++
	}
	for _, s := range hold1 {
		seen[s.Features[feature.IdxEventCount]]++
	}
	if len(seen) != 20 {
		t.Fatalf("saw %d distinct samples, want 20", len(seen))
	}
}

func TestSplitAlwaysHoldsOutSomething(t *testing.T) {
	samples := make([]Sample, 3)
	_, hold := Split(samples, 0.05, 1)
	if len(hold) == 0 {
		t.Fatal("empty holdout despite multiple samples")
	}
}

// #endregion tests
