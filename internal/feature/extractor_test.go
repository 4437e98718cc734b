package feature

import (
	"math"
	"testing"
	"time"

	"github.com/traceai/engine/internal/event"
)

func makeEvent(t event.Type, d event.Domain, severity float64, age time.Duration, now time.Time) event.FrictionEvent {
	return event.FrictionEvent{
		EventType: t,
		Domain:    d,
		Severity:  severity,
		Timestamp: now.Add(-age),
	}
}

func TestExtractEmptyDomainYieldsSentinel(t *testing.T) {
	x := NewExtractor(DefaultExtractorConfig())
	now := time.Now()

	v := x.Extract(nil, event.DomainFinancial, now)

	if v[IdxEventCount] != 0 || v[IdxAvgSeverity] != 0 || v[IdxMaxSeverity] != 0 || v[IdxSeverityStd] != 0 {
		t.Fatalf("expected zero severity features, got %v", v)
	}
	// Only the max-days feature carries the sentinel; the average stays 0.
	if v[IdxAvgDaysSince] != 0 {
		t.Fatalf("expected avg days-since 0 for empty domain, got %v", v[IdxAvgDaysSince])
	}
	if v[IdxMaxDaysSince] != 365 {
		t.Fatalf("expected horizon sentinel 365, got max=%v", v[IdxMaxDaysSince])
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("non-finite feature: %v", v)
		}
	}
}

func TestExtractSingleEvent(t *testing.T) {
	x := NewExtractor(DefaultExtractorConfig())
	now := time.Now()
	events := []event.FrictionEvent{
		makeEvent(event.TypeFeePayment, event.DomainFinancial, 0.9, 24*time.Hour, now),
	}

	v := x.Extract(events, event.DomainFinancial, now)

	if v[IdxEventCount] != 1 {
		t.Fatalf("expected count 1, got %v", v[IdxEventCount])
	}
	if v[IdxAvgSeverity] != 0.9 || v[IdxMaxSeverity] != 0.9 {
		t.Fatalf("expected severity 0.9, got avg=%v max=%v", v[IdxAvgSeverity], v[IdxMaxSeverity])
	}
	if v[IdxSeverityStd] != 0 {
		t.Fatalf("std of single event must be 0, got %v", v[IdxSeverityStd])
	}
	if math.Abs(v[IdxAvgDaysSince]-1) > 0.01 || math.Abs(v[IdxMaxDaysSince]-1) > 0.01 {
		t.Fatalf("expected ~1 day since, got avg=%v max=%v", v[IdxAvgDaysSince], v[IdxMaxDaysSince])
	}
}

func TestExtractPopulationStd(t *testing.T) {
	x := NewExtractor(DefaultExtractorConfig())
	now := time.Now()
	events := []event.FrictionEvent{
		makeEvent(event.TypeFeePayment, event.DomainFinancial, 0.2, time.Hour, now),
		makeEvent(event.TypeAccountHold, event.DomainFinancial, 0.8, time.Hour, now),
	}

	v := x.Extract(events, event.DomainFinancial, now)

	// Population std of {0.2, 0.8} is 0.3 (sample std would be ~0.424).
	if math.Abs(v[IdxSeverityStd]-0.3) > 1e-9 {
		t.Fatalf("expected population std 0.3, got %v", v[IdxSeverityStd])
	}
}

func TestExtractIgnoresOtherDomains(t *testing.T) {
	x := NewExtractor(DefaultExtractorConfig())
	now := time.Now()
	events := []event.FrictionEvent{
		makeEvent(event.TypeFeePayment, event.DomainFinancial, 0.9, time.Hour, now),
		makeEvent(event.TypeMessCard, event.DomainResidential, 0.4, time.Hour, now),
	}

	v := x.Extract(events, event.DomainResidential, now)

	if v[IdxEventCount] != 1 || v[IdxMaxSeverity] != 0.4 {
		t.Fatalf("residential extraction picked up foreign events: %v", v)
	}
}

func TestExtractClampsFutureTimestamps(t *testing.T) {
	x := NewExtractor(DefaultExtractorConfig())
	now := time.Now()
	events := []event.FrictionEvent{
		makeEvent(event.TypeFeePayment, event.DomainFinancial, 0.5, -48*time.Hour, now),
	}

	v := x.Extract(events, event.DomainFinancial, now)

	if v[IdxAvgDaysSince] != 0 || v[IdxMaxDaysSince] != 0 {
		t.Fatalf("future timestamps must clamp to 0 days, got avg=%v max=%v", v[IdxAvgDaysSince], v[IdxMaxDaysSince])
	}
}
