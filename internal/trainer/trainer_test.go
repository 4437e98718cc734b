package trainer

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/model"
)

// separableSamples builds a linearly separable set: high severity and count
// for positives, low for negatives.
func separableSamples(d event.Domain, n int, rng *rand.Rand) []Sample {
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		positive := i%2 == 0
		var v feature.Vector
		if positive {
			v = feature.Vector{
				4 + rng.Float64()*3,
				0.7 + rng.Float64()*0.3,
				0.8 + rng.Float64()*0.2,
				0.05 + rng.Float64()*0.1,
				2 + rng.Float64()*5,
				5 + rng.Float64()*10,
			}
		} else {
			v = feature.Vector{
				rng.Float64() * 2,
				rng.Float64() * 0.3,
				rng.Float64() * 0.4,
				rng.Float64() * 0.05,
				40 + rng.Float64()*60,
				90 + rng.Float64()*100,
			}
		}
		samples = append(samples, Sample{Features: v, Domain: d, Label: positive})
	}
	return samples
}

func TestTrainRefusesBelowMinimum(t *testing.T) {
	tr := NewTrainer(DefaultConfig())
	rng := rand.New(rand.NewSource(1))
	samples := separableSamples(event.DomainFinancial, 5, rng)

	_, err := tr.Train(event.DomainFinancial, samples)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainIgnoresForeignDomainSamples(t *testing.T) {
	tr := NewTrainer(DefaultConfig())
	rng := rand.New(rand.NewSource(2))
	samples := separableSamples(event.DomainAcademic, 40, rng)

	_, err := tr.Train(event.DomainFinancial, samples)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for empty domain, got %v", err)
	}
}

func TestTrainSeparatesClasses(t *testing.T) {
	tr := NewTrainer(DefaultConfig())
	rng := rand.New(rand.NewSource(3))
	samples := separableSamples(event.DomainFinancial, 60, rng)

	params, err := tr.Train(event.DomainFinancial, samples)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if params.TrainedOn != 60 {
		t.Fatalf("expected 60 samples recorded, got %d", params.TrainedOn)
	}

	m := model.NewRiskModel(event.DomainFinancial)
	if err := m.Load(params); err != nil {
		t.Fatalf("load: %v", err)
	}

	hot, _ := m.Predict(feature.Vector{6, 0.9, 0.95, 0.1, 3, 8})
	cold, _ := m.Predict(feature.Vector{1, 0.1, 0.2, 0.02, 80, 150})
	if hot.Risk <= 0.5 {
		t.Fatalf("expected high risk for positive-class input, got %v", hot.Risk)
	}
	if cold.Risk >= 0.5 {
		t.Fatalf("expected low risk for negative-class input, got %v", cold.Risk)
	}
}

func TestTrainAllPersistsArtifacts(t *testing.T) {
	dir := t.TempDir()
	tr := NewTrainer(DefaultConfig())
	rng := rand.New(rand.NewSource(4))

	var samples []Sample
	samples = append(samples, separableSamples(event.DomainFinancial, 30, rng)...)
	samples = append(samples, separableSamples(event.DomainAcademic, 30, rng)...)

	fitted, err := tr.TrainAll(samples, dir)
	if err != nil {
		t.Fatalf("train all: %v", err)
	}
	if len(fitted) != 2 {
		t.Fatalf("expected 2 fitted domains, got %d", len(fitted))
	}

	models := model.LoadAll(dir)
	if !models[event.DomainFinancial].Loaded() || !models[event.DomainAcademic].Loaded() {
		t.Fatal("persisted artifacts did not load")
	}
	if models[event.DomainResidential].Loaded() {
		t.Fatal("residential should have been skipped")
	}
}

func TestHoldoutMetrics(t *testing.T) {
	tr := NewTrainer(DefaultConfig())
	rng := rand.New(rand.NewSource(5))
	train := separableSamples(event.DomainLanguage, 60, rng)
	holdout := separableSamples(event.DomainLanguage, 20, rng)

	params, err := tr.Train(event.DomainLanguage, train)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	m := model.NewRiskModel(event.DomainLanguage)
	if err := m.Load(params); err != nil {
		t.Fatalf("load: %v", err)
	}

	metrics, err := Evaluate(m, holdout)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if metrics.Samples != 20 {
		t.Fatalf("expected 20 holdout samples, got %d", metrics.Samples)
	}
	if metrics.Accuracy < 0.8 {
		t.Fatalf("separable holdout accuracy too low: %v", metrics.Accuracy)
	}
}

func TestSampleStoreRoundTrip(t *testing.T) {
	store, err := OpenSampleStore(t.TempDir() + "/samples.db")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ls := LabeledStudent{
		StudentID: "s-100",
		Label:     true,
		Events: []event.FrictionEvent{
			{EventType: event.TypeScholarshipDelay, Severity: 0.8, Timestamp: fixedTime(), Description: "stipend held"},
			{EventType: event.TypeHostelAccess, Severity: 0.6, Timestamp: fixedTime()},
		},
	}
	if err := store.Record(ls); err != nil {
		t.Fatalf("record: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 student, got %d", len(loaded))
	}
	got := loaded[0]
	if got.StudentID != "s-100" || !got.Label || len(got.Events) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Events[0].Domain != event.DomainFinancial {
		t.Fatalf("domain not filled on load: %+v", got.Events[0])
	}
}

func TestSampleStoreRelabelReplaces(t *testing.T) {
	store, err := OpenSampleStore(t.TempDir() + "/samples.db")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	first := LabeledStudent{
		StudentID: "s-200",
		Label:     true,
		Events: []event.FrictionEvent{
			{EventType: event.TypeFeePayment, Severity: 0.5, Timestamp: fixedTime()},
		},
	}
	if err := store.Record(first); err != nil {
		t.Fatalf("record: %v", err)
	}

	second := first
	second.Label = false
	second.Events = append(second.Events, event.FrictionEvent{
		EventType: event.TypeFormConfusion, Severity: 0.3, Timestamp: fixedTime(),
	})
	if err := store.Record(second); err != nil {
		t.Fatalf("relabel: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Label || len(loaded[0].Events) != 2 {
		t.Fatalf("relabel did not replace: %+v", loaded)
	}
}

func fixedTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2026-05-01T10:00:00Z")
	return t
}
