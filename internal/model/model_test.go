package model

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
)

func testParams(d event.Domain) Parameters {
	return Parameters{
		Domain:  d,
		Weights: []float64{0.8, 1.2, 0.9, 0.1, -0.4, -0.2},
		Bias:    -0.5,
		Normalization: Normalization{
			Mean:  []float64{2, 0.4, 0.5, 0.1, 30, 60},
			Scale: []float64{1.5, 0.2, 0.25, 0.1, 20, 40},
		},
		TrainedOn: 40,
	}
}

func TestPredictBeforeLoadFails(t *testing.T) {
	m := NewRiskModel(event.DomainFinancial)
	_, err := m.Predict(feature.Vector{})
	if !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("expected ErrModelNotLoaded, got %v", err)
	}
}

func TestPredictProducesProbability(t *testing.T) {
	m := NewRiskModel(event.DomainFinancial)
	if err := m.Load(testParams(event.DomainFinancial)); err != nil {
		t.Fatalf("load: %v", err)
	}

	inputs := []feature.Vector{
		{},
		{1, 0.9, 0.9, 0, 1, 1},
		{10, 1, 1, 0.5, 0, 0},
		{3, 0.5, 0.8, 0.2, 15, 40},
	}
	for _, v := range inputs {
		pred, err := m.Predict(v)
		if err != nil {
			t.Fatalf("predict %v: %v", v, err)
		}
		if pred.Risk < 0 || pred.Risk > 1 {
			t.Fatalf("risk %v outside [0,1] for %v", pred.Risk, v)
		}
		if pred.Confidence < 0 || pred.Confidence > 1 {
			t.Fatalf("confidence %v outside [0,1] for %v", pred.Confidence, v)
		}
	}
}

func TestPredictHigherSeverityRaisesRisk(t *testing.T) {
	m := NewRiskModel(event.DomainFinancial)
	if err := m.Load(testParams(event.DomainFinancial)); err != nil {
		t.Fatalf("load: %v", err)
	}

	low, _ := m.Predict(feature.Vector{1, 0.1, 0.1, 0, 5, 5})
	high, _ := m.Predict(feature.Vector{1, 0.9, 0.9, 0, 5, 5})
	if high.Risk <= low.Risk {
		t.Fatalf("expected higher severity to raise risk: low=%v high=%v", low.Risk, high.Risk)
	}
}

func TestConfidenceGrowsAwayFromBoundary(t *testing.T) {
	m := NewRiskModel(event.DomainFinancial)
	if err := m.Load(testParams(event.DomainFinancial)); err != nil {
		t.Fatalf("load: %v", err)
	}

	ambiguous, _ := m.Predict(feature.Vector{2, 0.4, 0.5, 0.1, 30, 60}) // at the normalization mean
	extreme, _ := m.Predict(feature.Vector{10, 1, 1, 0, 0, 0})
	if extreme.Confidence <= ambiguous.Confidence {
		t.Fatalf("expected extreme input to be more confident: ambiguous=%v extreme=%v",
			ambiguous.Confidence, extreme.Confidence)
	}
}

func TestLoadRejectsWrongDomain(t *testing.T) {
	m := NewRiskModel(event.DomainAcademic)
	err := m.Load(testParams(event.DomainFinancial))
	if err == nil {
		t.Fatal("expected domain mismatch error")
	}
}

func TestLoadRejectsBadShape(t *testing.T) {
	m := NewRiskModel(event.DomainFinancial)
	p := testParams(event.DomainFinancial)
	p.Weights = p.Weights[:3]
	if err := m.Load(p); err == nil {
		t.Fatal("expected shape error")
	}

	p = testParams(event.DomainFinancial)
	p.Weights[2] = math.NaN()
	if err := m.Load(p); err == nil {
		t.Fatal("expected non-finite weight error")
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := testParams(event.DomainResidential)

	if err := SaveArtifact(dir, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadArtifact(dir, event.DomainResidential)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Bias != p.Bias || loaded.TrainedOn != p.TrainedOn {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, p)
	}
	for i := range p.Weights {
		if loaded.Weights[i] != p.Weights[i] {
			t.Fatalf("weight %d mismatch", i)
		}
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := SaveArtifact(dir, testParams(event.DomainLanguage)); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestLoadArtifactRejectsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := ArtifactPath(dir, event.DomainFinancial)
	if err := os.WriteFile(path, []byte(`{"domain":"financial","weights":[1,2]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadArtifact(dir, event.DomainFinancial); err == nil {
		t.Fatal("expected corrupt artifact error")
	}
}

func TestLoadAllHandlesMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	if err := SaveArtifact(dir, testParams(event.DomainFinancial)); err != nil {
		t.Fatalf("save: %v", err)
	}

	models := LoadAll(dir)
	if len(models) != 4 {
		t.Fatalf("expected 4 models, got %d", len(models))
	}
	if !models[event.DomainFinancial].Loaded() {
		t.Fatal("financial model should be loaded")
	}
	if models[event.DomainAcademic].Loaded() {
		t.Fatal("academic model should be unloaded")
	}
}
