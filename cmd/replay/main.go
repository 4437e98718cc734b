package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/traceai/engine/internal/config"
	"github.com/traceai/engine/internal/coordinator"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/gate"
	"github.com/traceai/engine/internal/knowledge"
	"github.com/traceai/engine/internal/model"
	"github.com/traceai/engine/internal/replay"
	"github.com/traceai/engine/internal/synthesis"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to engine.yaml (optional)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("load fixture: %v", err)
	}

	retriever, err := knowledge.NewRetriever(context.Background(), knowledge.NewLocalEmbedder(), cfg.Knowledge)
	if err != nil {
		log.Fatalf("build retriever: %v", err)
	}

	// Replay always runs on the deterministic synthesis path; a live
	// generator would make recorded justifications unreproducible.
	c, err := coordinator.New(
		cfg.Coordinator,
		feature.NewExtractor(cfg.Feature),
		model.LoadAll(cfg.Storage.ArtifactDir),
		retriever,
		synthesis.NewSynthesizer(nil, cfg.Synthesis),
		gate.NewEthicsGate(cfg.Gate),
	)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	results := replay.Replay(context.Background(), c, fixture)

	fmt.Printf("replaying %q: %d cases\n\n", fixture.Description, len(results))
	fmt.Println("case                      status  decision           risk")
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Printf("%-25s %-7s %-18s %.4f\n", r.CaseID, status, r.Decision.Decision, r.Decision.FinalRisk)
		if !r.Passed {
			fmt.Printf("  %s\n", r.Reason)
		}
	}

	s := replay.Summarize(results)
	fmt.Printf("\n%d/%d cases passed\n", s.Passed, s.TotalCases)
	if s.Failed > 0 {
		os.Exit(1)
	}
}

// #endregion main
