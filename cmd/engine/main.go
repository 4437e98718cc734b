package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/traceai/engine/internal/config"
	"github.com/traceai/engine/internal/coordinator"
	"github.com/traceai/engine/internal/decisionlog"
	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/gate"
	"github.com/traceai/engine/internal/knowledge"
	"github.com/traceai/engine/internal/model"
	"github.com/traceai/engine/internal/synthesis"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to engine.yaml (optional)")
	eventsPath := flag.String("events", "-", "friction events JSON file, or - for stdin")
	nowStr := flag.String("now", "", "evaluation anchor time, RFC3339 (default: current time)")
	noLog := flag.Bool("no-log", false, "skip appending the decision to the decision log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	now := time.Now().UTC()
	if *nowStr != "" {
		now, err = time.Parse(time.RFC3339, *nowStr)
		if err != nil {
			log.Fatalf("parse -now: %v", err)
		}
	}

	events, err := readEvents(*eventsPath)
	if err != nil {
		log.Fatalf("read events: %v", err)
	}

	c, err := buildCoordinator(cfg)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	if !*noLog {
		dlog, err := decisionlog.NewStore(cfg.Storage.DecisionLogPath)
		if err != nil {
			log.Fatalf("open decision log: %v", err)
		}
		defer dlog.Close()
		c.SetSaveHook(dlog.SaveHook(cfg.Coordinator))
	}

	decision, err := c.Evaluate(context.Background(), events, now)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		log.Fatalf("marshal decision: %v", err)
	}
	fmt.Println(string(out))
}

// #endregion main

// #region wiring

// buildCoordinator assembles the full evaluation pipeline from configuration.
// Without an Anthropic API key the synthesizer runs on its deterministic
// fallback templates.
func buildCoordinator(cfg *config.Config) (*coordinator.Coordinator, error) {
	models := model.LoadAll(cfg.Storage.ArtifactDir)

	retriever, err := knowledge.NewRetriever(context.Background(), knowledge.NewLocalEmbedder(), cfg.Knowledge)
	if err != nil {
		return nil, fmt.Errorf("build retriever: %w", err)
	}

	var generator synthesis.Generator
	if cfg.Anthropic.APIKey != "" || os.Getenv("ANTHROPIC_API_KEY") != "" {
		generator = synthesis.NewAnthropicGenerator(cfg.Anthropic)
	} else {
		log.Println("[ENGINE] no Anthropic API key, using deterministic synthesis")
	}

	return coordinator.New(
		cfg.Coordinator,
		feature.NewExtractor(cfg.Feature),
		models,
		retriever,
		synthesis.NewSynthesizer(generator, cfg.Synthesis),
		gate.NewEthicsGate(cfg.Gate),
	)
}

func readEvents(path string) ([]event.FrictionEvent, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var events []event.FrictionEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}
	return events, nil
}

// #endregion wiring
