package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/traceai/engine/internal/config"
	"github.com/traceai/engine/internal/decisionlog"
	"github.com/traceai/engine/internal/event"
	"github.com/traceai/engine/internal/model"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to engine.yaml (optional)")
	showLog := flag.Int("decisions", 0, "print the N most recent decision log entries")
	decisionID := flag.String("decision", "", "print one decision log entry by ID")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *decisionID != "" || *showLog > 0 {
		inspectDecisions(cfg, *decisionID, *showLog)
		return
	}
	inspectArtifacts(cfg)
}

// #endregion main

// #region artifacts

func inspectArtifacts(cfg *config.Config) {
	fmt.Printf("model artifacts in %s:\n\n", cfg.Storage.ArtifactDir)
	for _, d := range event.Domains {
		params, err := model.LoadArtifact(cfg.Storage.ArtifactDir, d)
		if err != nil {
			fmt.Printf("%-12s (not loaded: %v)\n", d, err)
			continue
		}
		fmt.Printf("%-12s trained %s on %d samples, bias %+.4f\n",
			d, params.TrainedAt.Format("2006-01-02 15:04"), params.TrainedOn, params.Bias)
		fmt.Printf("             weights %v\n", params.Weights)
	}
}

// #endregion artifacts

// #region decisions

func inspectDecisions(cfg *config.Config, id string, n int) {
	store, err := decisionlog.NewStore(cfg.Storage.DecisionLogPath)
	if err != nil {
		log.Fatalf("open decision log: %v", err)
	}
	defer store.Close()

	if id != "" {
		entry, err := store.Get(id)
		if err != nil {
			log.Fatalf("get decision: %v", err)
		}
		printEntry(entry, true)
		return
	}

	entries, err := store.List(n)
	if err != nil {
		log.Fatalf("list decisions: %v", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "decision log is empty")
		return
	}
	for _, entry := range entries {
		printEntry(entry, false)
	}
}

func printEntry(e decisionlog.Entry, full bool) {
	veto := ""
	if e.Decision.EthicsVeto {
		veto = " [veto]"
	}
	fmt.Printf("%s  %s  risk %.4f  %s%s\n",
		e.CreatedAt.Format("2006-01-02 15:04:05"), e.ID, e.Decision.FinalRisk, e.Decision.Decision, veto)
	if !full {
		return
	}
	fmt.Printf("\n  headline:  %s\n", e.Decision.Headline)
	fmt.Printf("  distance:  %.4f\n", e.Decision.DistanceToIrreversibility)
	fmt.Printf("  policy:    thresholds %.2f/%.2f/%.2f\n",
		e.Thresholds.Escalate, e.Thresholds.SoftOutreach, e.Thresholds.Watch)
	for _, out := range e.Decision.AgentOutputs {
		fmt.Printf("  %-12s risk %.4f  confidence %.4f\n", out.Agent, out.Risk, out.Confidence)
		fmt.Printf("               %s\n", out.Reasoning)
	}
	for _, reason := range e.Decision.VetoReasons {
		fmt.Printf("  veto:      %s\n", reason)
	}
	fmt.Printf("\n  %s\n", e.Decision.Justification)
}

// #endregion decisions
