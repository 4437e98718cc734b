package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/traceai/engine/internal/config"
	"github.com/traceai/engine/internal/feature"
	"github.com/traceai/engine/internal/model"
	"github.com/traceai/engine/internal/trainer"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to engine.yaml (optional)")
	holdoutFrac := flag.Float64("holdout", 0.2, "fraction of samples held out for evaluation")
	seed := flag.Int64("seed", 17, "shuffle seed for the train/holdout split")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := trainer.OpenSampleStore(cfg.Storage.SampleDBPath)
	if err != nil {
		log.Fatalf("open sample store: %v", err)
	}
	defer store.Close()

	students, err := store.LoadAll()
	if err != nil {
		log.Fatalf("load labeled students: %v", err)
	}
	if len(students) == 0 {
		fmt.Fprintln(os.Stderr, "no labeled students in", cfg.Storage.SampleDBPath)
		os.Exit(2)
	}
	log.Printf("[TRAIN] loaded %d labeled students", len(students))

	extractor := feature.NewExtractor(cfg.Feature)
	samples := trainer.BuildSamples(students, extractor, time.Now().UTC())
	train, holdout := trainer.Split(samples, *holdoutFrac, *seed)

	tr := trainer.NewTrainer(cfg.Trainer)
	fitted, err := tr.TrainAll(train, cfg.Storage.ArtifactDir)
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	log.Printf("[TRAIN] fitted %d domain models into %s", len(fitted), cfg.Storage.ArtifactDir)

	// Reload from disk so the report covers exactly what serving will see.
	models := model.LoadAll(cfg.Storage.ArtifactDir)
	metrics := trainer.EvaluateAll(models, holdout)

	fmt.Println("domain       samples  accuracy  precision  recall")
	for _, m := range metrics {
		fmt.Printf("%-12s %7d  %8.3f  %9.3f  %6.3f\n",
			m.Domain, m.Samples, m.Accuracy, m.Precision, m.Recall)
	}
}

// #endregion main
