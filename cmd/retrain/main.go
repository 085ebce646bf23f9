// Command retrain runs the training flow once and exits non-zero on failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/logging"
	"student-grade-api/tracking"
	"student-grade-api/training"
)

func main() {
	var dataPaths string
	var export bool
	flag.StringVar(&dataPaths, "data", "", "comma separated dataset paths (overrides TRAINING_DATA_PATHS)")
	flag.BoolVar(&export, "export", false, "also write the artifact into MODEL_DIR for the api to load")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if dataPaths != "" {
		cfg.Training.DataPaths = strings.Split(dataPaths, ",")
	}
	if export {
		cfg.Training.ExportArtifact = true
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker, closeTracker, err := tracking.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open tracker", zap.Error(err))
	}

	res, err := training.NewFlow(cfg.Training, cfg.Model, cfg.Tracker.TrainingExperiment, tracker, logger).Run(ctx)
	closeTracker()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "training failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("run_id=%s rows=%d train_rmse=%.4f", res.RunID, res.Rows, res.TrainRMSE)
	if res.ArtifactPath != "" {
		fmt.Printf(" artifact=%s", res.ArtifactPath)
	}
	fmt.Println()
}
