package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"student-grade-api/config"
	"student-grade-api/handlers"
	"student-grade-api/jobs"
	"student-grade-api/logging"
	"student-grade-api/services"
	"student-grade-api/tracking"
	"student-grade-api/training"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	models := services.LoadModelService(cfg.Model, logger)

	tracker, closeTracker, err := tracking.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTracker()

	bus, err := services.NewEventBus(cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, events disabled", zap.Error(err))
	}
	defer bus.Close()

	store, err := openJobStore(cfg)
	if err != nil {
		return err
	}

	flow := training.NewFlow(cfg.Training, cfg.Model, cfg.Tracker.TrainingExperiment, tracker, logger.Named("training"))
	runner := jobs.NewRunner(store, flow, bus, services.JobsChannel, logger.Named("jobs"))

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Logger:    logger,
		Models:    models,
		Predictor: services.NewPredictionService(models, tracker, bus, cfg.Tracker.InferenceExperiment, logger),
		Runner:    runner,
		Jobs:      store,
		Bus:       bus,
		Auth:      services.NewAuthService(cfg.JWT),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("addr", server.Addr),
			zap.Bool("model_loaded", models.Loaded()),
			zap.String("model_version", models.Version()),
			zap.String("model_path", models.Path()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	done := make(chan struct{})
	go func() {
		runner.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("retrain jobs still running at exit")
	}
	return nil
}

func openJobStore(cfg *config.Config) (jobs.Store, error) {
	if cfg.Jobs.Store != "postgres" {
		return jobs.NewMemoryStore(), nil
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect job store: %w", err)
	}
	return jobs.NewGormStore(db)
}
