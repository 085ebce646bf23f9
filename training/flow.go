// Package training implements the retraining flow: load both datasets, drop
// dropouts, fit the ensemble pipeline and record the run in the tracker.
package training

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/dataset"
	"student-grade-api/features"
	"student-grade-api/metrics"
	"student-grade-api/ml"
	"student-grade-api/tracking"
)

const (
	ModelType = "VotingRegressor (LR + RF)"
	RunName   = "training_run"

	// ArtifactName is the tracker artifact holding the encoded pipeline.
	ArtifactName = "model"
)

// Result summarises a successful flow run.
type Result struct {
	Rows         int
	TrainRMSE    float64
	RunID        string
	Version      string
	ArtifactPath string
	Artifact     *ml.Artifact
}

type Flow struct {
	cfg        config.TrainingConfig
	model      config.ModelConfig
	experiment string
	tracker    tracking.Tracker
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

func NewFlow(cfg config.TrainingConfig, model config.ModelConfig, experiment string, tracker tracking.Tracker, logger *zap.Logger) *Flow {
	return &Flow{
		cfg:        cfg,
		model:      model,
		experiment: experiment,
		tracker:    tracker,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.NewString()[:8] },
	}
}

// Run executes every stage in order. The first failing stage aborts the run
// and its error is returned; nothing is retried.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	started := f.now().UTC()
	f.logger.Info("training flow started", zap.Strings("data_paths", f.cfg.DataPaths))

	var ds *dataset.Dataset
	err := f.stage("load", func() error {
		var err error
		ds, err = dataset.Load(features.IsCategorical, f.cfg.DataPaths...)
		if err != nil {
			return err
		}
		for i, r := range ds.Rows {
			if err := features.Engineer(r); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		f.logger.Info("datasets loaded", zap.Int("rows", len(ds.Rows)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var y []float64
	err = f.stage("filter", func() error {
		before := len(ds.Rows)
		ds = dataset.FilterPositiveLabel(ds, features.Label)
		if len(ds.Rows) == 0 {
			return fmt.Errorf("no rows with %s > 0", features.Label)
		}
		var err error
		if y, err = ds.Labels(features.Label); err != nil {
			return err
		}
		f.logger.Info("dropouts filtered", zap.Int("kept", len(ds.Rows)), zap.Int("dropped", before-len(ds.Rows)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	pipeline := ml.NewEnsemblePipeline(features.CategoricalColumns, features.Label, f.cfg.Trees, f.cfg.Seed)
	var rmse float64
	err = f.stage("fit", func() error {
		if err := pipeline.Fit(ds.Rows, y); err != nil {
			return err
		}
		var err error
		if rmse, err = pipeline.RMSE(ds.Rows, y); err != nil {
			return fmt.Errorf("training rmse: %w", err)
		}
		f.logger.Info("pipeline fitted", zap.Float64("train_rmse", rmse))
		return nil
	})
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"model_type":        ModelType,
		"filtered_dropouts": "true",
		"n_estimators":      strconv.Itoa(f.cfg.Trees),
		"random_state":      strconv.FormatInt(f.cfg.Seed, 10),
	}
	artifact := &ml.Artifact{
		Pipeline: pipeline,
		Metadata: ml.ArtifactMetadata{
			CreatedAt: started,
			ModelType: ModelType,
			Rows:      len(ds.Rows),
			TrainRMSE: rmse,
			Features:  pipeline.Preprocessor.FeatureNames(),
			Params:    params,
		},
	}
	res := &Result{Rows: len(ds.Rows), TrainRMSE: rmse, Artifact: artifact}

	err = f.stage("log", func() error {
		blob, err := artifact.Bytes()
		if err != nil {
			return err
		}
		res.RunID, err = f.tracker.LogRun(ctx, tracking.Run{
			Experiment: f.experiment,
			Name:       RunName,
			StartedAt:  started,
			Params:     params,
			Metrics: map[string]float64{
				"train_rmse": rmse,
				"n_rows":     float64(len(ds.Rows)),
			},
			Artifacts: map[string][]byte{ArtifactName: blob},
		})
		if err != nil {
			return fmt.Errorf("log experiment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if f.cfg.ExportArtifact {
		err = f.stage("export", func() error {
			// flows started in the same second still get distinct files
			res.Version = started.Format("20060102T150405Z") + "-" + f.newID()
			res.ArtifactPath = filepath.Join(f.model.Dir, ml.ArtifactFilename(f.model.Prefix, res.Version, f.model.Suffix))
			return ml.SaveArtifact(res.ArtifactPath, artifact)
		})
		if err != nil {
			return nil, err
		}
	}

	f.logger.Info("training flow finished",
		zap.String("run_id", res.RunID),
		zap.Int("rows", res.Rows),
		zap.Float64("train_rmse", res.TrainRMSE),
		zap.String("artifact", res.ArtifactPath),
	)
	return res, nil
}

func (f *Flow) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.TrainingStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		f.logger.Error("training stage failed", zap.String("stage", name), zap.Error(err))
		return fmt.Errorf("%s stage: %w", name, err)
	}
	return nil
}
