package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"student-grade-api/features"
	"student-grade-api/metrics"
	"student-grade-api/models"
	"student-grade-api/tracking"
)

var ErrModelUnavailable = errors.New("model not loaded")

// ScoringError wraps a failure raised while the model scored a request. Its
// message is the model's raw error text.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string { return e.Err.Error() }
func (e *ScoringError) Unwrap() error { return e.Err }

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

const (
	PredictionRunName = "prediction_request"
	PredictionMetric  = "prediction_G3"
	recordTimeout     = 5 * time.Second
)

type PredictionService struct {
	models     *ModelService
	tracker    tracking.Tracker
	bus        Publisher
	experiment string
	logger     *zap.Logger
}

func NewPredictionService(models *ModelService, tracker tracking.Tracker, bus Publisher, experiment string, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		models:     models,
		tracker:    tracker,
		bus:        bus,
		experiment: experiment,
		logger:     logger,
	}
}

// Predict scores one student. Recording the prediction is best effort and
// never changes the result.
func (s *PredictionService) Predict(ctx context.Context, student models.Student) (float64, error) {
	model := s.models.Model()
	if model == nil {
		metrics.PredictionsUnavailable.Inc()
		return 0, ErrModelUnavailable
	}

	row := features.FromStudent(student)
	pred, err := model.Predict(row)
	if err != nil {
		metrics.PredictionsFailed.Inc()
		s.logger.Error("prediction failed", zap.Error(err))
		return 0, &ScoringError{Err: err}
	}
	metrics.PredictionsServed.Inc()
	metrics.PredictionValue.Observe(pred)

	s.record(ctx, models.PredictionLog{
		TS:           time.Now().UTC(),
		Params:       features.Params(row),
		PredictionG3: pred,
		ModelVersion: s.models.Version(),
	})
	return pred, nil
}

func (s *PredictionService) record(ctx context.Context, entry models.PredictionLog) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if s.tracker != nil {
		_, err := s.tracker.LogRun(ctx, tracking.Run{
			Experiment: s.experiment,
			Name:       PredictionRunName,
			StartedAt:  entry.TS,
			Params:     entry.Params,
			Metrics:    map[string]float64{PredictionMetric: entry.PredictionG3},
			Tags:       map[string]string{"model_version": entry.ModelVersion},
		})
		if err != nil {
			metrics.TrackerFailures.WithLabelValues(s.experiment).Inc()
			s.logger.Warn("tracker logging failed", zap.Error(err))
		}
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, PredictionsChannel, entry); err != nil {
			s.logger.Warn("publish prediction event", zap.Error(err))
		}
	}
}
