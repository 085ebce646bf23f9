package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"student-grade-api/metrics"
	"student-grade-api/models"
	"student-grade-api/training"
)

// Trainer runs one training flow to completion.
type Trainer interface {
	Run(ctx context.Context) (*training.Result, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Runner starts retrain jobs. Every trigger gets its own goroutine; there is
// no queue and concurrent jobs do not coordinate.
type Runner struct {
	store   Store
	trainer Trainer
	bus     Publisher
	channel string
	logger  *zap.Logger

	wg    sync.WaitGroup
	now   func() time.Time
	newID func() string
}

func NewRunner(store Store, trainer Trainer, bus Publisher, channel string, logger *zap.Logger) *Runner {
	return &Runner{
		store:   store,
		trainer: trainer,
		bus:     bus,
		channel: channel,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Trigger records a pending job and starts the flow in the background. The
// flow is started even if the record cannot be stored; the error is then
// returned alongside a nil job.
func (r *Runner) Trigger(ctx context.Context) (*models.RetrainJob, error) {
	job := &models.RetrainJob{
		ID:        r.newID(),
		State:     models.JobPending,
		CreatedAt: r.now(),
	}
	metrics.RetrainJobs.WithLabelValues(string(models.JobPending)).Inc()

	storeErr := r.store.Create(ctx, job)
	if storeErr != nil {
		r.logger.Error("store retrain job", zap.String("job_id", job.ID), zap.Error(storeErr))
	} else {
		r.publish(ctx, job)
	}

	snapshot := *job
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(job)
	}()

	if storeErr != nil {
		return nil, fmt.Errorf("store retrain job: %w", storeErr)
	}
	return &snapshot, nil
}

// Wait blocks until every started job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(job *models.RetrainJob) {
	ctx := context.Background()
	logger := r.logger.With(zap.String("job_id", job.ID))

	started := r.now()
	job.State = models.JobRunning
	job.StartedAt = &started
	r.save(ctx, logger, job)
	metrics.RetrainJobsRunning.Inc()
	logger.Info("retrain job started")

	res, err := r.trainer.Run(ctx)

	metrics.RetrainJobsRunning.Dec()
	finished := r.now()
	job.FinishedAt = &finished
	if err != nil {
		job.State = models.JobFailed
		job.Error = err.Error()
		logger.Error("retrain job failed", zap.Error(err))
	} else {
		job.State = models.JobSucceeded
		job.RunID = res.RunID
		job.Rows = res.Rows
		job.Artifact = res.ArtifactPath
		logger.Info("retrain job succeeded", zap.String("run_id", res.RunID), zap.Int("rows", res.Rows))
	}
	metrics.RetrainJobs.WithLabelValues(string(job.State)).Inc()
	r.save(ctx, logger, job)
}

func (r *Runner) save(ctx context.Context, logger *zap.Logger, job *models.RetrainJob) {
	if err := r.store.Update(ctx, job); err != nil {
		logger.Warn("update retrain job", zap.String("state", string(job.State)), zap.Error(err))
	}
	r.publish(ctx, job)
}

func (r *Runner) publish(ctx context.Context, job *models.RetrainJob) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, r.channel, job); err != nil {
		r.logger.Warn("publish job event", zap.String("job_id", job.ID), zap.Error(err))
	}
}
