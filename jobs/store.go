// Package jobs runs the training flow in the background and keeps a record of
// every run.
package jobs

import (
	"context"
	"errors"
	"time"

	"student-grade-api/models"
)

var ErrNotFound = errors.New("retrain job not found")

// Store persists retrain job records. List returns jobs newest first, created
// strictly before the cursor when one is given.
type Store interface {
	Create(ctx context.Context, job *models.RetrainJob) error
	Update(ctx context.Context, job *models.RetrainJob) error
	Get(ctx context.Context, id string) (*models.RetrainJob, error)
	List(ctx context.Context, limit int, before *time.Time) ([]models.RetrainJob, error)
}
