package models

import "time"

type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Done reports whether the state is terminal.
func (s JobState) Done() bool {
	return s == JobSucceeded || s == JobFailed
}

// RetrainJob records one background run of the training flow.
type RetrainJob struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	State      JobState   `gorm:"column:state;index" json:"state"`
	CreatedAt  time.Time  `gorm:"column:created_at;index" json:"created_at"`
	StartedAt  *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	Error      string     `gorm:"column:error" json:"error,omitempty"`
	RunID      string     `gorm:"column:run_id" json:"run_id,omitempty"`
	Rows       int        `gorm:"column:rows" json:"rows,omitempty"`
	Artifact   string     `gorm:"column:artifact" json:"artifact,omitempty"`
}

func (RetrainJob) TableName() string { return "retrain_jobs" }
