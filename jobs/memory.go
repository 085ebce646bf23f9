package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"student-grade-api/models"
)

// MemoryStore keeps job records for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]models.RetrainJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]models.RetrainJob)}
}

func (s *MemoryStore) Create(_ context.Context, job *models.RetrainJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("retrain job %s already exists", job.ID)
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryStore) Update(_ context.Context, job *models.RetrainJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.RetrainJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (s *MemoryStore) List(_ context.Context, limit int, before *time.Time) ([]models.RetrainJob, error) {
	s.mu.RLock()
	out := make([]models.RetrainJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if before != nil && !job.CreatedAt.Before(*before) {
			continue
		}
		out = append(out, job)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
