package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"student-grade-api/models"
)

// GormStore keeps job records in the service database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the retrain_jobs table and returns a store on db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.RetrainJob{}); err != nil {
		return nil, fmt.Errorf("migrate retrain jobs: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Create(ctx context.Context, job *models.RetrainJob) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *GormStore) Update(ctx context.Context, job *models.RetrainJob) error {
	res := s.db.WithContext(ctx).Model(&models.RetrainJob{}).Where("id = ?", job.ID).
		Select("*").Omit("id", "created_at").Updates(job)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.RetrainJob, error) {
	var job models.RetrainJob
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *GormStore) List(ctx context.Context, limit int, before *time.Time) ([]models.RetrainJob, error) {
	query := s.db.WithContext(ctx).Model(&models.RetrainJob{}).Order("created_at DESC, id DESC")
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.RetrainJob
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
