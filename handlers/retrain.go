package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-grade-api/jobs"
	"student-grade-api/models"
)

const retrainAck = "Retraining started in background"

type Triggerer interface {
	Trigger(ctx context.Context) (*models.RetrainJob, error)
}

type RetrainHandler struct {
	runner Triggerer
	store  jobs.Store
	logger *zap.Logger
}

func NewRetrainHandler(runner Triggerer, store jobs.Store, logger *zap.Logger) *RetrainHandler {
	return &RetrainHandler{runner: runner, store: store, logger: logger}
}

// Trigger always acknowledges. Training outcome is only visible through the
// job record.
func (h *RetrainHandler) Trigger(c *gin.Context) {
	var jobID string
	job, err := h.runner.Trigger(c.Request.Context())
	if err != nil {
		h.logger.Error("retrain trigger", zap.Error(err))
	} else {
		jobID = job.ID
	}
	c.JSON(http.StatusOK, gin.H{"status": retrainAck, "job_id": jobID})
}

func (h *RetrainHandler) ListJobs(c *gin.Context) {
	p, err := ParsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.store.List(c.Request.Context(), p.Limit+1, p.Before)
	if err != nil {
		h.logger.Error("list retrain jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list retrain jobs"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = rows[len(rows)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	c.JSON(http.StatusOK, CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore})
}

func (h *RetrainHandler) GetJob(c *gin.Context) {
	job, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("get retrain job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load retrain job"})
		return
	}
	c.JSON(http.StatusOK, job)
}
