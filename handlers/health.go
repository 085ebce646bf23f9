package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-grade-api/services"
)

type HealthHandler struct {
	models *services.ModelService
}

func NewHealthHandler(models *services.ModelService) *HealthHandler {
	return &HealthHandler{models: models}
}

// Status reports whether a model is resident and which version it is.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"model_loaded":  h.models.Loaded(),
		"model_version": h.models.Version(),
	})
}
