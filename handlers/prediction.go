package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-grade-api/models"
	"student-grade-api/services"
)

type Predictor interface {
	Predict(ctx context.Context, student models.Student) (float64, error)
}

type PredictionHandler struct {
	predictor Predictor
}

func NewPredictionHandler(predictor Predictor) *PredictionHandler {
	return &PredictionHandler{predictor: predictor}
}

// PredictRequest uses pointers so a missing field is distinguishable from a
// zero value.
type PredictRequest struct {
	School     *string `json:"school" binding:"required"`
	Sex        *string `json:"sex" binding:"required"`
	Age        *int    `json:"age" binding:"required"`
	Address    *string `json:"address" binding:"required"`
	Famsize    *string `json:"famsize" binding:"required"`
	Pstatus    *string `json:"Pstatus" binding:"required"`
	Medu       *int    `json:"Medu" binding:"required"`
	Fedu       *int    `json:"Fedu" binding:"required"`
	Mjob       *string `json:"Mjob" binding:"required"`
	Fjob       *string `json:"Fjob" binding:"required"`
	Reason     *string `json:"reason" binding:"required"`
	Guardian   *string `json:"guardian" binding:"required"`
	Traveltime *int    `json:"traveltime" binding:"required"`
	Studytime  *int    `json:"studytime" binding:"required"`
	Failures   *int    `json:"failures" binding:"required"`
	Schoolsup  *string `json:"schoolsup" binding:"required"`
	Famsup     *string `json:"famsup" binding:"required"`
	Paid       *string `json:"paid" binding:"required"`
	Activities *string `json:"activities" binding:"required"`
	Nursery    *string `json:"nursery" binding:"required"`
	Higher     *string `json:"higher" binding:"required"`
	Internet   *string `json:"internet" binding:"required"`
	Romantic   *string `json:"romantic" binding:"required"`
	Famrel     *int    `json:"famrel" binding:"required"`
	Freetime   *int    `json:"freetime" binding:"required"`
	Goout      *int    `json:"goout" binding:"required"`
	Dalc       *int    `json:"Dalc" binding:"required"`
	Walc       *int    `json:"Walc" binding:"required"`
	Health     *int    `json:"health" binding:"required"`
	Absences   *int    `json:"absences" binding:"required"`
	G1         *int    `json:"G1" binding:"required"`
	G2         *int    `json:"G2" binding:"required"`
}

// Student converts a bound request. Call only after validation succeeded.
func (r *PredictRequest) Student() models.Student {
	return models.Student{
		School: *r.School, Sex: *r.Sex, Age: *r.Age, Address: *r.Address,
		Famsize: *r.Famsize, Pstatus: *r.Pstatus, Medu: *r.Medu, Fedu: *r.Fedu,
		Mjob: *r.Mjob, Fjob: *r.Fjob, Reason: *r.Reason, Guardian: *r.Guardian,
		Traveltime: *r.Traveltime, Studytime: *r.Studytime, Failures: *r.Failures,
		Schoolsup: *r.Schoolsup, Famsup: *r.Famsup, Paid: *r.Paid,
		Activities: *r.Activities, Nursery: *r.Nursery, Higher: *r.Higher,
		Internet: *r.Internet, Romantic: *r.Romantic, Famrel: *r.Famrel,
		Freetime: *r.Freetime, Goout: *r.Goout, Dalc: *r.Dalc, Walc: *r.Walc,
		Health: *r.Health, Absences: *r.Absences, G1: *r.G1, G2: *r.G2,
	}
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	pred, err := h.predictor.Predict(c.Request.Context(), req.Student())
	if errors.Is(err, services.ErrModelUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prediction_G3": pred})
}
