package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/jobs"
	"student-grade-api/middleware"
	"student-grade-api/services"
)

// Deps are the collaborators the API routes need.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Models    *services.ModelService
	Predictor Predictor
	Runner    Triggerer
	Jobs      jobs.Store
	Bus       Subscriber
	Auth      *services.AuthService
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Logger), middleware.Metrics(), middleware.SetupCORS(d.Config.CORS))

	health := NewHealthHandler(d.Models)
	router.GET("/", health.Status)
	router.GET("/health", health.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/predict", NewPredictionHandler(d.Predictor).Predict)

	retrain := NewRetrainHandler(d.Runner, d.Jobs, d.Logger)
	router.POST("/retrain", retrain.Trigger)
	router.GET("/retrain/jobs", retrain.ListJobs)
	router.GET("/retrain/jobs/:id", retrain.GetJob)

	router.POST("/auth/login", NewAuthHandler(d.Config.Dashboard, d.Auth).Login)
	router.GET("/ws/jobs", JobsWebSocket(d.Bus, d.Auth, d.Logger))

	return router
}
