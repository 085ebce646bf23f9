// Package dashboard serves the operator web UI: service links, a prediction
// form and the admin retrain page. It talks to the API over HTTP only.
package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/middleware"
	"student-grade-api/models"
	"student-grade-api/services"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tokenCookie   = "admin_token"
	atRiskBelow   = 10.0
	recentJobsMax = 10
)

type Server struct {
	cfg    config.DashboardConfig
	client *Client
	auth   *services.AuthService
	logger *zap.Logger
}

func NewServer(cfg config.DashboardConfig, client *Client, auth *services.AuthService, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, client: client, auth: auth, logger: logger}
}

func Templates() *template.Template {
	funcs := template.FuncMap{
		"grade": func(v float64) string { return fmt.Sprintf("%.2f / 20", v) },
		"dict": func(kv ...interface{}) (map[string]interface{}, error) {
			if len(kv)%2 != 0 {
				return nil, errors.New("dict: odd number of arguments")
			}
			m := make(map[string]interface{}, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				key, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[key] = kv[i+1]
			}
			return m, nil
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(s.logger))
	router.SetHTMLTemplate(Templates())

	router.GET("/", s.Home)
	router.GET("/predict", s.PredictPage)
	router.POST("/predict", s.Predict)
	router.GET("/admin/login", s.LoginPage)
	router.POST("/admin/login", s.Login)
	router.POST("/admin/logout", s.Logout)

	admin := router.Group("/admin", s.requireAdmin)
	admin.GET("", s.AdminPage)
	admin.POST("/retrain", s.Retrain)

	return router
}

type serviceLink struct {
	Title       string
	Description string
	URL         string
}

func (s *Server) Home(c *gin.Context) {
	links := []serviceLink{
		{"Monitoring", "Grafana dashboards for service metrics and logs.", s.cfg.GrafanaURL},
		{"API documentation", "Endpoints and payload schemas of the prediction API.", s.cfg.APIDocsURL},
		{"Prometheus", "Raw metrics collected from the API.", s.cfg.PrometheusURL},
		{"Experiment tracking", "Training runs, parameters and logged predictions.", s.cfg.MLflowURL},
		{"Workflows", "Retraining flow runs and schedules.", s.cfg.WorkflowURL},
	}
	c.HTML(http.StatusOK, "home.html", gin.H{"Page": "home", "Links": links})
}

type predictView struct {
	Page       string
	Form       PredictForm
	Studytime  []option
	Traveltime []option
	Submitted  bool
	Prediction float64
	AtRisk     bool
	FormError  string
	APIError   string
	ConnError  string
}

func (s *Server) newPredictView(form PredictForm) *predictView {
	return &predictView{
		Page:       "predict",
		Form:       form,
		Studytime:  studytimeOptions,
		Traveltime: traveltimeOptions,
	}
}

func (s *Server) PredictPage(c *gin.Context) {
	c.HTML(http.StatusOK, "predict.html", s.newPredictView(DefaultPredictForm()))
}

func (s *Server) Predict(c *gin.Context) {
	var form PredictForm
	if err := c.ShouldBind(&form); err != nil {
		view := s.newPredictView(DefaultPredictForm())
		view.FormError = err.Error()
		c.HTML(http.StatusBadRequest, "predict.html", view)
		return
	}

	view := s.newPredictView(form)
	view.Submitted = true
	pred, err := s.client.Predict(c.Request.Context(), form.Student())
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		view.APIError = apiErr.Body
	case err != nil:
		s.logger.Warn("prediction request failed", zap.Error(err))
		view.ConnError = err.Error()
	default:
		view.Prediction = pred
		view.AtRisk = pred < atRiskBelow
	}
	c.HTML(http.StatusOK, "predict.html", view)
}

type adminView struct {
	Page       string
	Protected  bool
	WSURL      string
	Response   string
	Error      string
	Jobs       []models.RetrainJob
	JobsError  string
	ActiveJobs int
	Workflow   string
	LoginError string
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !s.cfg.AdminProtected() {
		c.Next()
		return
	}
	token, err := c.Cookie(tokenCookie)
	if err == nil {
		if _, err = s.auth.ValidateAdminToken(token); err == nil {
			c.Set(tokenCookie, token)
			c.Next()
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/admin/login")
	c.Abort()
}

// adminToken returns the token the page hands to the live job feed. An
// unprotected dashboard mints one per page view.
func (s *Server) adminToken(c *gin.Context) string {
	if token := c.GetString(tokenCookie); token != "" {
		return token
	}
	token, err := s.auth.GenerateToken("dashboard", services.AdminRole)
	if err != nil {
		s.logger.Error("generate admin token", zap.Error(err))
		return ""
	}
	return token
}

func (s *Server) newAdminView(c *gin.Context) *adminView {
	view := &adminView{
		Page:      "admin",
		Protected: s.cfg.AdminProtected(),
		Workflow:  s.cfg.WorkflowURL,
	}
	if token := s.adminToken(c); token != "" {
		view.WSURL = s.jobsFeedURL(token)
	}
	jobs, err := s.client.Jobs(c.Request.Context(), recentJobsMax)
	if err != nil {
		view.JobsError = err.Error()
	}
	view.Jobs = jobs
	for _, job := range jobs {
		if !job.State.Done() {
			view.ActiveJobs++
		}
	}
	return view
}

// jobsFeedURL is the websocket address as seen from the browser.
func (s *Server) jobsFeedURL(token string) string {
	base := s.cfg.PublicAPIURL
	if base == "" {
		base = s.cfg.APIURL
	}
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/jobs?token=" + url.QueryEscape(token)
}

func (s *Server) AdminPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin.html", s.newAdminView(c))
}

func (s *Server) Retrain(c *gin.Context) {
	raw, err := s.client.Retrain(c.Request.Context())
	view := s.newAdminView(c)

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		view.Error = "retrain trigger failed: " + apiErr.Body
	case err != nil:
		s.logger.Warn("retrain request failed", zap.Error(err))
		view.Error = "could not reach the API: " + err.Error()
	default:
		var pretty bytes.Buffer
		if json.Indent(&pretty, raw, "", "  ") == nil {
			view.Response = pretty.String()
		} else {
			view.Response = string(raw)
		}
	}
	c.HTML(http.StatusOK, "admin.html", view)
}

func (s *Server) LoginPage(c *gin.Context) {
	if !s.cfg.AdminProtected() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.HTML(http.StatusOK, "login.html", adminView{Page: "admin", Protected: true})
}

func (s *Server) Login(c *gin.Context) {
	if !s.cfg.AdminProtected() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	if !s.auth.CheckAdminPassword(s.cfg, c.PostForm("password")) {
		c.HTML(http.StatusUnauthorized, "login.html", adminView{Page: "admin", Protected: true, LoginError: "invalid password"})
		return
	}
	token, err := s.auth.GenerateToken("dashboard", services.AdminRole)
	if err != nil {
		s.logger.Error("generate admin token", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", adminView{Page: "admin", Protected: true, LoginError: "could not start a session"})
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, token, 0, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (s *Server) Logout(c *gin.Context) {
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}
