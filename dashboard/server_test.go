package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/models"
	"student-grade-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAPI struct {
	mu          sync.Mutex
	prediction  float64
	predictCode int
	predictBody string
	students    []models.Student
	retrains    int
	jobsBody    string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Path {
	case "/predict":
		var s models.Student
		_ = json.NewDecoder(r.Body).Decode(&s)
		f.students = append(f.students, s)
		if f.predictCode != 0 {
			w.WriteHeader(f.predictCode)
			_, _ = io.WriteString(w, f.predictBody)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"prediction_G3": f.prediction})
	case "/retrain":
		f.retrains++
		_, _ = io.WriteString(w, `{"status":"Retraining started in background","job_id":"job-9"}`)
	case "/retrain/jobs":
		if f.jobsBody != "" {
			_, _ = io.WriteString(w, f.jobsBody)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"job-8","state":"succeeded","created_at":"2024-05-01T10:00:00Z"}],"has_more":false}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestServer(t *testing.T, cfg config.DashboardConfig) (*gin.Engine, *fakeAPI, *services.AuthService) {
	t.Helper()
	api := &fakeAPI{prediction: 13.456}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	if cfg.APIURL == "" {
		cfg.APIURL = srv.URL
	}
	auth := services.NewAuthService(config.JWTConfig{Secret: "test", ExpiryHours: 1})
	return NewServer(cfg, NewClient(cfg.APIURL, nil), auth, zap.NewNop()).Router(), api, auth
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func formValues(g1, g2 string) url.Values {
	return url.Values{
		"G1": {g1}, "G2": {g2}, "failures": {"1"}, "absences": {"4"}, "studytime": {"3"},
		"schoolsup": {"no"}, "famsup": {"yes"}, "paid": {"no"}, "internet": {"yes"},
		"higher": {"yes"}, "activities": {"no"}, "freetime": {"3"}, "goout": {"2"},
		"traveltime": {"1"},
	}
}

func TestHomeLinks(t *testing.T) {
	r, _, _ := newTestServer(t, config.DashboardConfig{GrafanaURL: "https://grafana.example"})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="https://grafana.example"`)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestPredictPageDefaults(t *testing.T) {
	r, _, _ := newTestServer(t, config.DashboardConfig{})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/predict", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="G1" min="0" max="20" value="10"`)
}

func TestPredictSubmit(t *testing.T) {
	r, api, _ := newTestServer(t, config.DashboardConfig{})

	w := serve(r, postForm("/predict", formValues("14", "13")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "13.46 / 20")
	assert.NotContains(t, w.Body.String(), "Risk of failure")

	require.Len(t, api.students, 1)
	s := api.students[0]
	assert.Equal(t, 14, s.G1)
	assert.Equal(t, "yes", s.Famsup)
	assert.Equal(t, 2, s.Goout)
	// fields the form does not ask for
	assert.Equal(t, "GP", s.School)
	assert.Equal(t, "mother", s.Guardian)
	assert.Equal(t, 4, s.Health)
}

func TestPredictAtRisk(t *testing.T) {
	r, api, _ := newTestServer(t, config.DashboardConfig{})
	api.prediction = 9.99

	w := serve(r, postForm("/predict", formValues("8", "9")))
	assert.Contains(t, w.Body.String(), "9.99 / 20")
	assert.Contains(t, w.Body.String(), "Risk of failure detected.")
}

func TestPredictAPIErrorShownVerbatim(t *testing.T) {
	r, api, _ := newTestServer(t, config.DashboardConfig{})
	api.predictCode = http.StatusServiceUnavailable
	api.predictBody = `{"error":"model not loaded"}`

	w := serve(r, postForm("/predict", formValues("8", "9")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "API error: {&#34;error&#34;:&#34;model not loaded&#34;}")
}

func TestPredictConnectionError(t *testing.T) {
	r, _, _ := newTestServer(t, config.DashboardConfig{APIURL: "http://127.0.0.1:1"})
	w := serve(r, postForm("/predict", formValues("8", "9")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Connection error:")
}

func TestPredictInvalidForm(t *testing.T) {
	r, api, _ := newTestServer(t, config.DashboardConfig{})
	values := formValues("25", "9")
	w := serve(r, postForm("/predict", values))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.students)
}

func TestAdminOpen(t *testing.T) {
	r, api, _ := newTestServer(t, config.DashboardConfig{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "job-8")
	assert.Contains(t, w.Body.String(), "new WebSocket(")

	w = serve(r, httptest.NewRequest(http.MethodPost, "/admin/retrain", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, api.retrains)
	assert.Contains(t, w.Body.String(), "job-9")
	assert.Contains(t, w.Body.String(), "Retraining flow started.")
}

func TestAdminActiveJobs(t *testing.T) {
	r, api, _ := newTestServer(t, config.DashboardConfig{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.NotContains(t, w.Body.String(), "still in progress")

	api.mu.Lock()
	api.jobsBody = `{"data":[` +
		`{"id":"job-3","state":"running","created_at":"2024-05-01T10:02:00Z"},` +
		`{"id":"job-2","state":"pending","created_at":"2024-05-01T10:01:00Z"},` +
		`{"id":"job-1","state":"failed","created_at":"2024-05-01T10:00:00Z"}],"has_more":false}`
	api.mu.Unlock()

	w = serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2 retraining job(s) still in progress.")
}

func TestAdminProtected(t *testing.T) {
	r, api, auth := newTestServer(t, config.DashboardConfig{AdminPassword: "s3cret"})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = serve(r, httptest.NewRequest(http.MethodPost, "/admin/retrain", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Zero(t, api.retrains)

	w = serve(r, postForm("/admin/login", url.Values{"password": {"nope"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, postForm("/admin/login", url.Values{"password": {"s3cret"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == tokenCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	_, err := auth.ValidateAdminToken(session.Value)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/retrain", nil)
	req.AddCookie(session)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, api.retrains)
	assert.Contains(t, w.Body.String(), url.QueryEscape(session.Value))
}

func TestJobsFeedURL(t *testing.T) {
	s := &Server{cfg: config.DashboardConfig{APIURL: "http://api:8000"}}
	assert.Equal(t, "ws://api:8000/ws/jobs?token=abc", s.jobsFeedURL("abc"))

	s.cfg.PublicAPIURL = "https://api.example.com/"
	assert.Equal(t, "wss://api.example.com/ws/jobs?token=abc", s.jobsFeedURL("abc"))
}
