package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	Model     ModelConfig     `yaml:"model"`
	Training  TrainingConfig  `yaml:"training"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	LogLevel  string          `yaml:"log_level"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// GetDSN returns the key/value DSN understood by both gorm's postgres driver
// and pgxpool.
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Disabled skips the connection entirely; events are then dropped.
	Disabled bool `yaml:"disabled"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// ModelConfig describes where persisted model artifacts live and how they
// are named: <Dir>/<Prefix><version><Suffix>.
type ModelConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

type TrainingConfig struct {
	DataPaths      []string `yaml:"data_paths"`
	Trees          int      `yaml:"trees"`
	Seed           int64    `yaml:"seed"`
	ExportArtifact bool     `yaml:"export_artifact"`
}

type TrackerConfig struct {
	Backend             string `yaml:"backend"`
	MLflowURI           string `yaml:"mlflow_uri"`
	InferenceExperiment string `yaml:"inference_experiment"`
	TrainingExperiment  string `yaml:"training_experiment"`
}

type JobsConfig struct {
	Store string `yaml:"store"`
}

type DashboardConfig struct {
	Port              int    `yaml:"port"`
	APIURL            string `yaml:"api_url"`
	PublicAPIURL      string `yaml:"public_api_url"`
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	GrafanaURL        string `yaml:"grafana_url"`
	APIDocsURL        string `yaml:"api_docs_url"`
	PrometheusURL     string `yaml:"prometheus_url"`
	MLflowURL         string `yaml:"mlflow_url"`
	WorkflowURL       string `yaml:"workflow_url"`
}

// DefaultJWTSecret is only acceptable while the admin page is open. With it,
// anyone can mint admin tokens, so /ws/jobs is effectively public.
const DefaultJWTSecret = "change-me"

// AdminProtected reports whether the admin page requires a login.
func (d DashboardConfig) AdminProtected() bool {
	return d.AdminPassword != "" || d.AdminPasswordHash != ""
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "studentgrade",
			Name:    "studentgrade",
			SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT:   JWTConfig{Secret: DefaultJWTSecret, ExpiryHours: 24},
		CORS:  CORSConfig{AllowedOrigins: "*"},
		Model: ModelConfig{Dir: ".", Prefix: "model_", Suffix: ".gob"},
		Training: TrainingConfig{
			DataPaths: []string{
				"../../sources/student/student-mat.csv",
				"../../sources/student/student-por.csv",
			},
			Trees: 100,
			Seed:  42,
		},
		Tracker: TrackerConfig{
			Backend:             "mlflow",
			MLflowURI:           "http://mlflow:5000",
			InferenceExperiment: "api_inference",
			TrainingExperiment:  "model_retraining",
		},
		Jobs: JobsConfig{Store: "memory"},
		Dashboard: DashboardConfig{
			Port:   8501,
			APIURL: "http://api:8000",
		},
		LogLevel: "info",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	var err error
	if cfg.Server.Port, err = getIntEnv("SERVER_PORT", cfg.Server.Port); err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	if cfg.Database.Port, err = getIntEnv("DB_PORT", cfg.Database.Port); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	if cfg.Redis.Port, err = getIntEnv("REDIS_PORT", cfg.Redis.Port); err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	if cfg.Redis.DB, err = getIntEnv("REDIS_DB", cfg.Redis.DB); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.Redis.Disabled, err = getBoolEnv("REDIS_DISABLED", cfg.Redis.Disabled); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DISABLED: %w", err)
	}
	if cfg.JWT.ExpiryHours, err = getIntEnv("JWT_EXPIRY_HOURS", cfg.JWT.ExpiryHours); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}
	if cfg.Training.Trees, err = getIntEnv("TRAINING_TREES", cfg.Training.Trees); err != nil {
		return nil, fmt.Errorf("invalid TRAINING_TREES: %w", err)
	}
	seed, err := getIntEnv("TRAINING_SEED", int(cfg.Training.Seed))
	if err != nil {
		return nil, fmt.Errorf("invalid TRAINING_SEED: %w", err)
	}
	cfg.Training.Seed = int64(seed)
	if cfg.Training.ExportArtifact, err = getBoolEnv("TRAINING_EXPORT_ARTIFACT", cfg.Training.ExportArtifact); err != nil {
		return nil, fmt.Errorf("invalid TRAINING_EXPORT_ARTIFACT: %w", err)
	}
	if cfg.Dashboard.Port, err = getIntEnv("DASHBOARD_PORT", cfg.Dashboard.Port); err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_PORT: %w", err)
	}

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.CORS.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	cfg.Model.Dir = getEnv("MODEL_DIR", cfg.Model.Dir)
	cfg.Model.Prefix = getEnv("MODEL_PREFIX", cfg.Model.Prefix)
	cfg.Model.Suffix = getEnv("MODEL_SUFFIX", cfg.Model.Suffix)

	if paths := getEnv("TRAINING_DATA_PATHS", ""); paths != "" {
		cfg.Training.DataPaths = splitList(paths)
	}

	cfg.Tracker.Backend = getEnv("TRACKER_BACKEND", cfg.Tracker.Backend)
	cfg.Tracker.MLflowURI = getEnv("MLFLOW_TRACKING_URI", cfg.Tracker.MLflowURI)
	cfg.Tracker.InferenceExperiment = getEnv("TRACKER_INFERENCE_EXPERIMENT", cfg.Tracker.InferenceExperiment)
	cfg.Tracker.TrainingExperiment = getEnv("TRACKER_TRAINING_EXPERIMENT", cfg.Tracker.TrainingExperiment)

	cfg.Jobs.Store = getEnv("JOB_STORE", cfg.Jobs.Store)

	cfg.Dashboard.APIURL = getEnv("DASHBOARD_API_URL", cfg.Dashboard.APIURL)
	cfg.Dashboard.PublicAPIURL = getEnv("DASHBOARD_PUBLIC_API_URL", cfg.Dashboard.PublicAPIURL)
	cfg.Dashboard.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.Dashboard.AdminPassword)
	cfg.Dashboard.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.Dashboard.AdminPasswordHash)
	cfg.Dashboard.GrafanaURL = getEnv("GRAFANA_URL", cfg.Dashboard.GrafanaURL)
	cfg.Dashboard.APIDocsURL = getEnv("API_DOCS_URL", cfg.Dashboard.APIDocsURL)
	cfg.Dashboard.PrometheusURL = getEnv("PROMETHEUS_URL", cfg.Dashboard.PrometheusURL)
	cfg.Dashboard.MLflowURL = getEnv("MLFLOW_UI_URL", cfg.Dashboard.MLflowURL)
	cfg.Dashboard.WorkflowURL = getEnv("WORKFLOW_UI_URL", cfg.Dashboard.WorkflowURL)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Tracker.Backend {
	case "mlflow", "postgres", "log":
	default:
		return fmt.Errorf("invalid TRACKER_BACKEND %q: want mlflow, postgres or log", c.Tracker.Backend)
	}
	switch c.Jobs.Store {
	case "memory", "postgres":
	default:
		return fmt.Errorf("invalid JOB_STORE %q: want memory or postgres", c.Jobs.Store)
	}
	if c.Training.Trees <= 0 {
		return fmt.Errorf("TRAINING_TREES must be positive, got %d", c.Training.Trees)
	}
	if len(c.Training.DataPaths) == 0 {
		return fmt.Errorf("no training data paths configured")
	}
	if c.Dashboard.AdminProtected() && c.JWT.Secret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set when an admin password is configured")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
