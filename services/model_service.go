package services

import (
	"errors"

	"go.uber.org/zap"

	"student-grade-api/config"
	"student-grade-api/ml"
)

const (
	VersionNone  = "none"
	VersionError = "error"
)

// ModelService holds the model resident for the lifetime of the process. It is
// populated once at start-up and never changes afterwards.
type ModelService struct {
	model   ml.Model
	version string
	path    string
}

// LoadModelService picks the most recently modified artifact in cfg.Dir. It
// never fails: without a usable artifact the service reports no model and a
// version of "none" or "error".
func LoadModelService(cfg config.ModelConfig, logger *zap.Logger) *ModelService {
	path, err := ml.FindLatestArtifact(cfg.Dir, cfg.Prefix, cfg.Suffix)
	if err != nil {
		if errors.Is(err, ml.ErrNoArtifact) {
			logger.Warn("no model artifact found", zap.String("dir", cfg.Dir))
		} else {
			logger.Error("scan model dir", zap.String("dir", cfg.Dir), zap.Error(err))
		}
		return &ModelService{version: VersionNone}
	}

	artifact, err := ml.LoadArtifact(path)
	if err != nil {
		logger.Error("load model artifact", zap.String("path", path), zap.Error(err))
		return &ModelService{version: VersionError, path: path}
	}

	version := ml.VersionFromFilename(path, cfg.Prefix, cfg.Suffix)
	logger.Info("model loaded", zap.String("path", path), zap.String("version", version))
	return &ModelService{model: artifact.Pipeline, version: version, path: path}
}

// NewModelService wraps an already loaded model. A nil model means none is
// available.
func NewModelService(model ml.Model, version string) *ModelService {
	return &ModelService{model: model, version: version}
}

func (s *ModelService) Loaded() bool    { return s.model != nil }
func (s *ModelService) Version() string { return s.version }
func (s *ModelService) Model() ml.Model { return s.model }
func (s *ModelService) Path() string    { return s.path }
