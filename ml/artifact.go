package ml

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNoArtifact = errors.New("no model artifact found")

func init() {
	gob.Register(&LinearRegression{})
	gob.Register(&RandomForest{})
	gob.Register(&VotingRegressor{})
}

type ArtifactMetadata struct {
	CreatedAt time.Time
	ModelType string
	Rows      int
	TrainRMSE float64
	Features  []string
	Params    map[string]string
}

// Artifact is the persisted form of a fitted pipeline.
type Artifact struct {
	Pipeline *Pipeline
	Metadata ArtifactMetadata
}

func (a *Artifact) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}

// Bytes returns the encoded artifact.
func (a *Artifact) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if a.Pipeline == nil || a.Pipeline.Preprocessor == nil || a.Pipeline.Model == nil {
		return nil, fmt.Errorf("decode artifact: incomplete pipeline")
	}
	return &a, nil
}

// SaveArtifact writes a to path through a temporary file so a concurrent
// reader never sees a partial artifact.
func SaveArtifact(path string, a *Artifact) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := a.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	return DecodeArtifact(f)
}

// FindLatestArtifact returns the file in dir named prefix*suffix with the most
// recent modification time.
func FindLatestArtifact(dir, prefix, suffix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read model dir: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		if len(name) < len(prefix)+len(suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, name)
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", ErrNoArtifact
	}
	return latest, nil
}

// VersionFromFilename extracts the version between prefix and suffix of an
// artifact file name. The content of the file plays no part.
func VersionFromFilename(path, prefix, suffix string) string {
	name := filepath.Base(path)
	name = strings.TrimPrefix(name, prefix)
	return strings.TrimSuffix(name, suffix)
}

func ArtifactFilename(prefix, version, suffix string) string {
	return prefix + version + suffix
}
