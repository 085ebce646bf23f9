package ml

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradeRows() ([]Row, []float64) {
	var rows []Row
	var y []float64
	schools := []string{"GP", "MS"}
	for i := 0; i < 30; i++ {
		g1 := float64(5 + i%12)
		g2 := g1 + float64(i%3)
		g3 := g2 + 1
		rows = append(rows, row(
			map[string]float64{"G1": g1, "G2": g2, "G3": g3, "absences": float64(i % 7)},
			map[string]string{"school": schools[i%2]},
		))
		y = append(y, g3)
	}
	return rows, y
}

func TestPipelineFitPredict(t *testing.T) {
	rows, y := gradeRows()
	p := NewEnsemblePipeline([]string{"school"}, "G3", 10, 42)
	require.NoError(t, p.Fit(rows, y))

	assert.NotContains(t, p.Preprocessor.NumericColumns, "G3")

	pred, err := p.Predict(rows[4])
	require.NoError(t, err)
	assert.InDelta(t, y[4], pred, 1.5)

	rmse, err := p.RMSE(rows, y)
	require.NoError(t, err)
	assert.Less(t, rmse, 1.0)
}

func TestPipelinePredictUnseenCategory(t *testing.T) {
	rows, y := gradeRows()
	p := NewEnsemblePipeline([]string{"school"}, "G3", 5, 42)
	require.NoError(t, p.Fit(rows, y))

	r := row(rows[0].Numeric, map[string]string{"school": "CB"})
	_, err := p.Predict(r)
	assert.NoError(t, err)
}

type panicRegressor struct{}

func (panicRegressor) Fit([][]float64, []float64) error { return nil }
func (panicRegressor) Predict([]float64) float64        { panic("boom") }

func TestPipelinePredictRecoversPanic(t *testing.T) {
	rows, y := gradeRows()
	p := NewPipeline([]string{"school"}, "G3", panicRegressor{})
	require.NoError(t, p.Fit(rows, y))

	_, err := p.Predict(rows[0])
	assert.ErrorContains(t, err, "boom")
}

func TestPipelineFitMismatch(t *testing.T) {
	rows, y := gradeRows()
	p := NewEnsemblePipeline([]string{"school"}, "G3", 5, 42)
	assert.Error(t, p.Fit(rows, y[:3]))
}

func TestArtifactRoundTrip(t *testing.T) {
	rows, y := gradeRows()
	p := NewEnsemblePipeline([]string{"school"}, "G3", 5, 42)
	require.NoError(t, p.Fit(rows, y))

	a := &Artifact{Pipeline: p, Metadata: ArtifactMetadata{ModelType: "VotingRegressor (LR + RF)", Rows: len(rows)}}
	path := filepath.Join(t.TempDir(), "model_test.gob")
	require.NoError(t, SaveArtifact(path, a))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "VotingRegressor (LR + RF)", loaded.Metadata.ModelType)

	for _, r := range rows[:5] {
		want, err := p.Predict(r)
		require.NoError(t, err)
		got, err := loaded.Pipeline.Predict(r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeArtifactGarbage(t *testing.T) {
	_, err := DecodeArtifact(bytes.NewReader([]byte("not a model")))
	assert.Error(t, err)
}

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindLatestArtifact(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "model_v1.gob"), base)
	touch(t, filepath.Join(dir, "model_v3.gob"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "model_v2.gob"), base.Add(30*time.Minute))
	touch(t, filepath.Join(dir, "model_v9.txt"), base.Add(2*time.Hour))
	touch(t, filepath.Join(dir, "other_v8.gob"), base.Add(2*time.Hour))

	path, err := FindLatestArtifact(dir, "model_", ".gob")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model_v3.gob"), path)
	assert.Equal(t, "v3", VersionFromFilename(path, "model_", ".gob"))
}

func TestFindLatestArtifactNone(t *testing.T) {
	_, err := FindLatestArtifact(t.TempDir(), "model_", ".gob")
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestVersionFromFilename(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"model_20250101T000000Z.gob", "20250101T000000Z"},
		{"/srv/models/model_v2.gob", "v2"},
		{"model_.gob", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionFromFilename(tt.path, "model_", ".gob"))
		})
	}
	assert.Equal(t, "model_v2.gob", ArtifactFilename("model_", "v2", ".gob"))
}
