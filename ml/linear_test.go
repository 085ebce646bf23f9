package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearRegressionFit(t *testing.T) {
	t.Run("perfect positive trend", func(t *testing.T) {
		X := [][]float64{{0}, {5}, {10}, {15}, {20}, {25}}
		y := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.InDelta(t, 0.02, lr.Coef[0], 1e-9)
		assert.InDelta(t, 0.1, lr.Intercept, 1e-9)
		assert.InDelta(t, 1.3, lr.Predict([]float64{60}), 1e-9)
	})

	t.Run("flat trend", func(t *testing.T) {
		X := [][]float64{{0}, {5}, {10}}
		y := []float64{0.5, 0.5, 0.5}
		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.InDelta(t, 0, lr.Coef[0], 1e-9)
		assert.InDelta(t, 0.5, lr.Intercept, 1e-9)
	})

	t.Run("two features", func(t *testing.T) {
		// y = 2a - 3b + 1
		X := [][]float64{{1, 0}, {0, 1}, {1, 1}, {2, 3}, {4, 1}}
		y := make([]float64, len(X))
		for i, x := range X {
			y[i] = 2*x[0] - 3*x[1] + 1
		}
		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.InDeltaSlice(t, []float64{2, -3}, lr.Coef, 1e-9)
		assert.InDelta(t, 1, lr.Intercept, 1e-9)
	})

	t.Run("collinear one-hot columns still fit", func(t *testing.T) {
		X := [][]float64{{1, 0}, {0, 1}, {1, 0}, {0, 1}}
		y := []float64{10, 14, 10, 14}
		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.InDelta(t, 10, lr.Predict([]float64{1, 0}), 1e-9)
		assert.InDelta(t, 14, lr.Predict([]float64{0, 1}), 1e-9)
	})

	t.Run("constant features fall back to mean", func(t *testing.T) {
		lr := NewLinearRegression()
		require.NoError(t, lr.Fit([][]float64{{3}, {3}}, []float64{4, 6}))
		assert.InDelta(t, 5, lr.Predict([]float64{3}), 1e-12)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		assert.Error(t, NewLinearRegression().Fit(nil, nil))
	})
}
