package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepData() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		X = append(X, []float64{float64(i)})
		if i < 20 {
			y = append(y, 5)
		} else {
			y = append(y, 15)
		}
	}
	return X, y
}

func TestRandomForestLearnsStep(t *testing.T) {
	X, y := stepData()
	rf := NewRandomForest(20, 42)
	require.NoError(t, rf.Fit(X, y))

	assert.Len(t, rf.Trees, 20)
	assert.InDelta(t, 5, rf.Predict([]float64{3}), 1)
	assert.InDelta(t, 15, rf.Predict([]float64{35}), 1)
}

func TestRandomForestDeterministicSeed(t *testing.T) {
	X := [][]float64{{1, 3}, {2, 1}, {3, 4}, {4, 1}, {5, 5}, {6, 9}, {7, 2}, {8, 6}}
	y := []float64{2, 4, 5, 4, 8, 13, 7, 11}

	a := NewRandomForest(10, 42)
	b := NewRandomForest(10, 42)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	for _, x := range [][]float64{{1.5, 2}, {4.5, 7}, {9, 0}} {
		assert.Equal(t, a.Predict(x), b.Predict(x))
	}
}

func TestRegressionTreeSingleValue(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{7, 7, 7}
	rf := NewRandomForest(1, 1)
	require.NoError(t, rf.Fit(X, y))

	require.Len(t, rf.Trees[0].Nodes, 1, "pure node should not split")
	assert.Equal(t, 7.0, rf.Predict([]float64{100}))
}

func TestRandomForestRejectsBadParams(t *testing.T) {
	X, y := stepData()
	assert.Error(t, NewRandomForest(0, 1).Fit(X, y))
	assert.Error(t, NewRandomForest(5, 1).Fit(X, y[:3]))
}

func TestVotingRegressorAverages(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{1, 3, 5, 7}

	lr := NewLinearRegression()
	rf := NewRandomForest(5, 42)
	v := NewVotingRegressor(NamedRegressor{"lr", lr}, NamedRegressor{"rf", rf})
	require.NoError(t, v.Fit(X, y))

	x := []float64{1.2}
	assert.InDelta(t, (lr.Predict(x)+rf.Predict(x))/2, v.Predict(x), 1e-12)
}

func TestVotingRegressorNoMembers(t *testing.T) {
	assert.Error(t, NewVotingRegressor().Fit([][]float64{{1}}, []float64{1}))
}
