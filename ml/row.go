// Package ml holds the tabular regression pipeline used to score students:
// column preprocessing, the member regressors, the voting ensemble and the
// on-disk artifact format.
package ml

import (
	"fmt"
	"sort"
)

// Row is one tabular record split by column kind.
type Row struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

func NewRow() Row {
	return Row{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
}

// Model is the only capability the serving path needs from a fitted model.
type Model interface {
	Predict(row Row) (float64, error)
}

// Regressor is a model fitted on an already-encoded design matrix.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

func checkXY(X [][]float64, y []float64) (n, p int, err error) {
	n = len(X)
	if n == 0 {
		return 0, 0, fmt.Errorf("no training samples")
	}
	if len(y) != n {
		return 0, 0, fmt.Errorf("sample count mismatch: %d rows, %d targets", n, len(y))
	}
	p = len(X[0])
	for i, x := range X {
		if len(x) != p {
			return 0, 0, fmt.Errorf("row %d has %d features, want %d", i, len(x), p)
		}
	}
	return n, p, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
