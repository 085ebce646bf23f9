package ml

import (
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres each column on its training mean and divides by the
// training (population) standard deviation. Constant columns keep scale 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		s.Mean, s.Scale = nil, nil
		return nil
	}
	p := len(X[0])
	s.Mean = make([]float64, p)
	s.Scale = make([]float64, p)
	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		if std == 0 {
			std = 1
		}
		s.Scale[j] = std
	}
	return nil
}

// Transform writes the scaled values of x into dst and returns it.
func (s *StandardScaler) Transform(dst, x []float64) []float64 {
	for j, v := range x {
		dst = append(dst, (v-s.Mean[j])/s.Scale[j])
	}
	return dst
}
