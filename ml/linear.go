package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares with an intercept. The
// coefficients are the minimum-norm least squares solution on centred data, so
// collinear one-hot blocks do not make the fit fail.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

func (lr *LinearRegression) Fit(X [][]float64, y []float64) error {
	n, p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("linear regression: %w", err)
	}

	xMean := make([]float64, p)
	var yMean float64
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xMean[j] += X[i][j]
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	lr.Coef = make([]float64, p)
	lr.Intercept = yMean
	if p == 0 {
		return nil
	}

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xc.Set(i, j, X[i][j]-xMean[j])
		}
		yc.Set(i, 0, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return fmt.Errorf("linear regression: svd factorization failed")
	}
	rcond := float64(max(n, p)) * 2.220446049250313e-16
	rank := svd.Rank(rcond)
	if rank == 0 {
		// every feature is constant; the mean is the best fit
		return nil
	}

	var beta mat.Dense
	svd.SolveTo(&beta, yc, rank)
	for j := 0; j < p; j++ {
		c := beta.At(j, 0)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("linear regression: non-finite coefficient for feature %d", j)
		}
		lr.Coef[j] = c
		lr.Intercept -= c * xMean[j]
	}
	return nil
}

func (lr *LinearRegression) Predict(x []float64) float64 {
	out := lr.Intercept
	for j, c := range lr.Coef {
		out += c * x[j]
	}
	return out
}
