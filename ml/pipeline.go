package ml

import (
	"fmt"
	"math"
)

// Pipeline chains a ColumnTransformer and a Regressor.
type Pipeline struct {
	Preprocessor *ColumnTransformer
	Model        Regressor
	Label        string
}

func NewPipeline(categorical []string, label string, model Regressor) *Pipeline {
	return &Pipeline{
		Preprocessor: NewColumnTransformer(categorical),
		Model:        model,
		Label:        label,
	}
}

// NewEnsemblePipeline builds the standard grade model: scaled numerics and
// one-hot categoricals feeding the mean of a linear model and a random forest.
func NewEnsemblePipeline(categorical []string, label string, trees int, seed int64) *Pipeline {
	ensemble := NewVotingRegressor(
		NamedRegressor{Name: "lr", Model: NewLinearRegression()},
		NamedRegressor{Name: "rf", Model: NewRandomForest(trees, seed)},
	)
	return NewPipeline(categorical, label, ensemble)
}

// Fit learns the preprocessing and the model. The label column is never used
// as a feature even if it is present in rows.
func (p *Pipeline) Fit(rows []Row, y []float64) error {
	if len(rows) != len(y) {
		return fmt.Errorf("fit pipeline: %d rows, %d targets", len(rows), len(y))
	}
	if err := p.Preprocessor.Fit(rows, p.Label); err != nil {
		return fmt.Errorf("fit preprocessor: %w", err)
	}
	X := make([][]float64, len(rows))
	for i, r := range rows {
		x, err := p.Preprocessor.Transform(r)
		if err != nil {
			return fmt.Errorf("transform row %d: %w", i, err)
		}
		X[i] = x
	}
	if err := p.Model.Fit(X, y); err != nil {
		return fmt.Errorf("fit model: %w", err)
	}
	return nil
}

// Predict scores one row. Panics raised by the model layer are returned as
// errors.
func (p *Pipeline) Predict(row Row) (pred float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panic: %v", r)
		}
	}()

	x, err := p.Preprocessor.Transform(row)
	if err != nil {
		return 0, err
	}
	pred = p.Model.Predict(x)
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return 0, fmt.Errorf("model produced non-finite prediction %v", pred)
	}
	return pred, nil
}

// RMSE is the root mean squared error of the pipeline over rows.
func (p *Pipeline) RMSE(rows []Row, y []float64) (float64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("rmse: no rows")
	}
	var sum float64
	for i, r := range rows {
		pred, err := p.Predict(r)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		d := pred - y[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(rows))), nil
}
