package ml

import "fmt"

type NamedRegressor struct {
	Name  string
	Model Regressor
}

// VotingRegressor fits every member on the same data and predicts the
// unweighted mean of their predictions.
type VotingRegressor struct {
	Members []NamedRegressor
}

func NewVotingRegressor(members ...NamedRegressor) *VotingRegressor {
	return &VotingRegressor{Members: members}
}

func (v *VotingRegressor) Fit(X [][]float64, y []float64) error {
	if len(v.Members) == 0 {
		return fmt.Errorf("voting regressor: no members")
	}
	for _, m := range v.Members {
		if err := m.Model.Fit(X, y); err != nil {
			return fmt.Errorf("fit %s: %w", m.Name, err)
		}
	}
	return nil
}

func (v *VotingRegressor) Predict(x []float64) float64 {
	var sum float64
	for _, m := range v.Members {
		sum += m.Model.Predict(x)
	}
	return sum / float64(len(v.Members))
}
