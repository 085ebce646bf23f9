package ml

import "fmt"

// ColumnTransformer turns a Row into a feature vector: standardized numeric
// columns first, then one-hot blocks for the categorical columns. Numeric
// columns are inferred from the training rows; categorical ones are fixed.
type ColumnTransformer struct {
	NumericColumns     []string
	CategoricalColumns []string
	Scaler             StandardScaler
	Encoder            OneHotEncoder
}

func NewColumnTransformer(categorical []string) *ColumnTransformer {
	return &ColumnTransformer{CategoricalColumns: append([]string(nil), categorical...)}
}

// Fit learns column statistics from rows. Columns named in exclude (the label)
// are never treated as features.
func (ct *ColumnTransformer) Fit(rows []Row, exclude ...string) error {
	if len(rows) == 0 {
		return fmt.Errorf("fit column transformer: no rows")
	}

	skip := make(map[string]bool, len(exclude)+len(ct.CategoricalColumns))
	for _, c := range exclude {
		skip[c] = true
	}
	for _, c := range ct.CategoricalColumns {
		skip[c] = true
	}
	ct.NumericColumns = ct.NumericColumns[:0]
	for _, c := range sortedKeys(rows[0].Numeric) {
		if !skip[c] {
			ct.NumericColumns = append(ct.NumericColumns, c)
		}
	}

	num := make([][]float64, len(rows))
	cat := make([][]string, len(rows))
	for i, r := range rows {
		var err error
		if num[i], err = ct.numeric(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if cat[i], err = ct.categorical(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := ct.Scaler.Fit(num); err != nil {
		return err
	}
	ct.Encoder.Fit(cat)
	return nil
}

func (ct *ColumnTransformer) Transform(r Row) ([]float64, error) {
	num, err := ct.numeric(r)
	if err != nil {
		return nil, err
	}
	cat, err := ct.categorical(r)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(num)+ct.Encoder.Width())
	out = ct.Scaler.Transform(out, num)
	return ct.Encoder.Transform(out, cat), nil
}

// FeatureNames lists the output columns in vector order.
func (ct *ColumnTransformer) FeatureNames() []string {
	names := append([]string(nil), ct.NumericColumns...)
	for j, col := range ct.CategoricalColumns {
		for _, c := range ct.Encoder.Categories[j] {
			names = append(names, col+"_"+c)
		}
	}
	return names
}

func (ct *ColumnTransformer) numeric(r Row) ([]float64, error) {
	out := make([]float64, len(ct.NumericColumns))
	for j, c := range ct.NumericColumns {
		v, ok := r.Numeric[c]
		if !ok {
			return nil, fmt.Errorf("missing numeric column %q", c)
		}
		out[j] = v
	}
	return out, nil
}

func (ct *ColumnTransformer) categorical(r Row) ([]string, error) {
	out := make([]string, len(ct.CategoricalColumns))
	for j, c := range ct.CategoricalColumns {
		v, ok := r.Categorical[c]
		if !ok {
			return nil, fmt.Errorf("missing categorical column %q", c)
		}
		out[j] = v
	}
	return out, nil
}

