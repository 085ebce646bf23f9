// Package features owns the student feature schema: which columns are
// categorical, the label, and the derived features computed identically at
// training and inference time.
package features

import (
	"fmt"
	"strconv"

	"student-grade-api/ml"
	"student-grade-api/models"
)

const Label = "G3"

const (
	TotalAlc  = "TotalAlc"
	ParentEdu = "ParentEdu"
	HasFailed = "HasFailed"
)

// CategoricalColumns are one-hot encoded; every other column except the
// label is numeric.
var CategoricalColumns = []string{
	"school", "sex", "address", "famsize", "Pstatus", "Mjob", "Fjob", "reason", "guardian",
	"schoolsup", "famsup", "paid", "activities", "nursery", "higher", "internet", "romantic",
}

func IsCategorical(column string) bool {
	for _, c := range CategoricalColumns {
		if c == column {
			return true
		}
	}
	return false
}

type Derived struct {
	TotalAlc  int
	ParentEdu int
	HasFailed int
}

func Derive(dalc, walc, medu, fedu, failures int) Derived {
	d := Derived{
		TotalAlc:  dalc + walc,
		ParentEdu: medu + fedu,
	}
	if failures > 0 {
		d.HasFailed = 1
	}
	return d
}

// Engineer adds the derived columns to a raw row in place.
func Engineer(r ml.Row) error {
	get := func(col string) (int, error) {
		v, ok := r.Numeric[col]
		if !ok {
			return 0, fmt.Errorf("engineer features: missing column %q", col)
		}
		return int(v), nil
	}
	var vals [5]int
	for i, col := range []string{"Dalc", "Walc", "Medu", "Fedu", "failures"} {
		v, err := get(col)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	setDerived(r, Derive(vals[0], vals[1], vals[2], vals[3], vals[4]))
	return nil
}

func setDerived(r ml.Row, d Derived) {
	r.Numeric[TotalAlc] = float64(d.TotalAlc)
	r.Numeric[ParentEdu] = float64(d.ParentEdu)
	r.Numeric[HasFailed] = float64(d.HasFailed)
}

// FromStudent converts a request record into an engineered feature row with
// the same column names as the training datasets.
func FromStudent(s models.Student) ml.Row {
	r := ml.NewRow()
	r.Categorical["school"] = s.School
	r.Categorical["sex"] = s.Sex
	r.Categorical["address"] = s.Address
	r.Categorical["famsize"] = s.Famsize
	r.Categorical["Pstatus"] = s.Pstatus
	r.Categorical["Mjob"] = s.Mjob
	r.Categorical["Fjob"] = s.Fjob
	r.Categorical["reason"] = s.Reason
	r.Categorical["guardian"] = s.Guardian
	r.Categorical["schoolsup"] = s.Schoolsup
	r.Categorical["famsup"] = s.Famsup
	r.Categorical["paid"] = s.Paid
	r.Categorical["activities"] = s.Activities
	r.Categorical["nursery"] = s.Nursery
	r.Categorical["higher"] = s.Higher
	r.Categorical["internet"] = s.Internet
	r.Categorical["romantic"] = s.Romantic

	r.Numeric["age"] = float64(s.Age)
	r.Numeric["Medu"] = float64(s.Medu)
	r.Numeric["Fedu"] = float64(s.Fedu)
	r.Numeric["traveltime"] = float64(s.Traveltime)
	r.Numeric["studytime"] = float64(s.Studytime)
	r.Numeric["failures"] = float64(s.Failures)
	r.Numeric["famrel"] = float64(s.Famrel)
	r.Numeric["freetime"] = float64(s.Freetime)
	r.Numeric["goout"] = float64(s.Goout)
	r.Numeric["Dalc"] = float64(s.Dalc)
	r.Numeric["Walc"] = float64(s.Walc)
	r.Numeric["health"] = float64(s.Health)
	r.Numeric["absences"] = float64(s.Absences)
	r.Numeric["G1"] = float64(s.G1)
	r.Numeric["G2"] = float64(s.G2)

	setDerived(r, Derive(s.Dalc, s.Walc, s.Medu, s.Fedu, s.Failures))
	return r
}

// Params flattens an engineered row into string parameters for the
// experiment tracker.
func Params(r ml.Row) map[string]string {
	out := make(map[string]string, len(r.Numeric)+len(r.Categorical))
	for k, v := range r.Categorical {
		out[k] = v
	}
	for k, v := range r.Numeric {
		out[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
