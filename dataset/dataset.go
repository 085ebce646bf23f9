// Package dataset loads the semicolon-delimited student datasets used for
// training.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"student-grade-api/ml"
)

// Dataset is a concatenation of rows from one or more files.
type Dataset struct {
	Rows []ml.Row
}

// Load reads each path in order and concatenates the rows. Rows are not
// deduplicated and files are not checked against each other's schema.
func Load(isCategorical func(string) bool, paths ...string) (*Dataset, error) {
	ds := &Dataset{}
	for _, path := range paths {
		rows, err := loadFile(path, isCategorical)
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, rows...)
	}
	return ds, nil
}

func loadFile(path string, isCategorical func(string) bool) ([]ml.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	rows, err := Read(f, isCategorical)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Read parses one semicolon-delimited table with a header row.
func Read(r io.Reader, isCategorical func(string) bool) ([]ml.Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []ml.Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		row := ml.NewRow()
		for i, col := range header {
			if isCategorical(col) {
				row.Categorical[col] = record[i]
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, col, err)
			}
			row.Numeric[col] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FilterPositiveLabel keeps the rows whose label is strictly positive. Rows
// without the label are dropped.
func FilterPositiveLabel(ds *Dataset, label string) *Dataset {
	out := &Dataset{Rows: make([]ml.Row, 0, len(ds.Rows))}
	for _, r := range ds.Rows {
		if v, ok := r.Numeric[label]; ok && v > 0 {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Labels splits out the label column of every row.
func (ds *Dataset) Labels(label string) ([]float64, error) {
	y := make([]float64, len(ds.Rows))
	for i, r := range ds.Rows {
		v, ok := r.Numeric[label]
		if !ok {
			return nil, fmt.Errorf("row %d has no %s", i, label)
		}
		y[i] = v
	}
	return y, nil
}
