package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-grade-api/ml"
)

func isCat(col string) bool { return col == "school" || col == "sex" }

const matCSV = `"school";"sex";"age";"G3"
"GP";"F";18;6
"GP";"M";17;0
"MS";"F";16;10
`

const porCSV = `school;sex;age;G3
GP;F;18;11
MS;M;19;0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConcatenates(t *testing.T) {
	dir := t.TempDir()
	mat := writeFile(t, dir, "student-mat.csv", matCSV)
	por := writeFile(t, dir, "student-por.csv", porCSV)

	ds, err := Load(isCat, mat, por)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 5)

	assert.Equal(t, "GP", ds.Rows[0].Categorical["school"])
	assert.Equal(t, 18.0, ds.Rows[0].Numeric["age"])
	assert.Equal(t, "MS", ds.Rows[4].Categorical["school"])
	assert.NotContains(t, ds.Rows[0].Numeric, "school")
}

func TestLoadKeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	mat := writeFile(t, dir, "a.csv", matCSV)

	ds, err := Load(isCat, mat, mat)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 6)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(isCat, filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("non numeric value", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.csv", "school;age\nGP;old\n")
		_, err := Load(isCat, bad)
		assert.ErrorContains(t, err, "age")
	})

	t.Run("ragged row", func(t *testing.T) {
		bad := writeFile(t, dir, "ragged.csv", "school;age\nGP;17;extra\n")
		_, err := Load(isCat, bad)
		assert.Error(t, err)
	})
}

func TestReadEmpty(t *testing.T) {
	rows, err := Read(strings.NewReader(""), isCat)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFilterPositiveLabel(t *testing.T) {
	ds := &Dataset{}
	for _, g3 := range []float64{6, 0, 10, -1, 11, 0} {
		r := ml.NewRow()
		r.Numeric["G3"] = g3
		ds.Rows = append(ds.Rows, r)
	}
	noLabel := ml.NewRow()
	ds.Rows = append(ds.Rows, noLabel)

	filtered := FilterPositiveLabel(ds, "G3")
	require.Len(t, filtered.Rows, 3)

	y, err := filtered.Labels("G3")
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 10, 11}, y)
	for _, v := range y {
		assert.Greater(t, v, 0.0)
	}
	assert.Len(t, ds.Rows, 7, "input is not modified")
}

func TestLabelsMissing(t *testing.T) {
	ds := &Dataset{Rows: []ml.Row{ml.NewRow()}}
	_, err := ds.Labels("G3")
	assert.Error(t, err)
}
