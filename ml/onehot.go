package ml

import "sort"

// OneHotEncoder maps each categorical column to indicator columns over the
// categories seen at fit time. A category never seen during fit encodes as
// all zeros.
type OneHotEncoder struct {
	Categories [][]string
}

func (e *OneHotEncoder) Fit(values [][]string) {
	if len(values) == 0 {
		e.Categories = nil
		return
	}
	p := len(values[0])
	e.Categories = make([][]string, p)
	for j := 0; j < p; j++ {
		seen := make(map[string]struct{})
		for i := range values {
			seen[values[i][j]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		e.Categories[j] = cats
	}
}

// Width is the number of indicator columns produced.
func (e *OneHotEncoder) Width() int {
	w := 0
	for _, cats := range e.Categories {
		w += len(cats)
	}
	return w
}

func (e *OneHotEncoder) Transform(dst []float64, values []string) []float64 {
	for j, v := range values {
		cats := e.Categories[j]
		k := sort.SearchStrings(cats, v)
		for i := range cats {
			if i == k && cats[k] == v {
				dst = append(dst, 1)
			} else {
				dst = append(dst, 0)
			}
		}
	}
	return dst
}
