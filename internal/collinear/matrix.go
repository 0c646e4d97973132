// Package collinear diagnoses multicollinearity among predictors and
// applies the analyst's declared resolutions. Detection is automatic;
// the choice of which variable survives a correlated pair never is.
package collinear

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

// Matrix is a symmetric Pearson correlation matrix over named columns.
type Matrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Pair is one column pair whose correlation magnitude reached a threshold.
type Pair struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// Correlations computes the pairwise correlation matrix of the named
// columns. Missing values are an error; correlation over silently paired
// subsets would not be comparable across the matrix.
func Correlations(tab *dataset.Table, cols []string) (*Matrix, error) {
	if len(cols) < 2 {
		return nil, fmt.Errorf("correlations: need at least 2 columns, have %d", len(cols))
	}
	data := make([][]float64, len(cols))
	for i, c := range cols {
		var err error
		if data[i], err = tab.NumericStrict(c); err != nil {
			return nil, err
		}
	}

	m := &Matrix{
		Columns: append([]string(nil), cols...),
		Values:  make([][]float64, len(cols)),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(cols))
		m.Values[i][i] = 1
	}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			r := stat.Correlation(data[i], data[j], nil)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// At returns the correlation between two named columns.
func (m *Matrix) At(a, b string) (float64, bool) {
	ia, ib := m.index(a), m.index(b)
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

func (m *Matrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HighPairs lists every distinct pair with |r| at or above the threshold,
// strongest first.
func (m *Matrix) HighPairs(threshold float64) []Pair {
	var pairs []Pair
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			if r := m.Values[i][j]; math.Abs(r) >= threshold {
				pairs = append(pairs, Pair{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		ra, rb := math.Abs(pairs[a].R), math.Abs(pairs[b].R)
		if ra != rb {
			return ra > rb
		}
		if pairs[a].A != pairs[b].A {
			return pairs[a].A < pairs[b].A
		}
		return pairs[a].B < pairs[b].B
	})
	return pairs
}
