package collinear

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

var (
	colA = []float64{1, 2, 3, 4, 5, 6}
	colB = []float64{3, 5, 7, 9, 11, 13} // exactly 2a+1
	colC = []float64{2, 1, 4, 3, 6, 5}
)

func testTable(t *testing.T) *dataset.Table {
	t.Helper()
	tab, err := dataset.NewTable([]string{"a", "b", "c"}, [][]float64{colA, colB, colC})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tab
}

func TestCorrelationsSymmetricUnitDiagonal(t *testing.T) {
	m, err := Correlations(testTable(t), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Correlations: %v", err)
	}
	for i := range m.Columns {
		if !almostEqual(m.Values[i][i], 1, 1e-12) {
			t.Fatalf("diagonal[%d] = %f", i, m.Values[i][i])
		}
		for j := range m.Columns {
			if m.Values[i][j] != m.Values[j][i] {
				t.Fatalf("matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}

	ab, ok := m.At("a", "b")
	if !ok || !almostEqual(ab, 1, 1e-12) {
		t.Fatalf("corr(a,b) = %f, want 1", ab)
	}
	ac, ok := m.At("a", "c")
	if !ok || !almostEqual(ac, 14.5/17.5, 1e-12) {
		t.Fatalf("corr(a,c) = %f, want %f", ac, 14.5/17.5)
	}
	if _, ok := m.At("a", "nope"); ok {
		t.Fatalf("unknown column reported present")
	}
}

func TestHighPairsThresholdAndOrder(t *testing.T) {
	m, err := Correlations(testTable(t), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Correlations: %v", err)
	}

	strict := m.HighPairs(0.9)
	if len(strict) != 1 || strict[0].A != "a" || strict[0].B != "b" {
		t.Fatalf("pairs at 0.9 = %#v", strict)
	}

	loose := m.HighPairs(0.8)
	if len(loose) != 3 {
		t.Fatalf("pairs at 0.8 = %#v", loose)
	}
	if loose[0].B != "b" || !almostEqual(math.Abs(loose[0].R), 1, 1e-12) {
		t.Fatalf("strongest pair = %#v", loose[0])
	}
}

func TestVIFIndependentPair(t *testing.T) {
	scores, err := VIF(testTable(t), []string{"a", "c"})
	if err != nil {
		t.Fatalf("VIF: %v", err)
	}
	r := 14.5 / 17.5
	want := 1 / (1 - r*r)
	for _, s := range scores {
		if !almostEqual(s.VIF, want, 1e-6) {
			t.Fatalf("vif %s = %f, want %f", s.Column, s.VIF, want)
		}
	}
}

func TestVIFFlagsLinearDependence(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	x2 := []float64{2, 1, 4, 3, 6, 5, 8, 7}
	sum := make([]float64, len(x1))
	for i := range sum {
		sum[i] = x1[i] + x2[i]
	}
	tab, err := dataset.NewTable([]string{"x1", "x2", "sum"}, [][]float64{x1, x2, sum})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	scores, err := VIF(tab, []string{"x1", "x2", "sum"})
	if err != nil {
		t.Fatalf("VIF: %v", err)
	}
	for _, s := range scores {
		if s.VIF < 1e6 {
			t.Fatalf("vif %s = %f, want very large", s.Column, s.VIF)
		}
	}

	flagged := Exceeding(scores, 10)
	if len(flagged) != 3 {
		t.Fatalf("exceeding = %#v", flagged)
	}
}

func TestVIFExactDuplicateIsInfinite(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	dup := append([]float64(nil), x...)
	noise := []float64{2, 1, 4, 3, 6, 5, 8, 7}
	tab, err := dataset.NewTable([]string{"x", "x copy", "noise"}, [][]float64{x, dup, noise})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	// The duplicated pair poisons every auxiliary design it enters, so
	// all three factors come back infinite.
	scores, err := VIF(tab, []string{"x", "x copy", "noise"})
	if err != nil {
		t.Fatalf("VIF: %v", err)
	}
	for _, s := range scores {
		if !math.IsInf(s.VIF, 1) {
			t.Fatalf("vif %s = %f, want +Inf", s.Column, s.VIF)
		}
	}

	scores, err = VIF(tab, []string{"x", "x copy"})
	if err != nil {
		t.Fatalf("VIF on pair: %v", err)
	}
	for _, s := range scores {
		if !math.IsInf(s.VIF, 1) {
			t.Fatalf("vif %s = %f, want +Inf", s.Column, s.VIF)
		}
	}
}

func TestDecisionTableValidate(t *testing.T) {
	if err := DefaultDecisions().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	bad := []DecisionTable{
		{Decisions: []Decision{{A: "x", B: "y", Keep: "z"}}},
		{Decisions: []Decision{{A: "x", B: "x", Keep: "x"}}},
		{Decisions: []Decision{{A: "", B: "y", Keep: "y"}}},
		{Decisions: []Decision{
			{A: "x", B: "y", Keep: "x"},
			{A: "y", B: "x", Keep: "y"},
		}},
	}
	for i, dt := range bad {
		if err := dt.Validate(); err == nil {
			t.Fatalf("table %d should fail validation", i)
		}
	}
}

func TestLoadDecisions(t *testing.T) {
	doc := `decisions:
  - a: infant deaths
    b: under-five deaths
    keep: under-five deaths
  - a: GDP
    b: percentage expenditure
    keep: GDP
`
	path := filepath.Join(t.TempDir(), "decisions.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write decisions: %v", err)
	}

	dt, err := LoadDecisions(path)
	if err != nil {
		t.Fatalf("LoadDecisions: %v", err)
	}
	if len(dt.Decisions) != 2 || dt.Decisions[1].Keep != "GDP" {
		t.Fatalf("decisions = %#v", dt.Decisions)
	}

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badPath, []byte("decisions:\n  - {a: x, b: y, keep: z}\n"), 0o644); err != nil {
		t.Fatalf("write bad decisions: %v", err)
	}
	if _, err := LoadDecisions(badPath); err == nil {
		t.Fatalf("invalid ruling should fail to load")
	}
}

func TestApplyRulings(t *testing.T) {
	dt := &DecisionTable{Decisions: []Decision{
		{A: "infant deaths", B: "under-five deaths", Keep: "under-five deaths"},
		{A: "percentage expenditure", B: "GDP", Keep: "GDP"},
	}}
	predictors := []string{"infant deaths", "under-five deaths", "GDP", "percentage expenditure", "Schooling"}
	pairs := []Pair{
		{A: "infant deaths", B: "under-five deaths", R: 0.997},
		{A: "GDP", B: "percentage expenditure", R: 0.90},
	}

	kept, removals, err := dt.Apply(predictors, pairs)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	wantKept := []string{"under-five deaths", "GDP", "Schooling"}
	if !equalStrings(kept, wantKept) {
		t.Fatalf("kept = %#v, want %#v", kept, wantKept)
	}
	if len(removals) != 2 || removals[0].Dropped != "infant deaths" || removals[1].Dropped != "percentage expenditure" {
		t.Fatalf("removals = %#v", removals)
	}
}

func TestApplyLeavesNoHighPairs(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	c := []float64{2, 1, 4, 3, 6, 5, 8, 7}
	e := []float64{5, 1, 3, 7, 2, 8, 4, 6}
	b := make([]float64, len(a))
	d := make([]float64, len(a))
	for i := range a {
		b[i] = 2*a[i] + 1
		d[i] = 3*c[i] - 2
	}
	cols := []string{"a", "b", "c", "d", "e"}
	tab, err := dataset.NewTable(cols, [][]float64{a, b, c, d, e})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	m, err := Correlations(tab, cols)
	if err != nil {
		t.Fatalf("Correlations: %v", err)
	}
	const threshold = 0.95
	dt := &DecisionTable{Decisions: []Decision{
		{A: "a", B: "b", Keep: "a"},
		{A: "c", B: "d", Keep: "c"},
	}}
	kept, _, err := dt.Apply(cols, m.HighPairs(threshold))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !equalStrings(kept, []string{"a", "c", "e"}) {
		t.Fatalf("kept = %#v", kept)
	}

	reduced, err := Correlations(tab, kept)
	if err != nil {
		t.Fatalf("Correlations on kept: %v", err)
	}
	if left := reduced.HighPairs(threshold); len(left) != 0 {
		t.Fatalf("high pairs survived the rulings: %#v", left)
	}
}

func TestApplyUnresolvedPair(t *testing.T) {
	dt := &DecisionTable{}
	_, _, err := dt.Apply([]string{"a", "b"}, []Pair{{A: "a", B: "b", R: 0.95}})
	var up *UnresolvedPairError
	if !errors.As(err, &up) || up.Pair.A != "a" {
		t.Fatalf("error = %v, want UnresolvedPairError", err)
	}
}

func TestApplySkipsPairsAlreadyResolved(t *testing.T) {
	dt := &DecisionTable{Decisions: []Decision{
		{A: "a", B: "b", Keep: "a"},
	}}
	pairs := []Pair{
		{A: "a", B: "b", R: 0.99},
		{A: "b", B: "c", R: 0.95}, // b already gone, no ruling needed
	}
	kept, removals, err := dt.Apply([]string{"a", "b", "c"}, pairs)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !equalStrings(kept, []string{"a", "c"}) {
		t.Fatalf("kept = %#v", kept)
	}
	if len(removals) != 1 || removals[0].Dropped != "b" {
		t.Fatalf("removals = %#v", removals)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
