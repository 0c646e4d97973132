package regress

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

func newTable(t *testing.T, names []string, cols [][]float64) *dataset.Table {
	t.Helper()
	tab, err := dataset.NewTable(names, cols)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tab
}

func TestFitSimpleRegression(t *testing.T) {
	tab := newTable(t,
		[]string{"y", "x"},
		[][]float64{
			{2.1, 3.9, 6.2, 7.8, 10.1},
			{1, 2, 3, 4, 5},
		},
	)
	m, err := Fit(tab, "y", []string{"x"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if m.N != 5 || m.DF != 3 {
		t.Fatalf("n=%d df=%d, want 5/3", m.N, m.DF)
	}
	if !almostEqual(m.Coef[0], 0.05, 1e-9) || !almostEqual(m.Coef[1], 1.99, 1e-9) {
		t.Fatalf("coef = %v, want [0.05 1.99]", m.Coef)
	}
	if !almostEqual(m.RSS, 0.107, 1e-9) {
		t.Fatalf("rss = %f, want 0.107", m.RSS)
	}
	if !almostEqual(m.TSS, 39.708, 1e-9) {
		t.Fatalf("tss = %f, want 39.708", m.TSS)
	}
	if !almostEqual(m.R2, 1-0.107/39.708, 1e-12) {
		t.Fatalf("r2 = %f", m.R2)
	}
	if !almostEqual(m.StdErr[1], math.Sqrt(0.107/3/10), 1e-9) {
		t.Fatalf("slope std err = %f", m.StdErr[1])
	}
	if !almostEqual(m.StdErr[0], math.Sqrt(0.107/3*(0.2+0.9)), 1e-9) {
		t.Fatalf("intercept std err = %f", m.StdErr[0])
	}
	if !almostEqual(m.TStat[1], m.Coef[1]/m.StdErr[1], 1e-9) {
		t.Fatalf("slope t = %f", m.TStat[1])
	}
	if m.PValue[1] > 1e-3 {
		t.Fatalf("slope p = %g, want near zero", m.PValue[1])
	}
	if m.PValue[0] < 0.78 || m.PValue[0] > 0.86 {
		t.Fatalf("intercept p = %g, want ~0.82", m.PValue[0])
	}
}

func TestFitPerfectSyntheticFit(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	b := []float64{2, 1, 4, 3, 6, 5, 8, 7}
	y := make([]float64, len(a))
	for i := range y {
		y[i] = 2 + 3*a[i] - 1.5*b[i]
	}
	tab := newTable(t, []string{"y", "a", "b"}, [][]float64{y, a, b})

	m, err := Fit(tab, "y", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !almostEqual(m.Coef[0], 2, 1e-8) || !almostEqual(m.Coef[1], 3, 1e-8) || !almostEqual(m.Coef[2], -1.5, 1e-8) {
		t.Fatalf("coef = %v, want [2 3 -1.5]", m.Coef)
	}
	if !almostEqual(m.R2, 1, 1e-12) {
		t.Fatalf("r2 = %v, want 1", m.R2)
	}

	met, err := m.Evaluate(tab)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !almostEqual(met.R2, 1, 1e-12) {
		t.Fatalf("evaluated r2 = %v, want 1", met.R2)
	}
	if !almostEqual(met.RMSE, 0, 1e-9) {
		t.Fatalf("rmse = %v, want 0", met.RMSE)
	}
}

func TestFitMixedScaleColumns(t *testing.T) {
	// Population-sized predictor next to single-digit ones.
	pop := []float64{1.2e9, 9.8e8, 3.3e8, 2.1e8, 1.4e8, 6.8e7, 5.1e7, 3.7e7}
	school := []float64{4.2, 5.1, 13.9, 12.8, 10.1, 14.2, 15.5, 16.1}
	y := make([]float64, len(pop))
	for i := range y {
		y[i] = 40 + 2.5*school[i] + 1e-8*pop[i]
	}
	tab := newTable(t, []string{"y", "pop", "school"}, [][]float64{y, pop, school})

	m, err := Fit(tab, "y", []string{"pop", "school"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !almostEqual(m.Coef[0], 40, 1e-6) {
		t.Fatalf("intercept = %v, want 40", m.Coef[0])
	}
	if !almostEqual(m.Coef[1], 1e-8, 1e-12) {
		t.Fatalf("pop coef = %v, want 1e-8", m.Coef[1])
	}
	if !almostEqual(m.Coef[2], 2.5, 1e-6) {
		t.Fatalf("school coef = %v, want 2.5", m.Coef[2])
	}
}

func TestFitSingularDesign(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{1, 2, 3, 4, 5, 7}
	tab := newTable(t, []string{"y", "a", "twice"}, [][]float64{y, a, {2, 4, 6, 8, 10, 12}})

	_, err := Fit(tab, "y", []string{"a", "twice"})
	var sf *SingularFitError
	if !errors.As(err, &sf) {
		t.Fatalf("error = %v, want SingularFitError", err)
	}
	if sf.Outcome != "y" || len(sf.Predictors) != 2 {
		t.Fatalf("singular error = %#v", sf)
	}
}

func TestFitRejectsTooFewRows(t *testing.T) {
	tab := newTable(t, []string{"y", "a", "b"}, [][]float64{{1, 2, 3}, {1, 2, 3}, {3, 1, 2}})
	if _, err := Fit(tab, "y", []string{"a", "b"}); err == nil {
		t.Fatalf("n=p should fail")
	}
}

func TestFitSurfacesMissingValues(t *testing.T) {
	tab := newTable(t,
		[]string{"y", "a"},
		[][]float64{{1, 2, 3, 4}, {1, math.NaN(), 3, 4}},
	)
	_, err := Fit(tab, "y", []string{"a"})
	var mv *dataset.MissingValueError
	if !errors.As(err, &mv) || mv.Column != "a" || mv.Row != 1 {
		t.Fatalf("error = %v, want MissingValueError for a row 1", err)
	}
}

func TestAICPenaltyTradesFitForSize(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	noise := []float64{0.3, -0.2, 0.1, -0.4, 0.2, 0.05, -0.1, 0.3, -0.25, 0.15}
	junk := []float64{5, 3, 8, 1, 9, 2, 7, 4, 6, 10}
	y := make([]float64, len(a))
	for i := range y {
		y[i] = 1 + 2*a[i] + noise[i]
	}
	tab := newTable(t, []string{"y", "a", "junk"}, [][]float64{y, a, junk})

	small, err := Fit(tab, "y", []string{"a"})
	if err != nil {
		t.Fatalf("Fit small: %v", err)
	}
	big, err := Fit(tab, "y", []string{"a", "junk"})
	if err != nil {
		t.Fatalf("Fit big: %v", err)
	}

	if big.RSS >= small.RSS {
		t.Fatalf("extra predictor did not reduce rss: %f >= %f", big.RSS, small.RSS)
	}
	// With no penalty the bigger model always scores at least as well;
	// with a heavy penalty the smaller one must win.
	if big.AIC(0) > small.AIC(0) {
		t.Fatalf("unpenalized criterion grew: %f > %f", big.AIC(0), small.AIC(0))
	}
	if big.AIC(1e6) <= small.AIC(1e6) {
		t.Fatalf("heavy penalty kept the bigger model: %f <= %f", big.AIC(1e6), small.AIC(1e6))
	}
}

func TestPredictOnHeldOutRows(t *testing.T) {
	train := newTable(t,
		[]string{"y", "a", "b"},
		[][]float64{
			{3.5, 6.5, 5, 12, 8.5, 14, 16.5, 11},
			{1, 2, 3, 4, 5, 6, 7, 8},
			{2, 1, 4, 3, 6, 5, 8, 7},
		},
	)
	m, err := Fit(train, "y", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	holdout := newTable(t, []string{"a", "b"}, [][]float64{{10, 20}, {1, 2}})
	pred, err := m.Predict(holdout)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(pred) != 2 {
		t.Fatalf("predictions = %d, want 2", len(pred))
	}
	for i, want := range []float64{
		m.Coef[0] + m.Coef[1]*10 + m.Coef[2]*1,
		m.Coef[0] + m.Coef[1]*20 + m.Coef[2]*2,
	} {
		if !almostEqual(pred[i], want, 1e-9) {
			t.Fatalf("pred[%d] = %f, want %f", i, pred[i], want)
		}
	}
}

func TestMetricsHelpers(t *testing.T) {
	obs := []float64{1, 2, 3, 4}
	if !almostEqual(R2(obs, obs), 1, 1e-12) {
		t.Fatalf("perfect r2 = %f", R2(obs, obs))
	}
	if !almostEqual(RMSE(obs, obs), 0, 1e-12) {
		t.Fatalf("perfect rmse = %f", RMSE(obs, obs))
	}

	pred := []float64{1.5, 2.5, 2.5, 3.5}
	if !almostEqual(RMSE(obs, pred), 0.5, 1e-12) {
		t.Fatalf("rmse = %f, want 0.5", RMSE(obs, pred))
	}
	wantR2 := 1.0 - (4 * 0.25 / 5.0)
	if !almostEqual(R2(obs, pred), wantR2, 1e-12) {
		t.Fatalf("r2 = %f, want %f", R2(obs, pred), wantR2)
	}
}

func TestSummaryRendersCoefficientTable(t *testing.T) {
	tab := newTable(t,
		[]string{"y", "x"},
		[][]float64{
			{2.1, 3.9, 6.2, 7.8, 10.1},
			{1, 2, 3, 4, 5},
		},
	)
	m, err := Fit(tab, "y", []string{"x"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	s := m.Summary()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("summary has %d lines, want header, two terms, footer:\n%s", len(lines), s)
	}
	for _, want := range []string{"term", "coef", "std err"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("header %q missing %q", lines[0], want)
		}
	}
	if !strings.HasPrefix(lines[1], "(intercept)") {
		t.Errorf("line %q, want the intercept first", lines[1])
	}
	if !strings.HasPrefix(lines[2], "x ") || !strings.Contains(lines[2], "1.99") {
		t.Errorf("line %q, want the slope row", lines[2])
	}
	if !strings.Contains(lines[3], "n=5  df=3") {
		t.Errorf("footer %q missing the fit sizes", lines[3])
	}
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
