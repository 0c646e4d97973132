package lasso

import (
	"math"
	"testing"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

// tile repeats a block so the fixture has enough rows for folding without
// changing any column's mean, variance, or cross products.
func tile(block []float64, reps int) []float64 {
	out := make([]float64, 0, len(block)*reps)
	for r := 0; r < reps; r++ {
		out = append(out, block...)
	}
	return out
}

// The fixture outcome is exactly y = 3*x1. Centered x2 is orthogonal to
// both centered x1 and centered y, so its coefficient is zero at every
// penalty; x3 is constant and can never enter.
func lassoTable(t *testing.T) *dataset.Table {
	t.Helper()
	x1 := tile([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4)
	x2 := tile([]float64{1, -1, -1, 1, 1, -1, -1, 1}, 4)
	x3 := tile([]float64{5, 5, 5, 5, 5, 5, 5, 5}, 4)
	y := make([]float64, len(x1))
	for i := range y {
		y[i] = 3 * x1[i]
	}
	tab, err := dataset.NewTable([]string{"y", "x1", "x2", "x3"}, [][]float64{y, x1, x2, x3})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tab
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Folds = 4
	cfg.PathLen = 40
	return cfg
}

func TestSoftThreshold(t *testing.T) {
	cases := []struct{ z, lambda, want float64 }{
		{3, 1, 2},
		{-3, 1, -2},
		{0.5, 1, 0},
		{-0.5, 1, 0},
		{1, 1, 0},
		{-1, 1, 0},
	}
	for _, c := range cases {
		if got := softThreshold(c.z, c.lambda); got != c.want {
			t.Fatalf("softThreshold(%g, %g) = %g, want %g", c.z, c.lambda, got, c.want)
		}
	}
}

func TestFitRecoversSignalAndEliminatesNoise(t *testing.T) {
	res, err := Fit(lassoTable(t), "y", []string{"x1", "x2", "x3"}, testConfig())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if !equalStrings(res.Survivors, []string{"x1"}) {
		t.Fatalf("survivors = %#v, want [x1]", res.Survivors)
	}
	if !equalStrings(res.Eliminated, []string{"x2", "x3"}) {
		t.Fatalf("eliminated = %#v, want [x2 x3]", res.Eliminated)
	}
	if res.AllKept {
		t.Fatalf("all-kept flag set despite eliminations")
	}

	// An exact linear signal favors the weakest penalty on the grid.
	if res.BestIdx < len(res.Lambdas)/2 {
		t.Fatalf("best penalty index = %d of %d, want near the weak end", res.BestIdx, len(res.Lambdas))
	}
	if !almostEqual(res.Best.Coef[0], 3, 0.02) {
		t.Fatalf("x1 coefficient = %f, want ~3", res.Best.Coef[0])
	}
	if res.Best.Coef[1] != 0 || res.Best.Coef[2] != 0 {
		t.Fatalf("noise coefficients = %v, want exact zeros", res.Best.Coef)
	}
	if !almostEqual(res.Best.Intercept, 0, 0.05) {
		t.Fatalf("intercept = %f, want ~0", res.Best.Intercept)
	}
}

// With y = 3*x1 + 2*x2 both predictors carry signal, so the chosen
// penalty zeroes nothing and the result reports that outcome directly.
func TestFitAllRelevantKeepsEverything(t *testing.T) {
	x1 := tile([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4)
	x2 := tile([]float64{1, -1, -1, 1, 1, -1, -1, 1}, 4)
	y := make([]float64, len(x1))
	for i := range y {
		y[i] = 3*x1[i] + 2*x2[i]
	}
	tab, err := dataset.NewTable([]string{"y", "x1", "x2"}, [][]float64{y, x1, x2})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	res, err := Fit(tab, "y", []string{"x1", "x2"}, testConfig())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !res.AllKept {
		t.Fatalf("all-kept flag not set, eliminated = %#v", res.Eliminated)
	}
	if res.Eliminated != nil {
		t.Fatalf("eliminated = %#v, want none", res.Eliminated)
	}
	if !equalStrings(res.Survivors, []string{"x1", "x2"}) {
		t.Fatalf("survivors = %#v, want [x1 x2]", res.Survivors)
	}
}

func TestPathShape(t *testing.T) {
	cfg := testConfig()
	res, err := Fit(lassoTable(t), "y", []string{"x1", "x2"}, cfg)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if len(res.Lambdas) != cfg.PathLen || len(res.Path) != cfg.PathLen || len(res.CVMean) != cfg.PathLen {
		t.Fatalf("path lengths = %d/%d/%d, want %d", len(res.Lambdas), len(res.Path), len(res.CVMean), cfg.PathLen)
	}
	for k := 1; k < len(res.Lambdas); k++ {
		if res.Lambdas[k] >= res.Lambdas[k-1] {
			t.Fatalf("grid not descending at %d: %f >= %f", k, res.Lambdas[k], res.Lambdas[k-1])
		}
	}
	if res.Path[0].NonZero != 0 {
		t.Fatalf("largest penalty kept %d coefficients, want 0", res.Path[0].NonZero)
	}
	if res.Path[len(res.Path)-1].NonZero == 0 {
		t.Fatalf("weakest penalty kept nothing")
	}
}

func TestFitReproducible(t *testing.T) {
	a, err := Fit(lassoTable(t), "y", []string{"x1", "x2"}, testConfig())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	b, err := Fit(lassoTable(t), "y", []string{"x1", "x2"}, testConfig())
	if err != nil {
		t.Fatalf("Fit repeat: %v", err)
	}
	if a.BestIdx != b.BestIdx {
		t.Fatalf("best index differs: %d vs %d", a.BestIdx, b.BestIdx)
	}
	for k := range a.CVMean {
		if a.CVMean[k] != b.CVMean[k] {
			t.Fatalf("cv mean differs at %d: %v vs %v", k, a.CVMean[k], b.CVMean[k])
		}
	}
}

func TestFitValidation(t *testing.T) {
	tab := lassoTable(t)

	bad := []Config{}
	for _, mut := range []func(*Config){
		func(c *Config) { c.PathLen = 1 },
		func(c *Config) { c.EpsRatio = 0 },
		func(c *Config) { c.EpsRatio = 1 },
		func(c *Config) { c.Folds = 1 },
		func(c *Config) { c.Tol = 0 },
		func(c *Config) { c.MaxIter = 0 },
	} {
		cfg := testConfig()
		mut(&cfg)
		bad = append(bad, cfg)
	}
	for i, cfg := range bad {
		if _, err := Fit(tab, "y", []string{"x1"}, cfg); err == nil {
			t.Fatalf("config %d should fail", i)
		}
	}

	if _, err := Fit(tab, "y", nil, testConfig()); err == nil {
		t.Fatalf("no predictors should fail")
	}

	cfg := testConfig()
	cfg.Folds = 33 // more folds than rows
	if _, err := Fit(tab, "y", []string{"x1"}, cfg); err == nil {
		t.Fatalf("folds > rows should fail")
	}
}

func TestFitRejectsFlatOutcome(t *testing.T) {
	flat := tile([]float64{7, 7, 7, 7}, 4)
	x := tile([]float64{1, 2, 3, 4}, 4)
	tab, err := dataset.NewTable([]string{"y", "x"}, [][]float64{flat, x})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if _, err := Fit(tab, "y", []string{"x"}, testConfig()); err == nil {
		t.Fatalf("flat outcome should fail")
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
