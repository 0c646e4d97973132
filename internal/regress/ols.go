// Package regress fits ordinary least squares models and reports the
// residual statistics the selection and validation stages decide on.
package regress

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

// SingularFitError reports a design matrix the solver could not work with.
// It is fatal to the run that produced it.
type SingularFitError struct {
	Outcome    string
	Predictors []string
	Err        error
}

func (e *SingularFitError) Error() string {
	return fmt.Sprintf("singular design matrix fitting %q on [%s]: %v",
		e.Outcome, strings.Join(e.Predictors, ", "), e.Err)
}

func (e *SingularFitError) Unwrap() error { return e.Err }

// Model is one fitted least squares regression. Coefficient vectors carry
// the intercept at index 0 followed by the predictors in supply order.
type Model struct {
	Outcome    string    `json:"outcome"`
	Predictors []string  `json:"predictors"`
	Coef       []float64 `json:"coef"`
	StdErr     []float64 `json:"std_err"`
	TStat      []float64 `json:"t_stat"`
	PValue     []float64 `json:"p_value"`

	N      int     `json:"n"`
	DF     int     `json:"df"`
	RSS    float64 `json:"rss"`
	TSS    float64 `json:"tss"`
	Sigma2 float64 `json:"sigma2"`
	R2     float64 `json:"r2"`
	AdjR2  float64 `json:"adj_r2"`
}

// modelJSON mirrors Model with pointer slots for the fields that can hold
// non-finite values: t statistics blow up on an exact fit and R2 is
// undefined for a constant outcome.
type modelJSON struct {
	Outcome    string     `json:"outcome"`
	Predictors []string   `json:"predictors"`
	Coef       []float64  `json:"coef"`
	StdErr     []float64  `json:"std_err"`
	TStat      []*float64 `json:"t_stat"`
	PValue     []float64  `json:"p_value"`
	N          int        `json:"n"`
	DF         int        `json:"df"`
	RSS        float64    `json:"rss"`
	TSS        float64    `json:"tss"`
	Sigma2     float64    `json:"sigma2"`
	R2         *float64   `json:"r2"`
	AdjR2      *float64   `json:"adj_r2"`
}

// MarshalJSON writes non-finite statistics as null, since encoding/json
// refuses NaN and infinities outright.
func (m *Model) MarshalJSON() ([]byte, error) {
	ts := make([]*float64, len(m.TStat))
	for j := range m.TStat {
		ts[j] = finiteOrNil(m.TStat[j])
	}
	return json.Marshal(modelJSON{
		Outcome:    m.Outcome,
		Predictors: m.Predictors,
		Coef:       m.Coef,
		StdErr:     m.StdErr,
		TStat:      ts,
		PValue:     m.PValue,
		N:          m.N,
		DF:         m.DF,
		RSS:        m.RSS,
		TSS:        m.TSS,
		Sigma2:     m.Sigma2,
		R2:         finiteOrNil(m.R2),
		AdjR2:      finiteOrNil(m.AdjR2),
	})
}

// UnmarshalJSON restores nulled statistics as NaN.
func (m *Model) UnmarshalJSON(b []byte) error {
	var a modelJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	ts := make([]float64, len(a.TStat))
	for j, p := range a.TStat {
		ts[j] = fromPtr(p)
	}
	*m = Model{
		Outcome:    a.Outcome,
		Predictors: a.Predictors,
		Coef:       a.Coef,
		StdErr:     a.StdErr,
		TStat:      ts,
		PValue:     a.PValue,
		N:          a.N,
		DF:         a.DF,
		RSS:        a.RSS,
		TSS:        a.TSS,
		Sigma2:     a.Sigma2,
		R2:         fromPtr(a.R2),
		AdjR2:      fromPtr(a.AdjR2),
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromPtr(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// Fit regresses the outcome column on the named predictors with an
// intercept. A missing value in any used column is an error, not a silent
// row drop; callers restrict to complete cases first.
func Fit(tab *dataset.Table, outcome string, predictors []string) (*Model, error) {
	y, err := tab.NumericStrict(outcome)
	if err != nil {
		return nil, err
	}
	cols := make([][]float64, len(predictors))
	for j, name := range predictors {
		if cols[j], err = tab.NumericStrict(name); err != nil {
			return nil, err
		}
	}

	n := len(y)
	p := len(predictors) + 1
	if n <= p {
		return nil, fmt.Errorf("fit %q: %d rows cannot identify %d coefficients", outcome, n, p)
	}

	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, col := range cols {
			X.Set(i, j+1, col[i])
		}
	}
	return fitMatrix(X, y, outcome, predictors)
}

// fitMatrix solves the least squares problem for an already built design
// matrix whose first column is the intercept. Columns are rescaled to unit
// maximum magnitude before factorization; the raw data mixes scales from
// single digits to populations in the billions, which would otherwise ruin
// the conditioning of the normal equations.
func fitMatrix(X *mat.Dense, y []float64, outcome string, predictors []string) (*Model, error) {
	n, p := X.Dims()

	scale := make([]float64, p)
	scaled := mat.NewDense(n, p, nil)
	for j := 0; j < p; j++ {
		s := 0.0
		for i := 0; i < n; i++ {
			if a := math.Abs(X.At(i, j)); a > s {
				s = a
			}
		}
		if s == 0 {
			s = 1
		}
		scale[j] = s
		for i := 0; i < n; i++ {
			scaled.Set(i, j, X.At(i, j)/s)
		}
	}

	fail := func(err error) (*Model, error) {
		return nil, &SingularFitError{
			Outcome:    outcome,
			Predictors: append([]string(nil), predictors...),
			Err:        err,
		}
	}

	var betaScaled mat.VecDense
	if err := betaScaled.SolveVec(scaled, mat.NewVecDense(n, y)); err != nil {
		return fail(err)
	}
	coef := make([]float64, p)
	for j := 0; j < p; j++ {
		coef[j] = betaScaled.AtVec(j) / scale[j]
	}

	var fitted mat.VecDense
	fitted.MulVec(scaled, &betaScaled)

	var rss, tss, ybar float64
	for _, v := range y {
		ybar += v
	}
	ybar /= float64(n)
	for i, v := range y {
		r := v - fitted.AtVec(i)
		rss += r * r
		d := v - ybar
		tss += d * d
	}

	dof := n - p
	sigma2 := rss / float64(dof)

	var xtx, inv mat.Dense
	xtx.Mul(scaled.T(), scaled)
	if err := inv.Inverse(&xtx); err != nil {
		return fail(err)
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	stderr := make([]float64, p)
	tstat := make([]float64, p)
	pval := make([]float64, p)
	for j := 0; j < p; j++ {
		stderr[j] = math.Sqrt(sigma2*inv.At(j, j)) / scale[j]
		if stderr[j] == 0 {
			tstat[j] = math.Inf(1)
			pval[j] = 0
			continue
		}
		tstat[j] = coef[j] / stderr[j]
		pval[j] = 2 * tDist.Survival(math.Abs(tstat[j]))
	}

	r2 := math.NaN()
	adj := math.NaN()
	if tss > 0 {
		r2 = 1 - rss/tss
		adj = 1 - (1-r2)*float64(n-1)/float64(dof)
	}

	return &Model{
		Outcome:    outcome,
		Predictors: append([]string(nil), predictors...),
		Coef:       coef,
		StdErr:     stderr,
		TStat:      tstat,
		PValue:     pval,
		N:          n,
		DF:         dof,
		RSS:        rss,
		TSS:        tss,
		Sigma2:     sigma2,
		R2:         r2,
		AdjR2:      adj,
	}, nil
}

// AIC returns n·ln(RSS/n) + penalty·p, the stepwise information criterion
// with p counting every coefficient including the intercept. penalty=2 is
// the classical criterion; larger penalties select harder.
func (m *Model) AIC(penalty float64) float64 {
	return float64(m.N)*math.Log(m.RSS/float64(m.N)) + penalty*float64(len(m.Coef))
}

// Predict applies the fitted coefficients to the rows of another table,
// which must carry every predictor column.
func (m *Model) Predict(tab *dataset.Table) ([]float64, error) {
	cols := make([][]float64, len(m.Predictors))
	for j, name := range m.Predictors {
		var err error
		if cols[j], err = tab.NumericStrict(name); err != nil {
			return nil, err
		}
	}
	out := make([]float64, tab.Nrow())
	for i := range out {
		v := m.Coef[0]
		for j, col := range cols {
			v += m.Coef[j+1] * col[i]
		}
		out[i] = v
	}
	return out, nil
}

// Evaluate scores the model's predictions against a table's observed
// outcome column.
func (m *Model) Evaluate(tab *dataset.Table) (Metrics, error) {
	obs, err := tab.NumericStrict(m.Outcome)
	if err != nil {
		return Metrics{}, err
	}
	pred, err := m.Predict(tab)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{N: len(obs), R2: R2(obs, pred), RMSE: RMSE(obs, pred)}, nil
}

// Summary renders a fixed-width coefficient table.
func (m *Model) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s %14s %12s %9s %12s\n", "term", "coef", "std err", "t", "p")
	terms := append([]string{"(intercept)"}, m.Predictors...)
	for j, term := range terms {
		fmt.Fprintf(&b, "%-36s %14.6g %12.5g %9.3f %12.4g\n",
			term, m.Coef[j], m.StdErr[j], m.TStat[j], m.PValue[j])
	}
	fmt.Fprintf(&b, "n=%d  df=%d  R2=%.4f  adjR2=%.4f  RSS=%.6g\n",
		m.N, m.DF, m.R2, m.AdjR2, m.RSS)
	return b.String()
}
