// Package stepwise runs greedy variable selection over a fixed candidate
// set: forward F-test entry, backward criterion-driven elimination, and a
// bidirectional variant. The three procedures answer the same question
// three ways; agreement between them is the deliverable.
package stepwise

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
)

// Options configures a selection run.
type Options struct {
	// Alpha is the largest F-test p-value forward selection will accept
	// when entering a variable. The reference analysis runs at 0.20,
	// deliberately permissive so borderline variables are not excluded
	// before the procedures can be compared.
	Alpha float64
	// Penalty is the information criterion multiplier used by backward
	// and bidirectional selection. 2 is the classical criterion.
	Penalty float64
}

// DefaultOptions mirror the reference analysis run.
func DefaultOptions() Options {
	return Options{Alpha: 0.20, Penalty: 2}
}

func (o Options) validate() error {
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), have %g", o.Alpha)
	}
	if o.Penalty < 0 {
		return fmt.Errorf("penalty must be non-negative, have %g", o.Penalty)
	}
	return nil
}

// EquivalentPenalty maps a forward-selection alpha to the chi-squared
// critical value with one degree of freedom, the penalty constant under
// which criterion-based selection admits variables at that significance.
func EquivalentPenalty(alpha float64) float64 {
	return distuv.ChiSquared{K: 1}.Quantile(1 - alpha)
}

// Step records one accepted move of a selection procedure.
type Step struct {
	Action    string  `json:"action"` // "add" or "drop"
	Column    string  `json:"column"`
	RSS       float64 `json:"rss"`
	Criterion float64 `json:"criterion"`
	FStat     float64 `json:"f_stat,omitempty"`
	PValue    float64 `json:"p_value,omitempty"`
}

type stepJSON struct {
	Action    string   `json:"action"`
	Column    string   `json:"column"`
	RSS       float64  `json:"rss"`
	Criterion *float64 `json:"criterion"`
	FStat     *float64 `json:"f_stat,omitempty"`
	PValue    *float64 `json:"p_value,omitempty"`
}

// MarshalJSON nulls the criterion when the step reached an exact fit,
// where the log-likelihood term is unbounded, and drops an unbounded F
// statistic the same way. encoding/json refuses non-finite numbers.
func (s Step) MarshalJSON() ([]byte, error) {
	a := stepJSON{Action: s.Action, Column: s.Column, RSS: s.RSS, Criterion: finiteOrNil(s.Criterion)}
	if s.FStat != 0 || s.PValue != 0 {
		a.FStat = finiteOrNil(s.FStat)
		p := s.PValue
		a.PValue = &p
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores a nulled criterion as -Inf, the only value the
// criterion nulls.
func (s *Step) UnmarshalJSON(b []byte) error {
	var a stepJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	s.Action = a.Action
	s.Column = a.Column
	s.RSS = a.RSS
	s.Criterion = math.Inf(-1)
	if a.Criterion != nil {
		s.Criterion = *a.Criterion
	}
	s.FStat = 0
	if a.FStat != nil {
		s.FStat = *a.FStat
	}
	s.PValue = 0
	if a.PValue != nil {
		s.PValue = *a.PValue
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Path is one procedure's trajectory: every accepted move, the surviving
// predictor list, and the model fitted on it.
type Path struct {
	Procedure string         `json:"procedure"`
	Steps     []Step         `json:"steps"`
	Selected  []string       `json:"selected"`
	Model     *regress.Model `json:"model"`
}
