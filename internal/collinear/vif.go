package collinear

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
)

// Score is one predictor's variance inflation factor.
type Score struct {
	Column string  `json:"column"`
	VIF    float64 `json:"vif"`
}

type scoreJSON struct {
	Column string   `json:"column"`
	VIF    *float64 `json:"vif"`
}

// MarshalJSON writes an infinite factor as null; encoding/json refuses
// non-finite numbers.
func (s Score) MarshalJSON() ([]byte, error) {
	a := scoreJSON{Column: s.Column}
	if !math.IsInf(s.VIF, 0) && !math.IsNaN(s.VIF) {
		v := s.VIF
		a.VIF = &v
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores a null factor as +Inf, the only value VIF nulls.
func (s *Score) UnmarshalJSON(b []byte) error {
	var a scoreJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	s.Column = a.Column
	if a.VIF == nil {
		s.VIF = math.Inf(1)
	} else {
		s.VIF = *a.VIF
	}
	return nil
}

// VIF regresses each predictor on all the others and converts the
// auxiliary fit to 1/(1-R²). Exact collinearity comes back as +Inf; here
// the singularity is the diagnosis, not a failure.
func VIF(tab *dataset.Table, predictors []string) ([]Score, error) {
	if len(predictors) < 2 {
		return nil, fmt.Errorf("vif: need at least 2 predictors, have %d", len(predictors))
	}
	scores := make([]Score, len(predictors))
	for j, target := range predictors {
		others := make([]string, 0, len(predictors)-1)
		for _, p := range predictors {
			if p != target {
				others = append(others, p)
			}
		}
		scores[j] = Score{Column: target, VIF: math.Inf(1)}

		aux, err := regress.Fit(tab, target, others)
		if err != nil {
			var sf *regress.SingularFitError
			if errors.As(err, &sf) {
				continue
			}
			return nil, fmt.Errorf("vif %q: %w", target, err)
		}
		if aux.R2 < 1 {
			scores[j].VIF = 1 / (1 - aux.R2)
		}
	}
	return scores, nil
}

// Exceeding returns the scores at or above the threshold, worst first.
func Exceeding(scores []Score, threshold float64) []Score {
	var out []Score
	for _, s := range scores {
		if s.VIF >= threshold {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].VIF != out[b].VIF {
			return out[a].VIF > out[b].VIF
		}
		return out[a].Column < out[b].Column
	})
	return out
}
