package stepwise

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
)

// Forward grows a model from the intercept upward. Each round fits every
// remaining candidate on top of the current set and takes the one with the
// largest F improvement, provided its p-value clears opt.Alpha; the first
// round that produces no qualifying candidate ends the procedure.
func Forward(tab *dataset.Table, outcome string, candidates []string, opt Options) (*Path, error) {
	if err := opt.validate(); err != nil {
		return nil, fmt.Errorf("forward: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("forward: no candidate predictors")
	}

	current, err := regress.Fit(tab, outcome, nil)
	if err != nil {
		return nil, fmt.Errorf("forward: intercept fit: %w", err)
	}

	path := &Path{Procedure: "forward"}
	remaining := append([]string(nil), candidates...)

	for len(remaining) > 0 {
		var (
			best    *regress.Model
			bestIdx = -1
		)
		for i, cand := range remaining {
			trial, err := regress.Fit(tab, outcome, append(append([]string(nil), path.Selected...), cand))
			if err != nil {
				// Candidates the solver cannot fit alongside the current
				// set (exact collinearity) cannot be selected either.
				var sf *regress.SingularFitError
				if errors.As(err, &sf) {
					continue
				}
				return nil, fmt.Errorf("forward: trial %q: %w", cand, err)
			}
			if trial.RSS >= current.RSS {
				continue
			}
			if best == nil || trial.RSS < best.RSS {
				best, bestIdx = trial, i
			}
		}
		if best == nil {
			break
		}

		f := (current.RSS - best.RSS) / (best.RSS / float64(best.DF))
		p := distuv.F{D1: 1, D2: float64(best.DF)}.Survival(f)
		if p > opt.Alpha {
			break
		}

		path.Steps = append(path.Steps, Step{
			Action:    "add",
			Column:    remaining[bestIdx],
			RSS:       best.RSS,
			Criterion: best.AIC(opt.Penalty),
			FStat:     f,
			PValue:    p,
		})
		path.Selected = append(path.Selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		current = best
	}

	path.Model = current
	return path, nil
}
