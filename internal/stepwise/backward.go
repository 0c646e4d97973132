package stepwise

import (
	"errors"
	"fmt"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
)

// criterionEps guards the improvement comparisons against float noise; a
// move has to beat the incumbent by more than this to be accepted.
const criterionEps = 1e-9

// Backward starts from the full candidate model and removes the predictor
// whose absence gives the lowest information criterion, stopping when no
// removal improves on the incumbent.
func Backward(tab *dataset.Table, outcome string, candidates []string, opt Options) (*Path, error) {
	if err := opt.validate(); err != nil {
		return nil, fmt.Errorf("backward: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("backward: no candidate predictors")
	}

	current, err := regress.Fit(tab, outcome, candidates)
	if err != nil {
		return nil, fmt.Errorf("backward: full fit: %w", err)
	}

	path := &Path{
		Procedure: "backward",
		Selected:  append([]string(nil), candidates...),
	}
	criterion := current.AIC(opt.Penalty)

	for len(path.Selected) > 0 {
		var (
			best     *regress.Model
			bestIdx  = -1
			bestCrit = criterion
		)
		for i := range path.Selected {
			trial, err := regress.Fit(tab, outcome, without(path.Selected, i))
			if err != nil {
				var sf *regress.SingularFitError
				if errors.As(err, &sf) {
					continue
				}
				return nil, fmt.Errorf("backward: trial without %q: %w", path.Selected[i], err)
			}
			if c := trial.AIC(opt.Penalty); c < bestCrit-criterionEps {
				best, bestIdx, bestCrit = trial, i, c
			}
		}
		if best == nil {
			break
		}

		path.Steps = append(path.Steps, Step{
			Action:    "drop",
			Column:    path.Selected[bestIdx],
			RSS:       best.RSS,
			Criterion: bestCrit,
		})
		path.Selected = without(path.Selected, bestIdx)
		current, criterion = best, bestCrit
	}

	path.Model = current
	return path, nil
}

func without(cols []string, i int) []string {
	out := make([]string, 0, len(cols)-1)
	out = append(out, cols[:i]...)
	return append(out, cols[i+1:]...)
}
