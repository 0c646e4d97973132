package stepwise

import (
	"errors"
	"fmt"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
)

// Both alternates additions and removals from an empty start, taking
// whichever single move lowers the information criterion most, until no
// move improves it. The criterion decreases strictly at every accepted
// move, so the walk terminates.
func Both(tab *dataset.Table, outcome string, candidates []string, opt Options) (*Path, error) {
	if err := opt.validate(); err != nil {
		return nil, fmt.Errorf("stepwise: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("stepwise: no candidate predictors")
	}

	current, err := regress.Fit(tab, outcome, nil)
	if err != nil {
		return nil, fmt.Errorf("stepwise: intercept fit: %w", err)
	}

	path := &Path{Procedure: "both"}
	criterion := current.AIC(opt.Penalty)
	selected := map[string]bool{}

	for {
		var (
			best       *regress.Model
			bestCrit   = criterion
			bestAction string
			bestColumn string
		)

		try := func(action, column string, predictors []string) error {
			trial, err := regress.Fit(tab, outcome, predictors)
			if err != nil {
				var sf *regress.SingularFitError
				if errors.As(err, &sf) {
					return nil
				}
				return fmt.Errorf("stepwise: trial %s %q: %w", action, column, err)
			}
			if c := trial.AIC(opt.Penalty); c < bestCrit-criterionEps {
				best, bestCrit, bestAction, bestColumn = trial, c, action, column
			}
			return nil
		}

		for _, cand := range candidates {
			if selected[cand] {
				continue
			}
			if err := try("add", cand, append(append([]string(nil), path.Selected...), cand)); err != nil {
				return nil, err
			}
		}
		for i, col := range path.Selected {
			if err := try("drop", col, without(path.Selected, i)); err != nil {
				return nil, err
			}
		}
		if best == nil {
			break
		}

		if bestAction == "add" {
			path.Selected = append(path.Selected, bestColumn)
			selected[bestColumn] = true
		} else {
			for i, col := range path.Selected {
				if col == bestColumn {
					path.Selected = without(path.Selected, i)
					break
				}
			}
			delete(selected, bestColumn)
		}
		path.Steps = append(path.Steps, Step{
			Action:    bestAction,
			Column:    bestColumn,
			RSS:       best.RSS,
			Criterion: bestCrit,
		})
		current, criterion = best, bestCrit
	}

	path.Model = current
	return path, nil
}
