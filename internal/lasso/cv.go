package lasso

import (
	"fmt"
	"math"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

// Result is the cross-validated regularization check.
type Result struct {
	Outcome    string      `json:"outcome"`
	Predictors []string    `json:"predictors"`
	Lambdas    []float64   `json:"lambdas"`
	Path       []PathPoint `json:"path"`
	CVMean     []float64   `json:"cv_mean_mse"`
	CVStd      []float64   `json:"cv_std_mse"`
	BestIdx    int         `json:"best_idx"`
	Best       PathPoint   `json:"best"`
	Survivors  []string    `json:"survivors"`
	Eliminated []string    `json:"eliminated,omitempty"`

	// AllKept marks the degenerate outcome where the chosen penalty
	// zeroes nothing: the check then argues for dropping no variable and
	// is reported as exactly that, never forced into a reduction.
	AllKept bool `json:"all_kept"`
}

// Fit runs the penalty path on the full table, cross-validates the grid,
// and reads the surviving variables off the best penalty.
func Fit(tab *dataset.Table, outcome string, predictors []string, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("lasso: %w", err)
	}
	if len(predictors) == 0 {
		return nil, fmt.Errorf("lasso: no predictors")
	}

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
	if n < cfg.Folds {
		return nil, fmt.Errorf("lasso: %d rows cannot fill %d folds", n, cfg.Folds)
	}

	full := standardize(cols, y)
	lmax := full.lambdaMax()
	if lmax == 0 {
		return nil, fmt.Errorf("lasso: outcome carries no signal against any predictor")
	}
	grid := lambdaGrid(lmax, cfg.PathLen, cfg.EpsRatio)

	res := &Result{
		Outcome:    outcome,
		Predictors: append([]string(nil), predictors...),
		Lambdas:    grid,
		Path:       full.fitPath(grid, cfg.Tol, cfg.MaxIter),
	}

	if res.CVMean, res.CVStd, err = crossValidate(cols, y, grid, cfg); err != nil {
		return nil, err
	}

	res.BestIdx = 0
	for k, m := range res.CVMean {
		if m < res.CVMean[res.BestIdx] {
			res.BestIdx = k
		}
	}
	res.Best = res.Path[res.BestIdx]

	for j, name := range res.Predictors {
		if res.Best.Coef[j] != 0 {
			res.Survivors = append(res.Survivors, name)
		} else {
			res.Eliminated = append(res.Eliminated, name)
		}
	}
	res.AllKept = len(res.Eliminated) == 0
	return res, nil
}

// crossValidate scores every penalty on held-out folds. Each fold is
// standardized from its own training rows; the grid is shared so the
// scores line up with the full-data path.
func crossValidate(cols [][]float64, y []float64, grid []float64, cfg Config) (mean, std []float64, err error) {
	folds, err := dataset.Folds(len(y), cfg.Folds, cfg.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("lasso: %w", err)
	}

	perFold := make([][]float64, len(folds))
	for fi, hold := range folds {
		holdSet := make(map[int]bool, len(hold))
		for _, i := range hold {
			holdSet[i] = true
		}
		trainY := make([]float64, 0, len(y)-len(hold))
		trainCols := make([][]float64, len(cols))
		for j := range trainCols {
			trainCols[j] = make([]float64, 0, len(y)-len(hold))
		}
		for i := range y {
			if holdSet[i] {
				continue
			}
			trainY = append(trainY, y[i])
			for j := range cols {
				trainCols[j] = append(trainCols[j], cols[j][i])
			}
		}
		if len(trainY) == 0 {
			return nil, nil, fmt.Errorf("lasso: fold %d leaves no training rows", fi)
		}

		path := standardize(trainCols, trainY).fitPath(grid, cfg.Tol, cfg.MaxIter)
		perFold[fi] = make([]float64, len(grid))
		for k, pt := range path {
			var sse float64
			for _, i := range hold {
				pred := pt.Intercept
				for j := range cols {
					pred += pt.Coef[j] * cols[j][i]
				}
				d := y[i] - pred
				sse += d * d
			}
			perFold[fi][k] = sse / float64(len(hold))
		}
	}

	mean = make([]float64, len(grid))
	std = make([]float64, len(grid))
	for k := range grid {
		var sum float64
		for fi := range perFold {
			sum += perFold[fi][k]
		}
		m := sum / float64(len(perFold))
		var ss float64
		for fi := range perFold {
			d := perFold[fi][k] - m
			ss += d * d
		}
		mean[k] = m
		std[k] = math.Sqrt(ss / float64(len(perFold)))
	}
	return mean, std, nil
}
