package cmd

import (
	"fmt"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/collinear"
	cfgpkg "github.com/alaynabinder/DIIG-Data-Challenge/internal/config"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/lasso"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/report"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/stepwise"
)

// Stage helpers shared by the collinearity, select, validate, and run
// commands. Each command composes the same stages so that a stage run on
// its own behaves exactly as it does inside the full pipeline.

// loadTable reads the input file with the configured delimiter.
func loadTable(c *cfgpkg.Analysis, path string) (*dataset.Table, error) {
	opt := dataset.DefaultLoadOptions()
	opt.Delimiter = c.DelimiterRune()
	return dataset.Load(path, opt)
}

// cleanTable encodes the status column and builds the three strata, each
// with its own anchor-column row drop.
func cleanTable(c *cfgpkg.Analysis, raw *dataset.Table) (*dataset.CleanResult, error) {
	return dataset.Clean(raw, dataset.CleanConfig{
		StatusColumn:    c.StatusColumn,
		AnchorColumn:    c.AnchorColumn,
		DevelopedLabel:  c.DevelopedLabel,
		DevelopingLabel: c.DevelopingLabel,
	})
}

// candidateColumns lists the numeric columns eligible as predictors:
// everything numeric except the outcome, the stratifying status column,
// and the identification columns.
func candidateColumns(c *cfgpkg.Analysis, t *dataset.Table) []string {
	skip := []string{c.OutcomeColumn, c.StatusColumn}
	skip = append(skip, c.IDColumns...)
	return t.NumericColumns(skip...)
}

// stratumTable pairs a stratum name with its cleaned table.
type stratumTable struct {
	name string
	tab  *dataset.Table
}

func strata(res *dataset.CleanResult) []stratumTable {
	return []stratumTable{
		{"full", res.Full},
		{"developing", res.Developing},
		{"developed", res.Developed},
	}
}

// screenResult carries the collinearity stage outputs downstream: the
// complete-case table the matrix was computed on and the reduced
// predictor set every selection run reuses.
type screenResult struct {
	section    *report.Screening
	table      *dataset.Table
	candidates []string
}

// screen computes the correlation matrix over the candidate predictors,
// resolves high pairs against the decision table, and scores the kept
// set with VIF. VIF findings are advisory; only the decision table
// removes predictors.
func screen(c *cfgpkg.Analysis, full *dataset.Table) (*screenResult, error) {
	candidates := candidateColumns(c, full)
	if len(candidates) < 2 {
		return nil, fmt.Errorf("screening needs at least 2 candidate predictors, have %d", len(candidates))
	}
	cols := append([]string{c.OutcomeColumn}, candidates...)
	cc, drop, err := dataset.CompleteCases(full, cols)
	if err != nil {
		return nil, err
	}

	m, err := collinear.Correlations(cc, candidates)
	if err != nil {
		return nil, err
	}
	pairs := m.HighPairs(c.CorrelationThreshold)

	rules := collinear.DefaultDecisions()
	if c.DecisionsFile != "" {
		rules, err = collinear.LoadDecisions(c.DecisionsFile)
		if err != nil {
			return nil, err
		}
	}
	kept, removals, err := rules.Apply(candidates, pairs)
	if err != nil {
		return nil, err
	}

	scores, err := collinear.VIF(cc, kept)
	if err != nil {
		return nil, err
	}
	flagged := collinear.Exceeding(scores, c.VIFThreshold)

	return &screenResult{
		section: &report.Screening{
			Drop:         drop,
			Correlations: m,
			HighPairs:    pairs,
			Removals:     removals,
			VIF:          scores,
			Flagged:      flagged,
			Candidates:   kept,
		},
		table:      cc,
		candidates: kept,
	}, nil
}

// selectStratum reduces one stratum to rows complete in the model
// columns and runs the three procedures over the shared candidate set.
func selectStratum(c *cfgpkg.Analysis, s stratumTable, candidates []string) (*stepwise.StratumResult, dataset.DropReport, error) {
	cols := append([]string{c.OutcomeColumn}, candidates...)
	cc, drop, err := dataset.CompleteCases(s.tab, cols)
	if err != nil {
		return nil, drop, err
	}
	opt := stepwise.Options{Alpha: c.Alpha, Penalty: c.CriterionPenalty}
	res, err := stepwise.Run(s.name, cc, c.OutcomeColumn, candidates, opt)
	if err != nil {
		return nil, drop, fmt.Errorf("%s stratum: %w", s.name, err)
	}
	return res, drop, nil
}

// validateStratum fits the given predictors on a seeded train partition
// of one stratum and scores both partitions, returning the fitted model
// for the report's summary table.
func validateStratum(c *cfgpkg.Analysis, s stratumTable, predictors []string) (model *regress.Model, train, test regress.Metrics, err error) {
	cols := append([]string{c.OutcomeColumn}, predictors...)
	cc, _, err := dataset.CompleteCases(s.tab, cols)
	if err != nil {
		return nil, train, test, err
	}
	trainTab, testTab, err := dataset.Split(cc, c.SplitRatio, c.Seed)
	if err != nil {
		return nil, train, test, err
	}
	model, err = regress.Fit(trainTab, c.OutcomeColumn, predictors)
	if err != nil {
		return nil, train, test, fmt.Errorf("%s stratum: %w", s.name, err)
	}
	if train, err = model.Evaluate(trainTab); err != nil {
		return nil, train, test, err
	}
	if test, err = model.Evaluate(testTab); err != nil {
		return nil, train, test, err
	}
	return model, train, test, nil
}

// lassoCheck cross-validates the penalty path over the screened table.
func lassoCheck(c *cfgpkg.Analysis, tab *dataset.Table, candidates []string) (*lasso.Result, error) {
	lc := lasso.DefaultConfig()
	lc.Folds = c.CVFolds
	lc.PathLen = c.LassoPathLen
	lc.Seed = c.Seed
	return lasso.Fit(tab, c.OutcomeColumn, candidates, lc)
}
