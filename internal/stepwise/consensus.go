package stepwise

import (
	"fmt"
	"sort"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

// StratumResult carries the three procedure paths for one population
// stratum.
type StratumResult struct {
	Stratum  string `json:"stratum"`
	Forward  *Path  `json:"forward"`
	Backward *Path  `json:"backward"`
	Both     *Path  `json:"both"`
}

// Run executes forward, backward, and bidirectional selection over one
// table with a shared candidate set.
func Run(stratum string, tab *dataset.Table, outcome string, candidates []string, opt Options) (*StratumResult, error) {
	fwd, err := Forward(tab, outcome, candidates, opt)
	if err != nil {
		return nil, fmt.Errorf("stratum %s: %w", stratum, err)
	}
	bwd, err := Backward(tab, outcome, candidates, opt)
	if err != nil {
		return nil, fmt.Errorf("stratum %s: %w", stratum, err)
	}
	both, err := Both(tab, outcome, candidates, opt)
	if err != nil {
		return nil, fmt.Errorf("stratum %s: %w", stratum, err)
	}
	return &StratumResult{Stratum: stratum, Forward: fwd, Backward: bwd, Both: both}, nil
}

// Disagreement is a predictor not selected by every procedure, with the
// procedures that did pick it.
type Disagreement struct {
	Column     string   `json:"column"`
	SelectedBy []string `json:"selected_by"`
}

// Consensus is the procedure-level agreement for one stratum: variables
// all three procedures selected, and the contested remainder. Contested
// variables are a reported finding, never silently resolved.
type Consensus struct {
	Stratum  string         `json:"stratum"`
	Agreed   []string       `json:"agreed"`
	Disputed []Disagreement `json:"disputed,omitempty"`
}

// Summarize computes the consensus of one stratum's three paths. Agreed
// variables keep the forward path's entry order; disputed ones are listed
// alphabetically.
func Summarize(r *StratumResult) *Consensus {
	votes := map[string][]string{}
	record := func(p *Path) {
		for _, col := range p.Selected {
			votes[col] = append(votes[col], p.Procedure)
		}
	}
	record(r.Forward)
	record(r.Backward)
	record(r.Both)

	c := &Consensus{Stratum: r.Stratum}
	agreed := map[string]bool{}
	for col, by := range votes {
		if len(by) == 3 {
			agreed[col] = true
		} else {
			c.Disputed = append(c.Disputed, Disagreement{Column: col, SelectedBy: by})
		}
	}

	// Three votes always include a forward vote, so the forward order
	// covers every agreed column.
	for _, col := range r.Forward.Selected {
		if agreed[col] {
			c.Agreed = append(c.Agreed, col)
		}
	}
	sort.Slice(c.Disputed, func(a, b int) bool {
		return c.Disputed[a].Column < c.Disputed[b].Column
	})
	return c
}
