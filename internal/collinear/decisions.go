package collinear

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Decision resolves one correlated pair: Keep names the member that stays
// in the predictor set. The choice is the analyst's, recorded here so it
// stays auditable apart from the fitting code.
type Decision struct {
	A    string `yaml:"a" json:"a"`
	B    string `yaml:"b" json:"b"`
	Keep string `yaml:"keep" json:"keep"`
}

// DecisionTable is the declarative set of pair resolutions.
type DecisionTable struct {
	Decisions []Decision `yaml:"decisions" json:"decisions"`
}

// DefaultDecisions returns the rulings for the cross-country life
// expectancy data: of each known proxy pair, the more policy-actionable
// member is retained.
func DefaultDecisions() *DecisionTable {
	return &DecisionTable{Decisions: []Decision{
		{A: "infant deaths", B: "under-five deaths", Keep: "under-five deaths"},
		{A: "thinness 1-19 years", B: "thinness 5-9 years", Keep: "thinness 5-9 years"},
		{A: "percentage expenditure", B: "GDP", Keep: "GDP"},
		{A: "Income composition of resources", B: "Schooling", Keep: "Schooling"},
	}}
}

// LoadDecisions reads a decision table from a YAML file.
func LoadDecisions(path string) (*DecisionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decisions: %w", err)
	}
	var dt DecisionTable
	if err := yaml.Unmarshal(data, &dt); err != nil {
		return nil, fmt.Errorf("parse decisions %s: %w", path, err)
	}
	if err := dt.Validate(); err != nil {
		return nil, fmt.Errorf("decisions %s: %w", path, err)
	}
	return &dt, nil
}

// Validate checks that every ruling keeps one of its own pair members and
// that no pair is ruled twice.
func (dt *DecisionTable) Validate() error {
	seen := make(map[[2]string]bool)
	for i, d := range dt.Decisions {
		if d.A == "" || d.B == "" {
			return fmt.Errorf("decision %d: empty pair member", i)
		}
		if d.A == d.B {
			return fmt.Errorf("decision %d: %q paired with itself", i, d.A)
		}
		if d.Keep != d.A && d.Keep != d.B {
			return fmt.Errorf("decision %d: keep %q is not a member of (%q, %q)", i, d.Keep, d.A, d.B)
		}
		key := pairKey(d.A, d.B)
		if seen[key] {
			return fmt.Errorf("decision %d: pair (%q, %q) ruled twice", i, d.A, d.B)
		}
		seen[key] = true
	}
	return nil
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func (dt *DecisionTable) find(a, b string) (Decision, bool) {
	key := pairKey(a, b)
	for _, d := range dt.Decisions {
		if pairKey(d.A, d.B) == key {
			return d, true
		}
	}
	return Decision{}, false
}

// UnresolvedPairError reports an offending pair the decision table has no
// ruling for. The table must be extended; the pipeline never picks a
// survivor on its own.
type UnresolvedPairError struct {
	Pair Pair
}

func (e *UnresolvedPairError) Error() string {
	return fmt.Sprintf("no ruling for correlated pair %q ~ %q (r=%.3f); extend the decision table",
		e.Pair.A, e.Pair.B, e.Pair.R)
}

// Removal records one applied ruling.
type Removal struct {
	Dropped string  `json:"dropped"`
	Kept    string  `json:"kept"`
	R       float64 `json:"r"`
}

// Apply resolves the offending pairs against the predictor list, strongest
// pair first. A pair whose member was already removed by an earlier ruling
// needs no further action. The returned list preserves the original
// predictor order.
func (dt *DecisionTable) Apply(predictors []string, pairs []Pair) ([]string, []Removal, error) {
	removed := make(map[string]bool)
	var removals []Removal
	for _, p := range pairs {
		if removed[p.A] || removed[p.B] {
			continue
		}
		d, ok := dt.find(p.A, p.B)
		if !ok {
			return nil, nil, &UnresolvedPairError{Pair: p}
		}
		drop := d.A
		if d.Keep == d.A {
			drop = d.B
		}
		removed[drop] = true
		removals = append(removals, Removal{Dropped: drop, Kept: d.Keep, R: p.R})
	}

	kept := make([]string, 0, len(predictors))
	for _, p := range predictors {
		if !removed[p] {
			kept = append(kept, p)
		}
	}
	return kept, removals, nil
}
