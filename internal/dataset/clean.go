package dataset

import (
	"fmt"
	"math"
)

// CleanConfig names the columns and labels the cleaning stage works with.
type CleanConfig struct {
	StatusColumn    string
	AnchorColumn    string
	DevelopedLabel  string
	DevelopingLabel string
}

// DropReport records how row deletion changed a table.
type DropReport struct {
	Column string `json:"column"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Dropped returns the number of removed rows.
func (r DropReport) Dropped() int { return r.Before - r.After }

// CleanResult carries the three independently cleaned views of the dataset.
type CleanResult struct {
	Full       *Table
	Developing *Table
	Developed  *Table

	FullDrop       DropReport
	DevelopingDrop DropReport
	DevelopedDrop  DropReport
}

// EncodeStatus replaces the status column with a binary indicator:
// developed label -> 1, developing label -> 0. Any other value is an error;
// the encoding is never guessed.
func EncodeStatus(t *Table, statusCol, developedLabel, developingLabel string) (*Table, error) {
	labels, err := t.Strings(statusCol)
	if err != nil {
		return nil, err
	}
	encoded := make([]float64, len(labels))
	for i, l := range labels {
		switch l {
		case developedLabel:
			encoded[i] = 1
		case developingLabel:
			encoded[i] = 0
		default:
			return nil, &UnknownLabelError{Column: statusCol, Label: l, Row: i}
		}
	}
	return t.WithColumn(statusCol, encoded)
}

// DropMissing removes every row whose anchor column is missing. No
// imputation happens here or anywhere else: the reference data's
// missingness clusters by country and period, so deletion is the policy.
// An anchor column that is missing everywhere yields an empty table, which
// the next fitting stage will reject loudly.
func DropMissing(t *Table, anchorCol string) (*Table, DropReport, error) {
	vals, err := t.Numeric(anchorCol)
	if err != nil {
		return nil, DropReport{}, err
	}
	keep := make([]int, 0, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			keep = append(keep, i)
		}
	}
	rep := DropReport{Column: anchorCol, Before: t.Nrow(), After: len(keep)}
	if len(keep) == t.Nrow() {
		return t, rep, nil
	}
	out, err := t.Subset(keep)
	if err != nil {
		return nil, DropReport{}, fmt.Errorf("drop missing %q: %w", anchorCol, err)
	}
	return out, rep, nil
}

// Clean produces the full, developing, and developed views. The status
// column is encoded once, the rows are partitioned by it, and each of the
// three tables gets its own missing-anchor drop, so the subset row counts
// need not sum to the full table's.
func Clean(raw *Table, cfg CleanConfig) (*CleanResult, error) {
	encoded, err := EncodeStatus(raw, cfg.StatusColumn, cfg.DevelopedLabel, cfg.DevelopingLabel)
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	developing, err := encoded.FilterEq(cfg.StatusColumn, 0)
	if err != nil {
		return nil, fmt.Errorf("developing subset: %w", err)
	}
	developed, err := encoded.FilterEq(cfg.StatusColumn, 1)
	if err != nil {
		return nil, fmt.Errorf("developed subset: %w", err)
	}

	res := &CleanResult{}
	if res.Full, res.FullDrop, err = DropMissing(encoded, cfg.AnchorColumn); err != nil {
		return nil, fmt.Errorf("clean full table: %w", err)
	}
	if res.Developing, res.DevelopingDrop, err = DropMissing(developing, cfg.AnchorColumn); err != nil {
		return nil, fmt.Errorf("clean developing subset: %w", err)
	}
	if res.Developed, res.DevelopedDrop, err = DropMissing(developed, cfg.AnchorColumn); err != nil {
		return nil, fmt.Errorf("clean developed subset: %w", err)
	}
	return res, nil
}

// CompleteCases removes every row missing a value in any of the given
// columns and reports the drop against the first column name. Modeling
// stages call this on exactly the columns entering a fit; on a fully
// cleaned table the drop is zero and the result is the input itself.
func CompleteCases(t *Table, cols []string) (*Table, DropReport, error) {
	if len(cols) == 0 {
		return t, DropReport{Before: t.Nrow(), After: t.Nrow()}, nil
	}
	bad := make([]bool, t.Nrow())
	for _, c := range cols {
		vals, err := t.Numeric(c)
		if err != nil {
			return nil, DropReport{}, err
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				bad[i] = true
			}
		}
	}
	keep := make([]int, 0, t.Nrow())
	for i, b := range bad {
		if !b {
			keep = append(keep, i)
		}
	}
	rep := DropReport{Column: cols[0], Before: t.Nrow(), After: len(keep)}
	if len(keep) == t.Nrow() {
		return t, rep, nil
	}
	out, err := t.Subset(keep)
	if err != nil {
		return nil, DropReport{}, fmt.Errorf("complete cases: %w", err)
	}
	return out, rep, nil
}

// DummyEncode expands a categorical column into drop-first indicator
// columns named "col=level" and removes the original column. The first
// (alphabetical) level becomes the baseline, keeping the design matrix
// full rank when an intercept is present.
func DummyEncode(t *Table, col string) (*Table, []string, error) {
	levels, err := t.Levels(col)
	if err != nil {
		return nil, nil, err
	}
	if len(levels) < 2 {
		return nil, nil, fmt.Errorf("dummy encode %q: need at least 2 levels, have %d", col, len(levels))
	}
	recs, err := t.Strings(col)
	if err != nil {
		return nil, nil, err
	}

	out := t
	names := make([]string, 0, len(levels)-1)
	for _, level := range levels[1:] {
		ind := make([]float64, len(recs))
		for i, r := range recs {
			if r == level {
				ind[i] = 1
			}
		}
		name := col + "=" + level
		if out, err = out.WithColumn(name, ind); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
	}
	if out, err = out.DropColumns([]string{col}); err != nil {
		return nil, nil, err
	}
	return out, names, nil
}
