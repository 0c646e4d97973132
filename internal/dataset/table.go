package dataset

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is an immutable view over a column-named data frame. Every operation
// returns a new Table; callers never see their input mutated.
type Table struct {
	df dataframe.DataFrame
}

// FromDataFrame wraps an existing data frame. The frame's error state is
// surfaced immediately rather than carried silently.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("data frame: %w", err)
	}
	return &Table{df: df}, nil
}

// NewTable builds a table from parallel float columns, mostly for derived
// frames and fixtures.
func NewTable(names []string, cols [][]float64) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("new table: no columns")
	}
	if len(names) != len(cols) {
		return nil, fmt.Errorf("new table: %d names for %d columns", len(names), len(cols))
	}
	ss := make([]series.Series, len(names))
	for i, name := range names {
		ss[i] = series.New(cols[i], series.Float, name)
	}
	return FromDataFrame(dataframe.New(ss...))
}

// Nrow returns the number of observation rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Columns returns the column names in frame order.
func (t *Table) Columns() []string { return t.df.Names() }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.df.Names() {
		if c == name {
			return true
		}
	}
	return false
}

// Numeric extracts a column as float64 values. Missing cells come back as
// NaN; callers that cannot tolerate NaN must check (see NumericStrict).
func (t *Table) Numeric(name string) ([]float64, error) {
	if !t.HasColumn(name) {
		return nil, &ColumnNotFoundError{Column: name}
	}
	s := t.df.Col(name)
	if s.Err != nil {
		return nil, fmt.Errorf("column %q: %w", name, s.Err)
	}
	return s.Float(), nil
}

// NumericStrict extracts a column as float64 values, failing on the first
// missing or non-numeric cell.
func (t *Table) NumericStrict(name string) ([]float64, error) {
	vals, err := t.Numeric(name)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, &MissingValueError{Column: name, Row: i}
		}
	}
	return vals, nil
}

// Strings extracts a column as raw string records.
func (t *Table) Strings(name string) ([]string, error) {
	if !t.HasColumn(name) {
		return nil, &ColumnNotFoundError{Column: name}
	}
	s := t.df.Col(name)
	if s.Err != nil {
		return nil, fmt.Errorf("column %q: %w", name, s.Err)
	}
	return s.Records(), nil
}

// Select projects the table onto the named columns.
func (t *Table) Select(names []string) (*Table, error) {
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, &ColumnNotFoundError{Column: n}
		}
	}
	return FromDataFrame(t.df.Select(names))
}

// Subset keeps only the rows at the given indices, in the given order.
func (t *Table) Subset(rows []int) (*Table, error) {
	return FromDataFrame(t.df.Subset(rows))
}

// WithColumn returns a table with the column set to the given float values,
// replacing an existing column of the same name or appending a new one.
func (t *Table) WithColumn(name string, vals []float64) (*Table, error) {
	if len(vals) != t.Nrow() {
		return nil, fmt.Errorf("column %q: %d values for %d rows", name, len(vals), t.Nrow())
	}
	return FromDataFrame(t.df.Mutate(series.New(vals, series.Float, name)))
}

// DropColumns returns a table without the named columns.
func (t *Table) DropColumns(names []string) (*Table, error) {
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, &ColumnNotFoundError{Column: n}
		}
	}
	return FromDataFrame(t.df.Drop(names))
}

// FilterEq keeps rows whose column equals the given float value.
func (t *Table) FilterEq(name string, value float64) (*Table, error) {
	if !t.HasColumn(name) {
		return nil, &ColumnNotFoundError{Column: name}
	}
	return FromDataFrame(t.df.Filter(dataframe.F{
		Colname:    name,
		Comparator: series.Eq,
		Comparando: value,
	}))
}

// NumericColumns returns the names of columns whose values parse as numeric,
// in frame order, excluding any names listed in skip.
func (t *Table) NumericColumns(skip ...string) []string {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[s] = struct{}{}
	}
	var out []string
	for _, name := range t.df.Names() {
		if _, ok := skipSet[name]; ok {
			continue
		}
		s := t.df.Col(name)
		if s.Err != nil {
			continue
		}
		switch s.Type() {
		case series.Float, series.Int:
			out = append(out, name)
		}
	}
	return out
}

// WriteCSV writes the table, header included, in CSV form. Missing cells
// are written as the NaN token the loader maps back to missing.
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Head returns up to n data rows as string records, header excluded.
func (t *Table) Head(n int) [][]string {
	recs := t.df.Records()
	if len(recs) <= 1 {
		return nil
	}
	rows := recs[1:]
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Levels returns the sorted distinct values of a string column.
func (t *Table) Levels(name string) ([]string, error) {
	recs, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(recs))
	var out []string
	for _, r := range recs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out, nil
}
