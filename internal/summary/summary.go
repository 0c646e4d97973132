// Package summary profiles a loaded table before any modeling happens.
// Beyond per-column kind and spread statistics, it can count robust
// outliers and break numeric columns down by the levels of a grouping
// column.
package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
)

// Column kinds, decided by the loaded series types rather than re-parsing values.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

const maxGroups = 20

// Options controls how much detail Describe collects.
type Options struct {
	// SampleRows caps the number of example rows included in the report.
	SampleRows int
	// TopValues caps the number of distinct values listed per categorical column.
	TopValues int
	// GroupBy names a column whose levels receive their own numeric summaries.
	GroupBy string
	// Outliers enables robust z-score counting on numeric columns.
	Outliers bool
	// OutlierThreshold is the |z| cutoff for the outlier count. Zero means 3.5.
	OutlierThreshold float64
}

// DefaultOptions returns the detail level used by the summary command.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8, OutlierThreshold: 3.5}
}

// Report is a column-by-column profile of one table.
type Report struct {
	Name    string          `json:"name,omitempty"`
	Rows    int             `json:"rows"`
	Cols    []ColumnSummary `json:"columns"`
	Groups  []GroupSummary  `json:"groups,omitempty"`
	Samples [][]string      `json:"samples,omitempty"`
}

// ColumnSummary captures kind, missingness, and statistics for one column.
// Numeric fields are populated only for numeric columns, top values only
// for categorical ones.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`

	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`

	Outliers  int     `json:"outliers,omitempty"`
	MaxAbsZ   float64 `json:"max_abs_z,omitempty"`
	Threshold float64 `json:"outlier_threshold,omitempty"`

	Unique    int          `json:"unique,omitempty"`
	TopValues []ValueCount `json:"top_values,omitempty"`
}

// ValueCount is one categorical level and its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupSummary aggregates the numeric columns over one level of the
// grouping column.
type GroupSummary struct {
	Key     string                `json:"key"`
	Size    int                   `json:"size"`
	Metrics map[string]NumSummary `json:"metrics"`
}

// NumSummary is the per-group view of one numeric column.
type NumSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Describe profiles every column of t. The table is read as loaded;
// missing numeric cells count toward Missing and are excluded from the
// statistics.
func Describe(t *dataset.Table, opt Options) (*Report, error) {
	if opt.SampleRows <= 0 {
		opt.SampleRows = 5
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	if opt.OutlierThreshold <= 0 {
		opt.OutlierThreshold = 3.5
	}

	numeric := make(map[string]bool)
	for _, name := range t.NumericColumns() {
		numeric[name] = true
	}

	rep := &Report{Rows: t.Nrow(), Samples: t.Head(opt.SampleRows)}
	for _, name := range t.Columns() {
		var (
			col ColumnSummary
			err error
		)
		if numeric[name] {
			col, err = describeNumeric(t, name, opt)
		} else {
			col, err = describeCategorical(t, name, opt)
		}
		if err != nil {
			return nil, err
		}
		rep.Cols = append(rep.Cols, col)
	}

	if opt.GroupBy != "" {
		groups, err := groupBy(t, opt.GroupBy)
		if err != nil {
			return nil, err
		}
		rep.Groups = groups
	}
	return rep, nil
}

func describeNumeric(t *dataset.Table, name string, opt Options) (ColumnSummary, error) {
	vals, err := t.Numeric(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	col := ColumnSummary{
		Name:    name,
		Kind:    KindNumeric,
		NonNull: len(clean),
		Missing: len(vals) - len(clean),
	}
	if len(clean) == 0 {
		return col, nil
	}
	col.Min = floats.Min(clean)
	col.Max = floats.Max(clean)
	col.Mean = stat.Mean(clean, nil)
	if len(clean) > 1 {
		col.Std = stat.StdDev(clean, nil)
	}
	if opt.Outliers && len(clean) >= 8 {
		med, mad := medianMAD(clean)
		if mad > 0 {
			col.Threshold = opt.OutlierThreshold
			for _, v := range clean {
				// 0.6745 scales MAD to the stdev of a normal sample.
				z := math.Abs(0.6745 * (v - med) / mad)
				if z > col.Threshold {
					col.Outliers++
				}
				if z > col.MaxAbsZ {
					col.MaxAbsZ = z
				}
			}
		}
	}
	return col, nil
}

func describeCategorical(t *dataset.Table, name string, opt Options) (ColumnSummary, error) {
	recs, err := t.Strings(name)
	if err != nil {
		return ColumnSummary{}, err
	}
	col := ColumnSummary{Name: name, Kind: KindCategorical}
	counts := make(map[string]int)
	for _, v := range recs {
		v = strings.TrimSpace(v)
		if v == "" || v == "NaN" {
			col.Missing++
			continue
		}
		col.NonNull++
		counts[v]++
	}
	col.Unique = len(counts)
	tops := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		tops = append(tops, ValueCount{Value: v, Count: n})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > opt.TopValues {
		tops = tops[:opt.TopValues]
	}
	col.TopValues = tops
	return col, nil
}

func groupBy(t *dataset.Table, column string) ([]GroupSummary, error) {
	keys, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	rows := make(map[string][]int)
	for i, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		rows[k] = append(rows[k], i)
	}
	numCols := t.NumericColumns(column)
	out := make([]GroupSummary, 0, len(rows))
	for k, idx := range rows {
		sub, err := t.Subset(idx)
		if err != nil {
			return nil, err
		}
		g := GroupSummary{Key: k, Size: len(idx), Metrics: make(map[string]NumSummary, len(numCols))}
		for _, name := range numCols {
			vals, err := sub.Numeric(name)
			if err != nil {
				return nil, err
			}
			var ns NumSummary
			for _, v := range vals {
				if math.IsNaN(v) {
					continue
				}
				if ns.Count == 0 || v < ns.Min {
					ns.Min = v
				}
				if ns.Count == 0 || v > ns.Max {
					ns.Max = v
				}
				ns.Mean += v
				ns.Count++
			}
			if ns.Count == 0 {
				continue
			}
			ns.Mean /= float64(ns.Count)
			g.Metrics[name] = ns
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > maxGroups {
		out = out[:maxGroups]
	}
	return out, nil
}

// Markdown renders the report as sectioned text, one block per concern.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "Source: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", c.Name, c.Kind, c.NonNull, missPct)
		switch c.Kind {
		case KindNumeric:
			fmt.Fprintf(&b, "; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std)
			if c.Threshold > 0 {
				fmt.Fprintf(&b, "; outliers %d at |z|>%.1f (max |z| %.2f)", c.Outliers, c.Threshold, c.MaxAbsZ)
			}
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, tv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", cellValue(tv.Value), tv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP SUMMARY]\n")
		for _, g := range r.Groups {
			fmt.Fprintf(&b, "- %s (n=%d)\n", g.Key, g.Size)
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				m := g.Metrics[k]
				fmt.Fprintf(&b, "  * %s: mean %.4g (min %.4g, max %.4g)\n", k, m.Mean, m.Min, m.Max)
			}
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n|")
		for _, c := range r.Cols {
			fmt.Fprintf(&b, " %s |", cellValue(c.Name))
		}
		b.WriteString("\n|")
		for range r.Cols {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("|")
			for i := range r.Cols {
				val := ""
				if i < len(row) {
					val = row[i]
				}
				fmt.Fprintf(&b, " %s |", cellValue(val))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// cellValue makes a raw value safe inside a markdown table cell.
func cellValue(s string) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	if s == "" {
		return "-"
	}
	return s
}

// medianMAD returns the median and the median absolute deviation of vals.
func medianMAD(vals []float64) (med, mad float64) {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	med = midpoint(cp)
	for i, v := range cp {
		cp[i] = math.Abs(v - med)
	}
	sort.Float64s(cp)
	mad = midpoint(cp)
	return med, mad
}

// midpoint returns the median of an already sorted slice.
func midpoint(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
