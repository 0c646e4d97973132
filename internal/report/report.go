// Package report assembles the artifacts of one pipeline run into a
// single record persisted as JSON next to a rendered markdown view. The
// record is append-only while the run progresses; stages attach their
// sections and the final Save writes both files atomically.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/collinear"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/config"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/lasso"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/regress"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/stepwise"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/summary"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/utils"
)

const (
	jsonFileName     = "results.json"
	markdownFileName = "report.md"
)

// Report is the persisted record of one pipeline run.
type Report struct {
	RunID     string           `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
	Input     string           `json:"input,omitempty"`
	Config    *config.Analysis `json:"config,omitempty"`

	Profile    *summary.Report `json:"profile,omitempty"`
	Cleaning   *Cleaning       `json:"cleaning,omitempty"`
	Screening  *Screening      `json:"screening,omitempty"`
	Selection  []Selection     `json:"selection,omitempty"`
	Lasso      *lasso.Result   `json:"lasso,omitempty"`
	Validation []Validation    `json:"validation,omitempty"`
	Notes      []string        `json:"notes,omitempty"`

	// Not serialized: on-disk location of the artifacts.
	rootDir string
}

// Cleaning records the anchor-column drops for each partition and any
// later complete-case restriction applied at the modeling boundary.
type Cleaning struct {
	Anchor     string             `json:"anchor_column"`
	Full       dataset.DropReport `json:"full"`
	Developing dataset.DropReport `json:"developing"`
	Developed  dataset.DropReport `json:"developed"`
	ModelDrops []StratumDrop      `json:"model_drops,omitempty"`
}

// StratumDrop is one stratum's complete-case restriction.
type StratumDrop struct {
	Stratum string             `json:"stratum"`
	Drop    dataset.DropReport `json:"drop"`
}

// Screening captures the collinearity pass: the complete-case cut the
// matrix was computed on, the full correlation matrix, the pairs over
// threshold with the rulings that resolved them, and the inflation
// factors of the surviving candidate set.
type Screening struct {
	Drop         dataset.DropReport  `json:"complete_case_drop"`
	Correlations *collinear.Matrix   `json:"correlations,omitempty"`
	HighPairs    []collinear.Pair    `json:"high_pairs,omitempty"`
	Removals     []collinear.Removal `json:"removals,omitempty"`
	VIF          []collinear.Score   `json:"vif,omitempty"`
	Flagged      []collinear.Score   `json:"vif_flagged,omitempty"`
	Candidates   []string            `json:"candidates"`
}

// Selection pairs one stratum's three procedure paths with their consensus.
type Selection struct {
	stepwise.StratumResult
	Consensus *stepwise.Consensus `json:"consensus"`
}

// Validation is the holdout scorecard for one stratum's consensus model,
// carrying the train-fitted model so the artifact includes its summary.
type Validation struct {
	Stratum    string          `json:"stratum"`
	Predictors []string        `json:"predictors"`
	Model      *regress.Model  `json:"model,omitempty"`
	Train      regress.Metrics `json:"train"`
	Test       regress.Metrics `json:"test"`
	Gap        float64         `json:"gap"`
	Overfit    bool            `json:"overfit,omitempty"`
}

type validationJSON struct {
	Stratum    string          `json:"stratum"`
	Predictors []string        `json:"predictors"`
	Model      *regress.Model  `json:"model,omitempty"`
	Train      regress.Metrics `json:"train"`
	Test       regress.Metrics `json:"test"`
	Gap        *float64        `json:"gap"`
	Overfit    bool            `json:"overfit,omitempty"`
}

// MarshalJSON nulls an undefined gap; encoding/json refuses non-finite
// numbers.
func (v Validation) MarshalJSON() ([]byte, error) {
	a := validationJSON{
		Stratum:    v.Stratum,
		Predictors: v.Predictors,
		Model:      v.Model,
		Train:      v.Train,
		Test:       v.Test,
		Overfit:    v.Overfit,
	}
	if !math.IsNaN(v.Gap) && !math.IsInf(v.Gap, 0) {
		g := v.Gap
		a.Gap = &g
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores a nulled gap as NaN.
func (v *Validation) UnmarshalJSON(b []byte) error {
	var a validationJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*v = Validation{
		Stratum:    a.Stratum,
		Predictors: a.Predictors,
		Model:      a.Model,
		Train:      a.Train,
		Test:       a.Test,
		Gap:        math.NaN(),
		Overfit:    a.Overfit,
	}
	if a.Gap != nil {
		v.Gap = *a.Gap
	}
	return nil
}

// New constructs an in-memory run record. Call Save to persist.
func New(input string, cfg *config.Analysis, outDir string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now(),
		Input:     input,
		Config:    cfg,
		rootDir:   outDir,
	}
}

// Load reads a previously saved results.json from dir.
func Load(dir string) (*Report, error) {
	path := filepath.Join(dir, jsonFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("report not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	r.rootDir = dir
	return &r, nil
}

// RootDir returns the directory the report persists into.
func (r *Report) RootDir() string { return r.rootDir }

// Save writes results.json and report.md into the output directory using
// atomic writes.
func (r *Report) Save() error {
	if r.rootDir == "" {
		return errors.New("report output directory not set")
	}
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(r.rootDir, jsonFileName), data); err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(r.rootDir, markdownFileName), []byte(r.Markdown()))
}

// Note records a run-level observation that should survive into the
// artifact alongside the section data.
func (r *Report) Note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// AddSelection attaches one stratum's selection paths and computes their
// consensus.
func (r *Report) AddSelection(res *stepwise.StratumResult) {
	r.Selection = append(r.Selection, Selection{StratumResult: *res, Consensus: stepwise.Summarize(res)})
}

// AddValidation records holdout metrics for one stratum together with
// the model fitted on its train partition. When warnAt is positive and
// the train/test R2 gap exceeds it, the entry is flagged and a note is
// recorded.
func (r *Report) AddValidation(stratum string, model *regress.Model, train, test regress.Metrics, warnAt float64) {
	v := Validation{
		Stratum: stratum,
		Model:   model,
		Train:   train,
		Test:    test,
		Gap:     train.R2 - test.R2,
	}
	if model != nil {
		v.Predictors = append([]string(nil), model.Predictors...)
	}
	if warnAt > 0 && v.Gap > warnAt {
		v.Overfit = true
		r.Note("stratum %s: train/test R2 gap %.4f exceeds %.4f", stratum, v.Gap, warnAt)
	}
	r.Validation = append(r.Validation, v)
}

// Markdown renders the report as sectioned text mirroring the JSON
// artifact.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN]\n")
	fmt.Fprintf(&b, "ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "Created: %s\n", r.CreatedAt.Format(time.RFC3339))
	if r.Input != "" {
		fmt.Fprintf(&b, "Input: %s\n", r.Input)
	}

	if r.Profile != nil {
		b.WriteString("\n")
		b.WriteString(r.Profile.Markdown())
	}
	if r.Cleaning != nil {
		renderCleaning(&b, r.Cleaning)
	}
	if r.Screening != nil {
		renderScreening(&b, r.Screening)
	}
	if len(r.Selection) > 0 && r.Config != nil {
		b.WriteString("\n[SELECTION SETTINGS]\n")
		fmt.Fprintf(&b, "Forward entry: alpha %.2f (chi-squared(1) k=%.3f)\n",
			r.Config.Alpha, stepwise.EquivalentPenalty(r.Config.Alpha))
		fmt.Fprintf(&b, "Backward/stepwise criterion penalty: %g\n", r.Config.CriterionPenalty)
	}
	for i := range r.Selection {
		renderSelection(&b, &r.Selection[i])
	}
	renderConsensus(&b, r.Selection)
	if r.Lasso != nil {
		renderLasso(&b, r.Lasso)
	}
	if len(r.Validation) > 0 {
		renderValidation(&b, r.Validation)
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func renderCleaning(b *strings.Builder, c *Cleaning) {
	b.WriteString("\n[CLEANING]\n")
	fmt.Fprintf(b, "Rows dropped for missing %s:\n", c.Anchor)
	renderDrop(b, "full", c.Full)
	renderDrop(b, "developing", c.Developing)
	renderDrop(b, "developed", c.Developed)
	for _, md := range c.ModelDrops {
		fmt.Fprintf(b, "- %s modeling rows: %d -> %d (dropped %d incomplete)\n",
			md.Stratum, md.Drop.Before, md.Drop.After, md.Drop.Dropped())
	}
}

func renderDrop(b *strings.Builder, label string, d dataset.DropReport) {
	fmt.Fprintf(b, "- %s: %d -> %d (dropped %d)\n", label, d.Before, d.After, d.Dropped())
}

func renderScreening(b *strings.Builder, s *Screening) {
	b.WriteString("\n[CORRELATION]\n")
	if s.Drop.Before > 0 {
		fmt.Fprintf(b, "Rows: %d -> %d (dropped %d incomplete)\n",
			s.Drop.Before, s.Drop.After, s.Drop.Dropped())
	}
	if s.Correlations != nil {
		renderMatrix(b, s.Correlations)
	}
	if len(s.HighPairs) > 0 {
		b.WriteString("High pairs:\n")
		ruling := make(map[string]collinear.Removal, len(s.Removals))
		for _, rm := range s.Removals {
			ruling[rm.Dropped+"\x00"+rm.Kept] = rm
			ruling[rm.Kept+"\x00"+rm.Dropped] = rm
		}
		for _, p := range s.HighPairs {
			fmt.Fprintf(b, "- %s ~ %s: r=%.3f", p.A, p.B, p.R)
			if rm, ok := ruling[p.A+"\x00"+p.B]; ok {
				fmt.Fprintf(b, " -> kept %s", rm.Kept)
			}
			b.WriteString("\n")
		}
	}
	if len(s.VIF) > 0 {
		b.WriteString("\n[VIF]\n")
		for _, sc := range s.VIF {
			fmt.Fprintf(b, "- %s: %s\n", sc.Column, vifString(sc.VIF))
		}
		if len(s.Flagged) > 0 {
			b.WriteString("Over threshold:\n")
			for _, sc := range s.Flagged {
				fmt.Fprintf(b, "- %s: %s\n", sc.Column, vifString(sc.VIF))
			}
		}
	}
	b.WriteString("\n[REDUCED PREDICTORS]\n")
	fmt.Fprintf(b, "Candidates (%d): %s\n", len(s.Candidates), strings.Join(s.Candidates, ", "))
}

func renderMatrix(b *strings.Builder, m *collinear.Matrix) {
	b.WriteString("|  |")
	for _, c := range m.Columns {
		fmt.Fprintf(b, " %s |", c)
	}
	b.WriteString("\n| --- |")
	for range m.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for i, row := range m.Values {
		fmt.Fprintf(b, "| %s |", m.Columns[i])
		for _, v := range row {
			fmt.Fprintf(b, " %.2f |", v)
		}
		b.WriteString("\n")
	}
}

func vifString(v float64) string {
	if math.IsInf(v, 0) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}

func renderSelection(b *strings.Builder, sel *Selection) {
	fmt.Fprintf(b, "\n[SELECTION: %s]\n", sel.Stratum)
	renderPath(b, sel.Forward)
	renderPath(b, sel.Backward)
	renderPath(b, sel.Both)
}

func renderConsensus(b *strings.Builder, sels []Selection) {
	first := true
	for i := range sels {
		c := sels[i].Consensus
		if c == nil {
			continue
		}
		if first {
			b.WriteString("\n[CONSENSUS]\n")
			first = false
		}
		fmt.Fprintf(b, "- %s: %s\n", c.Stratum, columnList(c.Agreed))
		for _, d := range c.Disputed {
			fmt.Fprintf(b, "  disputed %s (%s)\n", d.Column, strings.Join(d.SelectedBy, ", "))
		}
	}
}

func renderPath(b *strings.Builder, p *stepwise.Path) {
	if p == nil {
		return
	}
	fmt.Fprintf(b, "%s:\n", p.Procedure)
	for _, s := range p.Steps {
		mark := "+"
		if s.Action == "drop" {
			mark = "-"
		}
		fmt.Fprintf(b, "  %s %s (rss %.6g, criterion %.4f", mark, s.Column, s.RSS, s.Criterion)
		if s.FStat != 0 || s.PValue != 0 {
			fmt.Fprintf(b, ", F %.4g, p %.3g", s.FStat, s.PValue)
		}
		b.WriteString(")\n")
	}
	fmt.Fprintf(b, "  selected: %s\n", columnList(p.Selected))
}

func renderLasso(b *strings.Builder, res *lasso.Result) {
	b.WriteString("\n[LASSO]\n")
	fmt.Fprintf(b, "lambda: %.6g (index %d of %d)\n", res.Best.Lambda, res.BestIdx, len(res.Lambdas))
	fmt.Fprintf(b, "survivors (%d): %s\n", len(res.Survivors), columnList(res.Survivors))
	if res.AllKept {
		b.WriteString("eliminated: none; the cross-validated penalty keeps every candidate\n")
	} else {
		fmt.Fprintf(b, "eliminated (%d): %s\n", len(res.Eliminated), columnList(res.Eliminated))
	}
}

func renderValidation(b *strings.Builder, vs []Validation) {
	b.WriteString("\n[VALIDATION]\n")
	for _, v := range vs {
		fmt.Fprintf(b, "- %s: train R2 %.4f RMSE %.4g (n=%d); test R2 %.4f RMSE %.4g (n=%d); gap %.4f\n",
			v.Stratum, v.Train.R2, v.Train.RMSE, v.Train.N, v.Test.R2, v.Test.RMSE, v.Test.N, v.Gap)
		if v.Overfit {
			fmt.Fprintf(b, "  flagged: train/test gap over threshold\n")
		}
		if v.Model == nil {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(v.Model.Summary(), "\n"), "\n") {
			fmt.Fprintf(b, "  %s\n", line)
		}
	}
}

func columnList(cols []string) string {
	if len(cols) == 0 {
		return "(none)"
	}
	return strings.Join(cols, ", ")
}
