package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/report"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/summary"
)

var (
	runOutputDir string
	runSkipLasso bool
)

var runCmd = &cobra.Command{
	Use:   "run <csv>",
	Short: "Run the full pipeline and persist the report bundle",
	Long: `run executes every stage in order: profile, clean, collinearity
screen, selection over each stratum, the L1 cross-check, and holdout
validation of each stratum's consensus model. The evidence is written to
results.json and report.md in the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		outDir := c.OutputDir
		if runOutputDir != "" {
			outDir = runOutputDir
		}
		raw, err := loadTable(c, args[0])
		if err != nil {
			return err
		}

		rep := report.New(args[0], c, outDir)

		popt := summary.DefaultOptions()
		if raw.HasColumn(c.StatusColumn) {
			popt.GroupBy = c.StatusColumn
		}
		profile, err := summary.Describe(raw, popt)
		if err != nil {
			return err
		}
		profile.Name = filepath.Base(args[0])
		rep.Profile = profile

		res, err := cleanTable(c, raw)
		if err != nil {
			return err
		}
		rep.Cleaning = &report.Cleaning{
			Anchor:     c.AnchorColumn,
			Full:       res.FullDrop,
			Developing: res.DevelopingDrop,
			Developed:  res.DevelopedDrop,
		}

		scr, err := screen(c, res.Full)
		if err != nil {
			return err
		}
		rep.Screening = scr.section

		for _, s := range strata(res) {
			sr, drop, err := selectStratum(c, s, scr.candidates)
			if err != nil {
				return err
			}
			rep.Cleaning.ModelDrops = append(rep.Cleaning.ModelDrops,
				report.StratumDrop{Stratum: s.name, Drop: drop})
			rep.AddSelection(sr)
		}

		if !runSkipLasso {
			lres, err := lassoCheck(c, scr.table, scr.candidates)
			if err != nil {
				return err
			}
			rep.Lasso = lres
		}

		// Selections were appended in stratum order.
		for i, s := range strata(res) {
			cons := rep.Selection[i].Consensus
			if cons == nil || len(cons.Agreed) == 0 {
				rep.Note("%s stratum: no consensus variables; validation skipped", s.name)
				continue
			}
			model, train, test, err := validateStratum(c, s, cons.Agreed)
			if err != nil {
				return err
			}
			rep.AddValidation(s.name, model, train, test, c.OverfitGapWarn)
		}

		if err := rep.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Report written to %s\n", rep.RootDir())
		fmt.Printf("  run id: %s\n", rep.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "report output directory (default: config output_dir)")
	runCmd.Flags().BoolVar(&runSkipLasso, "skip-lasso", false, "skip the L1 cross-check")
}
