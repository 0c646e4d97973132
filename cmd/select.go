package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/report"
)

var selectLasso bool

var selectCmd = &cobra.Command{
	Use:   "select <csv>",
	Short: "Forward, backward, and stepwise selection over each stratum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		raw, err := loadTable(c, args[0])
		if err != nil {
			return err
		}
		res, err := cleanTable(c, raw)
		if err != nil {
			return err
		}
		scr, err := screen(c, res.Full)
		if err != nil {
			return err
		}

		rep := report.New(args[0], c, "")
		rep.Cleaning = &report.Cleaning{
			Anchor:     c.AnchorColumn,
			Full:       res.FullDrop,
			Developing: res.DevelopingDrop,
			Developed:  res.DevelopedDrop,
		}
		for _, s := range strata(res) {
			sr, drop, err := selectStratum(c, s, scr.candidates)
			if err != nil {
				return err
			}
			rep.Cleaning.ModelDrops = append(rep.Cleaning.ModelDrops,
				report.StratumDrop{Stratum: s.name, Drop: drop})
			rep.AddSelection(sr)
		}
		if selectLasso {
			lres, err := lassoCheck(c, scr.table, scr.candidates)
			if err != nil {
				return err
			}
			rep.Lasso = lres
		}
		fmt.Println(rep.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().BoolVar(&selectLasso, "lasso", false, "add the cross-validated L1 cross-check")
}
