package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/report"
)

var collinearityCmd = &cobra.Command{
	Use:   "collinearity <csv>",
	Short: "Correlation matrix, decision-table pruning, and VIF scores",
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
		rep.Screening = scr.section
		fmt.Println(rep.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collinearityCmd)
}
