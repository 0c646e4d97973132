package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/report"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/stepwise"
)

var validateCmd = &cobra.Command{
	Use:   "validate <csv>",
	Short: "Score the consensus model on a seeded train/test split",
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
		validated := 0
		for _, s := range strata(res) {
			sr, _, err := selectStratum(c, s, scr.candidates)
			if err != nil {
				return err
			}
			cons := stepwise.Summarize(sr)
			if len(cons.Agreed) == 0 {
				rep.Note("%s stratum: no consensus variables; validation skipped", s.name)
				continue
			}
			model, train, test, err := validateStratum(c, s, cons.Agreed)
			if err != nil {
				return err
			}
			rep.AddValidation(s.name, model, train, test, c.OverfitGapWarn)
			validated++
		}
		if validated == 0 {
			return errors.New("no stratum produced consensus variables to validate")
		}
		fmt.Println(rep.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
