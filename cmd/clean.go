package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/dataset"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/report"
	"github.com/alaynabinder/DIIG-Data-Challenge/internal/utils"
)

var cleanOutDir string

var cleanCmd = &cobra.Command{
	Use:   "clean <csv>",
	Short: "Encode status, drop rows missing the anchor column, split strata",
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

		rep := report.New(args[0], c, "")
		rep.Cleaning = &report.Cleaning{
			Anchor:     c.AnchorColumn,
			Full:       res.FullDrop,
			Developing: res.DevelopingDrop,
			Developed:  res.DevelopedDrop,
		}
		fmt.Println(rep.Markdown())

		if cleanOutDir == "" {
			return nil
		}
		if err := utils.EnsureDir(cleanOutDir); err != nil {
			return err
		}
		for _, s := range strata(res) {
			path := filepath.Join(cleanOutDir, s.name+".csv")
			if err := writeTableCSV(s.tab, path); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n", path)
		}
		return nil
	},
}

func writeTableCSV(t *dataset.Table, path string) error {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutDir, "output", "o", "", "optional directory to write the cleaned strata as CSV")
}
