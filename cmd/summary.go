package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alaynabinder/DIIG-Data-Challenge/internal/summary"
)

var (
	sumOutputPath string
	sumSampleRows int
	sumTopValues  int
	sumGroupBy    string
	sumOutliers   bool
	sumOutlierThr float64
)

var summaryCmd = &cobra.Command{
	Use:   "summary <csv>",
	Short: "Profile a dataset: column kinds, missingness, numeric spreads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		t, err := loadTable(c, args[0])
		if err != nil {
			return err
		}

		opt := summary.DefaultOptions()
		if sumSampleRows > 0 {
			opt.SampleRows = sumSampleRows
		}
		if sumTopValues > 0 {
			opt.TopValues = sumTopValues
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = sumOutliers
		} else {
			opt.Outliers = true
		}
		if sumOutlierThr > 0 {
			opt.OutlierThreshold = sumOutlierThr
		}
		opt.GroupBy = sumGroupBy
		if !cmd.Flags().Changed("group-by") && t.HasColumn(c.StatusColumn) {
			opt.GroupBy = c.StatusColumn
		}

		rep, err := summary.Describe(t, opt)
		if err != nil {
			return err
		}
		rep.Name = args[0]
		md := rep.Markdown()

		if sumOutputPath != "" {
			if err := os.WriteFile(sumOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", sumOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	summaryCmd.Flags().IntVar(&sumSampleRows, "sample-rows", 5, "number of sample rows to include")
	summaryCmd.Flags().IntVar(&sumTopValues, "top-values", 8, "top categorical values listed per column")
	summaryCmd.Flags().StringVar(&sumGroupBy, "group-by", "", "column to group numeric summaries by (default: the status column)")
	summaryCmd.Flags().BoolVar(&sumOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	summaryCmd.Flags().Float64Var(&sumOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers")
}
