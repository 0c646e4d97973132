package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/alaynabinder/DIIG-Data-Challenge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set pipeline configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("delimiter: %s\n", cfg.Delimiter)
		fmt.Printf("outcome_column: %s\n", cfg.OutcomeColumn)
		fmt.Printf("status_column: %s\n", cfg.StatusColumn)
		fmt.Printf("anchor_column: %s\n", cfg.AnchorColumn)
		fmt.Printf("id_columns: %s\n", strings.Join(cfg.IDColumns, ", "))
		fmt.Printf("developed_label: %s\n", cfg.DevelopedLabel)
		fmt.Printf("developing_label: %s\n", cfg.DevelopingLabel)
		fmt.Printf("correlation_threshold: %.3f\n", cfg.CorrelationThreshold)
		fmt.Printf("vif_threshold: %.3f\n", cfg.VIFThreshold)
		if cfg.DecisionsFile != "" {
			fmt.Printf("decisions_file: %s\n", cfg.DecisionsFile)
		}
		fmt.Printf("alpha: %.3f\n", cfg.Alpha)
		fmt.Printf("criterion_penalty: %.3f\n", cfg.CriterionPenalty)
		fmt.Printf("cv_folds: %d\n", cfg.CVFolds)
		fmt.Printf("lasso_path_len: %d\n", cfg.LassoPathLen)
		fmt.Printf("split_ratio: %.3f\n", cfg.SplitRatio)
		fmt.Printf("seed: %d\n", cfg.Seed)
		fmt.Printf("overfit_gap_warn: %.3f\n", cfg.OverfitGapWarn)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "delimiter":
			cfg.Delimiter = val
		case "outcome_column":
			cfg.OutcomeColumn = val
		case "status_column":
			cfg.StatusColumn = val
		case "anchor_column":
			cfg.AnchorColumn = val
		case "id_columns":
			cols := strings.Split(val, ",")
			for i := range cols {
				cols[i] = strings.TrimSpace(cols[i])
			}
			cfg.IDColumns = cols
		case "developed_label":
			cfg.DevelopedLabel = val
		case "developing_label":
			cfg.DevelopingLabel = val
		case "correlation_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for correlation_threshold: %w", err)
			}
			cfg.CorrelationThreshold = f
		case "vif_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for vif_threshold: %w", err)
			}
			cfg.VIFThreshold = f
		case "decisions_file":
			cfg.DecisionsFile = val
		case "alpha":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for alpha: %w", err)
			}
			cfg.Alpha = f
		case "criterion_penalty":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for criterion_penalty: %w", err)
			}
			cfg.CriterionPenalty = f
		case "cv_folds":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for cv_folds: %w", err)
			}
			cfg.CVFolds = i
		case "lasso_path_len":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for lasso_path_len: %w", err)
			}
			cfg.LassoPathLen = i
		case "split_ratio":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for split_ratio: %w", err)
			}
			cfg.SplitRatio = f
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		case "overfit_gap_warn":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for overfit_gap_warn: %w", err)
			}
			cfg.OverfitGapWarn = f
		case "output_dir":
			cfg.OutputDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
