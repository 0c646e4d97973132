package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Analysis holds every tunable of the pipeline so that column names,
// thresholds, and seeds are parameters rather than literals scattered
// through the stages.
type Analysis struct {
	// Input schema
	Delimiter       string   `mapstructure:"delimiter" yaml:"delimiter" json:"delimiter"`
	OutcomeColumn   string   `mapstructure:"outcome_column" yaml:"outcome_column" json:"outcome_column"`
	StatusColumn    string   `mapstructure:"status_column" yaml:"status_column" json:"status_column"`
	AnchorColumn    string   `mapstructure:"anchor_column" yaml:"anchor_column" json:"anchor_column"`
	IDColumns       []string `mapstructure:"id_columns" yaml:"id_columns" json:"id_columns"`
	DevelopedLabel  string   `mapstructure:"developed_label" yaml:"developed_label" json:"developed_label"`
	DevelopingLabel string   `mapstructure:"developing_label" yaml:"developing_label" json:"developing_label"`

	// Collinearity screening
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" yaml:"correlation_threshold" json:"correlation_threshold"`
	VIFThreshold         float64 `mapstructure:"vif_threshold" yaml:"vif_threshold" json:"vif_threshold"`
	DecisionsFile        string  `mapstructure:"decisions_file" yaml:"decisions_file" json:"decisions_file,omitempty"`

	// Variable selection
	Alpha            float64 `mapstructure:"alpha" yaml:"alpha" json:"alpha"`
	CriterionPenalty float64 `mapstructure:"criterion_penalty" yaml:"criterion_penalty" json:"criterion_penalty"`

	// LASSO cross-check
	CVFolds      int `mapstructure:"cv_folds" yaml:"cv_folds" json:"cv_folds"`
	LassoPathLen int `mapstructure:"lasso_path_len" yaml:"lasso_path_len" json:"lasso_path_len"`

	// Validation
	SplitRatio     float64 `mapstructure:"split_ratio" yaml:"split_ratio" json:"split_ratio"`
	Seed           int64   `mapstructure:"seed" yaml:"seed" json:"seed"`
	OverfitGapWarn float64 `mapstructure:"overfit_gap_warn" yaml:"overfit_gap_warn" json:"overfit_gap_warn"`

	// Report output
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
}

// DelimiterRune converts the configured delimiter to a rune, defaulting to comma.
func (a *Analysis) DelimiterRune() rune {
	switch a.Delimiter {
	case "", ",":
		return ','
	case "\t", "tab":
		return '\t'
	case ";":
		return ';'
	default:
		return rune(a.Delimiter[0])
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.lifexp/config.yaml, creating the directory if necessary.
func Save(c *Analysis, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".lifexp")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Analysis, error) {
	v := viper.New()
	v.SetEnvPrefix("LIFEXP")
	v.AutomaticEnv()

	// Defaults mirror the documented reference run.
	v.SetDefault("delimiter", ",")
	v.SetDefault("outcome_column", "Life expectancy")
	v.SetDefault("status_column", "Status")
	v.SetDefault("anchor_column", "Population")
	v.SetDefault("id_columns", []string{"Country", "Year"})
	v.SetDefault("developed_label", "Developed")
	v.SetDefault("developing_label", "Developing")
	v.SetDefault("correlation_threshold", 0.90)
	v.SetDefault("vif_threshold", 10.0)
	v.SetDefault("decisions_file", "")
	v.SetDefault("alpha", 0.20)
	v.SetDefault("criterion_penalty", 2.0)
	v.SetDefault("cv_folds", 10)
	v.SetDefault("lasso_path_len", 60)
	v.SetDefault("split_ratio", 0.75)
	v.SetDefault("seed", int64(42))
	v.SetDefault("overfit_gap_warn", 0.05)
	v.SetDefault("output_dir", "lifexp-report")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".lifexp")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Analysis
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline cannot run with.
func (a *Analysis) Validate() error {
	if a.OutcomeColumn == "" {
		return fmt.Errorf("outcome_column must not be empty")
	}
	if a.AnchorColumn == "" {
		return fmt.Errorf("anchor_column must not be empty")
	}
	if a.CorrelationThreshold <= 0 || a.CorrelationThreshold > 1 {
		return fmt.Errorf("correlation_threshold %.3f out of (0, 1]", a.CorrelationThreshold)
	}
	if a.Alpha <= 0 || a.Alpha >= 1 {
		return fmt.Errorf("alpha %.3f out of (0, 1)", a.Alpha)
	}
	if a.SplitRatio <= 0 || a.SplitRatio >= 1 {
		return fmt.Errorf("split_ratio %.3f out of (0, 1)", a.SplitRatio)
	}
	if a.CVFolds < 2 {
		return fmt.Errorf("cv_folds %d must be at least 2", a.CVFolds)
	}
	return nil
}
