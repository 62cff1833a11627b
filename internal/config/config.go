// =============================================================================
// Flood Control Pipeline - Configuration Module
// =============================================================================
//
// This module loads the pipeline configuration. Settings are layered:
//   1. Built-in defaults
//   2. The YAML config file (config.yaml unless --config says otherwise)
//   3. A .env file in the working directory, if present
//   4. FLOOD_* environment variables
//
// Later layers override earlier ones field by field. A missing config file is
// not an error; the defaults and environment still apply.
//
// ENVIRONMENT VARIABLES:
//   Every field can be overridden, for example:
//     FLOOD_INPUT_FILE=data/projects.xlsx
//     FLOOD_OUTPUT_DIR=out
//     FLOOD_FILTER_MIN_YEAR=2022
//     FLOOD_ANALYSIS_TREND_BASELINE=weighted_year
//     FLOOD_LOG_LEVEL=debug
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/flood-control-pipeline/internal/loader"
	"github.com/ginjaninja78/flood-control-pipeline/internal/reports"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FLOOD"

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds all pipeline settings.
type Config struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// InputFile is the dataset to load. A ".xlsx" extension selects the
	// workbook reader.
	// Default: "dpwh_flood_control_projects.csv"
	InputFile string `yaml:"input_file" envconfig:"INPUT_FILE"`

	// Delimiter is the CSV field delimiter.
	// Default: ","
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER"`

	// Sheet is the worksheet read from XLSX input. Empty selects the first.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir receives every report artifact.
	// Default: "."
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`

	// ArchiveDir, when set, receives a copy of each run's artifacts under
	// <archive_dir>/<timestamp>_<run-id>/.
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR"`

	Report1File string `yaml:"report1_file" envconfig:"REPORT1_FILE"`
	Report2File string `yaml:"report2_file" envconfig:"REPORT2_FILE"`
	Report3File string `yaml:"report3_file" envconfig:"REPORT3_FILE"`
	SummaryFile string `yaml:"summary_file" envconfig:"SUMMARY_FILE"`

	// WorkbookFile, when set, is an XLSX workbook with one sheet per report.
	WorkbookFile string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`

	// SQLitePath, when set, is a SQLite database the reports are stored in.
	// A relative path is resolved under OutputDir like the other artifacts.
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`

	// =========================================================================
	// ANALYSIS SETTINGS
	// =========================================================================

	Filter   FilterConfig   `yaml:"filter" envconfig:"FILTER"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Preview  PreviewConfig  `yaml:"preview" envconfig:"PREVIEW"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	// LogOutput is "console" (stderr), "file" or "both".
	// Default: "console"
	LogOutput string `yaml:"log_output" envconfig:"LOG_OUTPUT"`

	// LogFile is used when LogOutput is "file" or "both".
	// Default: "logs/pipeline.log"
	LogFile string `yaml:"log_file" envconfig:"LOG_FILE"`
}

// FilterConfig bounds the funding years retained by the loader.
type FilterConfig struct {
	MinYear int `yaml:"min_year" envconfig:"MIN_YEAR"`
	MaxYear int `yaml:"max_year" envconfig:"MAX_YEAR"`
}

// AnalysisConfig holds report thresholds and policies.
type AnalysisConfig struct {
	HighDelayDays    float64 `yaml:"high_delay_days" envconfig:"HIGH_DELAY_DAYS"`
	MinProjects      int     `yaml:"min_projects" envconfig:"MIN_PROJECTS"`
	TopContractors   int     `yaml:"top_contractors" envconfig:"TOP_CONTRACTORS"`
	DelayNormDays    float64 `yaml:"delay_norm_days" envconfig:"DELAY_NORM_DAYS"`
	RiskThreshold    float64 `yaml:"risk_threshold" envconfig:"RISK_THRESHOLD"`
	BaselineYear     int     `yaml:"baseline_year" envconfig:"BASELINE_YEAR"`
	TrendBaseline    string  `yaml:"trend_baseline" envconfig:"TREND_BASELINE"`
	ReliabilityClamp string  `yaml:"reliability_clamp" envconfig:"RELIABILITY_CLAMP"`
}

// PreviewConfig sets how many rows of each report are echoed to the console.
type PreviewConfig struct {
	Report1Rows int `yaml:"report1_rows" envconfig:"REPORT1_ROWS"`
	Report2Rows int `yaml:"report2_rows" envconfig:"REPORT2_ROWS"`
	Report3Rows int `yaml:"report3_rows" envconfig:"REPORT3_ROWS"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The YAML file. Empty means DefaultPath.
//
// RETURNS:
//   - The merged, defaulted and validated configuration.
//   - An error if a present file cannot be parsed or a value is invalid.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
//
// Load starts from these values, so a number written as 0 in the file or
// the environment stays 0.
func Default() *Config {
	defaults := reports.DefaultOptions()
	cfg := &Config{
		Filter: FilterConfig{MinYear: 2021, MaxYear: 2023},
		Analysis: AnalysisConfig{
			HighDelayDays:  defaults.HighDelayDays,
			MinProjects:    defaults.MinProjects,
			TopContractors: defaults.TopContractors,
			DelayNormDays:  defaults.DelayNormDays,
			RiskThreshold:  defaults.RiskThreshold,
			BaselineYear:   defaults.BaselineYear,
		},
		Preview: PreviewConfig{Report1Rows: 2, Report2Rows: 2, Report3Rows: 3},
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills text options left empty. An empty string is never a
// meaningful setting for these fields.
func applyDefaults(cfg *Config) {
	if cfg.InputFile == "" {
		cfg.InputFile = "dpwh_flood_control_projects.csv"
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Report1File == "" {
		cfg.Report1File = "report1_regional_summary.csv"
	}
	if cfg.Report2File == "" {
		cfg.Report2File = "report2_contractor_ranking.csv"
	}
	if cfg.Report3File == "" {
		cfg.Report3File = "report3_annual_trends.csv"
	}
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = "summary.json"
	}

	defaults := reports.DefaultOptions()
	if cfg.Analysis.TrendBaseline == "" {
		cfg.Analysis.TrendBaseline = string(defaults.TrendBaseline)
	}
	if cfg.Analysis.ReliabilityClamp == "" {
		cfg.Analysis.ReliabilityClamp = string(defaults.ReliabilityClamp)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogOutput == "" {
		cfg.LogOutput = "console"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join("logs", "pipeline.log")
	}
}

// validate checks the merged configuration.
func (c *Config) validate() error {
	if c.Filter.MinYear > c.Filter.MaxYear {
		return fmt.Errorf("filter.min_year (%d) must not exceed filter.max_year (%d)",
			c.Filter.MinYear, c.Filter.MaxYear)
	}
	if c.Analysis.HighDelayDays < 0 {
		return fmt.Errorf("analysis.high_delay_days must not be negative")
	}
	if c.Analysis.RiskThreshold < 0 {
		return fmt.Errorf("analysis.risk_threshold must not be negative")
	}
	if c.Preview.Report1Rows < 0 || c.Preview.Report2Rows < 0 || c.Preview.Report3Rows < 0 {
		return fmt.Errorf("preview row counts must not be negative")
	}

	if err := c.ReportOptions().Validate(); err != nil {
		return fmt.Errorf("analysis settings: %w", err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format '%s' (must be 'text' or 'json')", c.LogFormat)
	}
	switch c.LogOutput {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log_output '%s' (must be 'console', 'file' or 'both')", c.LogOutput)
	}

	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// LoaderOptions returns the loader settings.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		MinYear:   c.Filter.MinYear,
		MaxYear:   c.Filter.MaxYear,
		Delimiter: c.Delimiter,
		Sheet:     c.Sheet,
	}
}

// ReportOptions returns the report thresholds and policies.
func (c *Config) ReportOptions() reports.Options {
	return reports.Options{
		HighDelayDays:    c.Analysis.HighDelayDays,
		MinProjects:      c.Analysis.MinProjects,
		TopContractors:   c.Analysis.TopContractors,
		DelayNormDays:    c.Analysis.DelayNormDays,
		RiskThreshold:    c.Analysis.RiskThreshold,
		BaselineYear:     c.Analysis.BaselineYear,
		TrendBaseline:    reports.TrendBaseline(c.Analysis.TrendBaseline),
		ReliabilityClamp: reports.ReliabilityClamp(c.Analysis.ReliabilityClamp),
	}
}

// OutputPath joins name onto OutputDir. Empty names stay empty.
func (c *Config) OutputPath(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}
