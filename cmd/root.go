// =============================================================================
// Flood Control Pipeline - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Run without a
// subcommand, the root command starts the interactive menu.
//
// COBRA CLI STRUCTURE:
//   rootCmd (floodreport)          interactive menu
//   ├── menuCmd (floodreport menu)      interactive menu
//   ├── loadCmd (floodreport load)      load + diagnostics only
//   ├── reportCmd (floodreport report)  load + every artifact + previews
//   └── versionCmd (floodreport version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/flood-control-pipeline/internal/config"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "floodreport",
	Short: "Flood control project analytics - cleaning, reports and summary",
	Long: `floodreport loads a public-works flood control project dataset (CSV or
XLSX), cleans and imputes it, and produces three analytical reports plus a
JSON summary.

Reports:
  1. Regional Flood Mitigation Efficiency Summary
  2. Top Contractors Performance Ranking
  3. Annual Project Type Cost Overrun Trends

Example Usage:
  floodreport                          # Interactive menu
  floodreport report                   # Load and write every artifact
  floodreport report --config my.yaml  # Use a custom configuration file
  FLOOD_OUTPUT_DIR=out floodreport report`,

	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenuCommand(cmd)
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
