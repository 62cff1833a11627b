package cmd

import (
	"github.com/spf13/cobra"
)

// inputFile overrides input_file for a single run.
var inputFile string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Load the dataset and write every report artifact",
	Long: `The report command loads the configured dataset and writes:
  - report1_regional_summary.csv   (Regional Efficiency)
  - report2_contractor_ranking.csv (Contractor Ranking)
  - report3_annual_trends.csv      (Annual Type Trends)
  - summary.json
plus the optional XLSX workbook, SQLite database and run archive when they
are configured. A short preview of each report is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if inputFile != "" {
			p.cfg.InputFile = inputFile
		}

		out := cmd.OutOrStdout()
		if _, err := p.load(out); err != nil {
			return err
		}
		return p.generate(out)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(
		&inputFile,
		"input",
		"i",
		"",
		"Dataset to load (overrides input_file)",
	)
}
