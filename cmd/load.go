package cmd

import (
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load and clean the dataset, then print the load diagnostics",
	Long: `The load command reads the configured input file, applies the funding year
filter, validation and coordinate imputation, and prints how many rows were
read, kept, skipped and imputed. No artifacts are written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		_, err = p.load(cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
