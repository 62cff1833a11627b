package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/flood-control-pipeline/internal/dataset"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive menu (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenuCommand(cmd)
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenuCommand(cmd *cobra.Command) error {
	p, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return runMenu(p, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runMenu drives the interactive session until the user declines to go back
// to the menu or input ends.
func runMenu(p *pipeline, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintln(out, "Select Language Implementation:")
		fmt.Fprintln(out, "[1] Load the file")
		fmt.Fprint(out, "[2] Generate Reports\n\n")

		choice, ok := prompt(scanner, out, "Enter choice: ")
		if !ok {
			return scanner.Err()
		}

		switch choice {
		case "1":
			if _, err := p.load(out); err != nil {
				fmt.Fprintf(out, "Failed to load file: %v\n\n", err)
			}
		case "2":
			fmt.Fprintln(out)
			if err := p.generate(out); err != nil {
				if errors.Is(err, dataset.ErrNotLoaded) {
					fmt.Fprint(out, "Error: No data loaded. Please load the CSV file first (option 1).\n\n")
				} else {
					fmt.Fprintf(out, "Error: %v\n\n", err)
				}
			}

			back, ok := askBack(scanner, out)
			if !ok {
				return scanner.Err()
			}
			if !back {
				fmt.Fprintln(out, " Exiting DPWH Flood Control Data Pipeline...")
				return nil
			}
		default:
			fmt.Fprint(out, "Invalid choice. Please enter 1 or 2.\n\n")
		}
	}
}

// askBack asks whether to return to the menu. ok is false at end of input.
func askBack(scanner *bufio.Scanner, out io.Writer) (back, ok bool) {
	for {
		answer, ok := prompt(scanner, out, "Back to Report Selection (Y/N): ")
		if !ok {
			return false, false
		}
		switch strings.ToUpper(answer) {
		case "Y":
			return true, true
		case "N":
			return false, true
		default:
			fmt.Fprintln(out, "Invalid choice. Please enter Y or N.")
		}
	}
}

func prompt(scanner *bufio.Scanner, out io.Writer, text string) (string, bool) {
	fmt.Fprint(out, text)
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
