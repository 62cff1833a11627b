// =============================================================================
// Flood Control Pipeline - Main Entry Point
// =============================================================================
//
// USAGE:
//   floodreport             - Interactive menu (load, then generate reports)
//   floodreport load        - Load and clean the dataset, print diagnostics
//   floodreport report      - Load, then write every report artifact
//   floodreport version     - Display the application version
//
// LAYOUT:
//   - cmd/       : Cobra command definitions and the menu loop
//   - internal/  : Loading, cleaning, reports and output sinks
//   - pkg/       : Artifact directory and archive utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/flood-control-pipeline/cmd"
)

func main() {
	cmd.Execute()
}
