// =============================================================================
// Flood Control Pipeline - Pipeline Orchestration
// =============================================================================
//
// The pipeline is shared by the menu and the one-shot commands.
//
// LOAD:
//   1. Read and clean the configured input file
//   2. Replace the in-memory dataset (a failed load keeps the old one)
//   3. Print the load diagnostics
//
// GENERATE:
//   1. Run Report 1, 2, 3 and the summary over the loaded dataset
//   2. Write each CSV and preview its first rows
//   3. Write summary.json and echo the headline numbers
//   4. Optional sinks: XLSX workbook, SQLite database, run archive
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/flood-control-pipeline/internal/config"
	"github.com/ginjaninja78/flood-control-pipeline/internal/dataset"
	"github.com/ginjaninja78/flood-control-pipeline/internal/exporter"
	"github.com/ginjaninja78/flood-control-pipeline/internal/loader"
	"github.com/ginjaninja78/flood-control-pipeline/internal/logging"
	"github.com/ginjaninja78/flood-control-pipeline/internal/preview"
	"github.com/ginjaninja78/flood-control-pipeline/internal/reports"
	"github.com/ginjaninja78/flood-control-pipeline/internal/store"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
	"github.com/ginjaninja78/flood-control-pipeline/pkg/utils"
)

// pipeline holds everything a session needs: settings, the logger and the
// currently loaded dataset.
type pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	data   *dataset.Store
}

func newPipeline(cfg *config.Config, logger *slog.Logger) *pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &pipeline{cfg: cfg, logger: logger, data: dataset.NewStore()}
}

// setup loads the configuration named by --config and builds the logger.
// The returned cleanup closes the log file.
func setup(cmd *cobra.Command) (*pipeline, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg, cmd.ErrOrStderr(), verbose)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to close log file: %v\n", err)
		}
	}
	return newPipeline(cfg, logger.Logger), cleanup, nil
}

// =============================================================================
// LOAD
// =============================================================================

// load reads the configured input and prints the diagnostics to w.
func (p *pipeline) load(w io.Writer) (*dataset.Snapshot, error) {
	l := loader.New(p.cfg.LoaderOptions(), p.logger)

	result, err := l.LoadFile(p.cfg.InputFile)
	if err != nil {
		return nil, err
	}
	snap := p.data.Replace(result)

	report := result.Report
	fmt.Fprintf(w, "Processing dataset... (%s rows loaded, %s filtered for %d–%d)\n",
		preview.FormatCount(report.TotalRows),
		preview.FormatCount(report.FilteredRows),
		p.cfg.Filter.MinYear, p.cfg.Filter.MaxYear)
	fmt.Fprintf(w, "Note: %s rows skipped due to parse/validation errors.\n",
		preview.FormatCount(report.ParseErrors))
	if report.ImputedCoords > 0 {
		fmt.Fprintf(w, "Info: Imputed coordinates for %s rows.\n",
			preview.FormatCount(report.ImputedCoords))
	}
	fmt.Fprintln(w)

	return snap, nil
}

// =============================================================================
// GENERATE
// =============================================================================

// generate runs every report over the loaded dataset and writes the
// artifacts. It returns dataset.ErrNotLoaded when nothing was loaded yet.
func (p *pipeline) generate(w io.Writer) error {
	snap, err := p.data.Snapshot()
	if err != nil {
		return err
	}
	start := time.Now()
	logger := p.logger.With("run_id", snap.RunID)

	opts := p.cfg.ReportOptions()
	bundle := reports.Generate(snap.Records, opts)
	years := fmt.Sprintf("%d–%d", p.cfg.Filter.MinYear, p.cfg.Filter.MaxYear)

	fmt.Fprintln(w, "Generating reports...")
	fmt.Fprint(w, "Outputs saved to individual files...\n\n")

	report1 := p.cfg.OutputPath(p.cfg.Report1File)
	if err := exporter.WriteTable(report1, types.RegionSummaryHeaders, bundle.Regional); err != nil {
		return fmt.Errorf("failed to write report 1: %w", err)
	}
	logger.Info("artifact written", "path", report1, "rows", len(bundle.Regional))
	fmt.Fprint(w, "Report 1: Regional Flood Mitigation Efficiency Summary\n\n")
	fmt.Fprintln(w, "Regional Flood Mitigation Efficiency Summary")
	fmt.Fprintf(w, "(Filtered: %s Projects)\n\n", years)
	preview.Regional(w, bundle.Regional, p.cfg.Preview.Report1Rows)
	fmt.Fprintf(w, "(Full table exported to %s)\n\n", report1)

	report2 := p.cfg.OutputPath(p.cfg.Report2File)
	if err := exporter.WriteTable(report2, types.ContractorRankingHeaders, bundle.Contractors); err != nil {
		return fmt.Errorf("failed to write report 2: %w", err)
	}
	logger.Info("artifact written", "path", report2, "rows", len(bundle.Contractors))
	fmt.Fprint(w, "Report 2: Top Contractors Performance Ranking\n\n")
	fmt.Fprintln(w, "Top Contractors Performance Ranking")
	fmt.Fprintf(w, "(Top %d by TotalCost, >=%d Projects)\n\n", opts.TopContractors, opts.MinProjects)
	preview.Contractors(w, bundle.Contractors, p.cfg.Preview.Report2Rows)
	fmt.Fprintf(w, "(Full table exported to %s)\n\n", report2)

	report3 := p.cfg.OutputPath(p.cfg.Report3File)
	if err := exporter.WriteTable(report3, types.TypeTrendHeaders, bundle.Trends); err != nil {
		return fmt.Errorf("failed to write report 3: %w", err)
	}
	logger.Info("artifact written", "path", report3, "rows", len(bundle.Trends))
	fmt.Fprintln(w, "Report 3: Annual Project Type Cost Overrun Trends")
	fmt.Fprintln(w, "Annual Project Type Cost Overrun Trends")
	fmt.Fprint(w, "(Grouped by FundingYear and TypeOfWork)\n\n")
	preview.Trends(w, bundle.Trends, p.cfg.Preview.Report3Rows)
	fmt.Fprintf(w, "(Full table exported to %s)\n\n", report3)

	summary := p.cfg.OutputPath(p.cfg.SummaryFile)
	if err := exporter.WriteSummary(summary, bundle.Summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	logger.Info("artifact written", "path", summary)
	fmt.Fprintf(w, "Summary Stats (%s):\n", p.cfg.SummaryFile)
	preview.SummaryLine(w, bundle.Summary)

	artifacts := []string{report1, report2, report3, summary}
	extra, err := p.writeOptionalSinks(logger, snap, bundle)
	if err != nil {
		return err
	}
	artifacts = append(artifacts, extra...)

	return p.archive(logger, snap, start, artifacts)
}

// writeOptionalSinks writes the workbook and the SQLite database when they
// are configured. It returns the extra artifact paths.
func (p *pipeline) writeOptionalSinks(logger *slog.Logger, snap *dataset.Snapshot, bundle *reports.Bundle) ([]string, error) {
	var written []string

	if workbook := p.cfg.OutputPath(p.cfg.WorkbookFile); workbook != "" {
		if err := exporter.WriteWorkbook(workbook, bundle); err != nil {
			return nil, fmt.Errorf("failed to write workbook: %w", err)
		}
		logger.Info("artifact written", "path", workbook)
		written = append(written, workbook)
	}

	if dbPath := p.cfg.OutputPath(p.cfg.SQLitePath); dbPath != "" {
		if err := storeRun(dbPath, snap, bundle); err != nil {
			return nil, err
		}
		logger.Info("reports stored", "path", dbPath)
		written = append(written, dbPath)
	}

	return written, nil
}

// storeRun saves the run and closes the database before it is archived.
func storeRun(path string, snap *dataset.Snapshot, bundle *reports.Bundle) error {
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report database: %w", err)
	}
	if err := db.SaveRun(snap, bundle); err != nil {
		db.Close()
		return fmt.Errorf("failed to store reports: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close report database: %w", err)
	}
	return nil
}

func (p *pipeline) archive(logger *slog.Logger, snap *dataset.Snapshot, start time.Time, artifacts []string) error {
	am := utils.NewArtifactManager(p.cfg.OutputDir, p.cfg.ArchiveDir)
	if err := am.EnsureDirectories(); err != nil {
		return err
	}

	dir, err := am.ArchiveRun(utils.RunManifest{
		RunID:        snap.RunID,
		Source:       snap.Source,
		StartTime:    start,
		EndTime:      time.Now(),
		TotalRows:    snap.Report.TotalRows,
		FilteredRows: snap.Report.FilteredRows,
		ParseErrors:  snap.Report.ParseErrors,
	}, artifacts)
	if err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	if dir != "" {
		logger.Info("run archived", "path", dir)
	}
	return nil
}
