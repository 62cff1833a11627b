// =============================================================================
// Flood Control Pipeline - Record Cleaner (Loader)
// =============================================================================
//
// This module turns a stream of raw project rows into the cleaned dataset
// every report aggregates over.
//
// LOAD PIPELINE:
//   1. Open the source (CSV, or XLSX by file extension)
//   2. Check the header carries every required column
//   3. Clean each row (year filter, money and date validation, derived
//      metrics, categorical defaults, project/capital coordinates)
//   4. Impute still-missing coordinates from per-province means
//   5. Return the records with a LoadReport of what happened
//
// Row-level problems never abort a load. Only source I/O failures and a
// header without the required columns do.
//
// =============================================================================

package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ginjaninja78/flood-control-pipeline/internal/csvparser"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
	"github.com/ginjaninja78/flood-control-pipeline/internal/xlsxparser"
)

// ErrMissingColumns is returned when the header lacks required columns.
var ErrMissingColumns = errors.New("missing required columns")

// RowSource is a stream of raw rows. Row returns an error for a malformed
// row that should be counted and skipped; Err reports a fatal read failure.
type RowSource interface {
	Headers() []string
	Next() bool
	Row() (types.RawFields, error)
	Err() error
	Close() error
}

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options controls how rows are read and filtered.
type Options struct {
	// MinYear and MaxYear bound the funding year filter, inclusive.
	MinYear int
	MaxYear int

	// Delimiter is the CSV field delimiter.
	Delimiter string

	// Sheet is the XLSX worksheet name. Empty selects the first sheet.
	Sheet string
}

// DefaultOptions returns the 2021-2023 comma-delimited defaults.
func DefaultOptions() Options {
	return Options{
		MinYear:   2021,
		MaxYear:   2023,
		Delimiter: ",",
	}
}

// Result is the outcome of one successful load.
type Result struct {
	// RunID identifies this load in logs and archive folders.
	RunID string

	// Source is the path that was loaded, empty for in-memory sources.
	Source string

	// Records is the cleaned dataset. It is never mutated after Load returns.
	Records []types.CleanRecord

	// Report holds the row counters.
	Report types.LoadReport

	// Duration is the wall time of the load.
	Duration time.Duration
}

// =============================================================================
// LOADER
// =============================================================================

// Loader cleans raw rows into a dataset.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Loader. A nil logger discards log output.
func New(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadFile opens path and loads it.
//
// PARAMETERS:
//   - path: A CSV file, or an XLSX workbook when the extension is ".xlsx".
//
// RETURNS:
//   - The cleaned dataset and its LoadReport.
//   - An error when the file cannot be read or lacks required columns.
func (l *Loader) LoadFile(path string) (*Result, error) {
	src, err := l.open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer src.Close()

	result, err := l.Load(src)
	if err != nil {
		return nil, err
	}
	result.Source = path
	return result, nil
}

// open selects the reader by file extension.
func (l *Loader) open(path string) (RowSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsxparser.Open(path, l.opts.Sheet)
	}
	return csvparser.Open(path, l.opts.Delimiter)
}

// Load drains src and returns the cleaned dataset. The caller owns src and
// must close it.
func (l *Loader) Load(src RowSource) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := l.logger.With("run_id", runID)

	if missing := MissingColumns(src.Headers()); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	logger.Info("loading dataset", "min_year", l.opts.MinYear, "max_year", l.opts.MaxYear)

	var (
		report  types.LoadReport
		records []types.CleanRecord
	)

	for src.Next() {
		report.TotalRows++

		raw, err := src.Row()
		if err != nil {
			report.Malformed++
			report.ParseErrors++
			logger.Debug("row dropped", "row", report.TotalRows, "error", err)
			continue
		}

		rec, outcome := l.cleanRow(raw)
		switch outcome.kind {
		case rowOutOfRange:
			report.OutOfRange++
			continue
		case rowInvalid:
			report.ParseErrors++
			logger.Debug("row dropped", "row", report.TotalRows, "error", outcome.err)
			continue
		}

		if outcome.capitalFilled {
			report.CapitalFilled++
		}
		records = append(records, rec)
	}

	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	report.ImputedCoords = imputeProvinceMeans(records)
	report.FilteredRows = len(records)

	elapsed := time.Since(start)
	logger.Info("dataset loaded",
		"total_rows", report.TotalRows,
		"filtered_rows", report.FilteredRows,
		"parse_errors", report.ParseErrors,
		"imputed_coords", report.ImputedCoords,
		"out_of_range", report.OutOfRange,
		"duration", elapsed)

	return &Result{
		RunID:    runID,
		Records:  records,
		Report:   report,
		Duration: elapsed,
	}, nil
}

// MissingColumns returns the required columns absent from headers, in
// declaration order. Matching is case-exact.
func MissingColumns(headers []string) []string {
	return lo.Without(types.RequiredColumns, headers...)
}
