// =============================================================================
// Flood Control Pipeline - Report Exporters
// =============================================================================
//
// This module persists already computed report rows. It never recomputes or
// reformats values: what the reports package produced is what lands on disk.
//
// ARTIFACTS:
//   - One CSV table per report (header row + data rows)
//   - summary.json (indented JSON object)
//   - Optional XLSX workbook with one sheet per report plus a Summary sheet
//
// Every writer creates missing parent directories and replaces existing
// files.
//
// =============================================================================

package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Row is a report row that renders its cells in header order.
type Row interface {
	Values() []string
}

// WriteTable writes headers and rows to a CSV file at path.
//
// PARAMETERS:
//   - path: Destination file. Parent directories are created.
//   - headers: The header row.
//   - rows: The report rows.
//
// RETURNS:
//   - An error if the file cannot be created or written.
func WriteTable[R Row](path string, headers []string, rows []R) error {
	file, err := create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}

// create makes the parent directory and truncates or creates path.
func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}
