// =============================================================================
// Flood Control Pipeline - XLSX Parser Module
// =============================================================================
//
// This module streams project rows out of an XLSX workbook. It is selected by
// the loader when the input file ends in ".xlsx" and mirrors the CSV parser's
// Next/Row/Err/Close contract.
//
// SHEET LAYOUT:
//   Row 1 holds the column headers (same names as the CSV export). Every
//   following non-blank row is a project. Cells are read as raw values, not
//   with their display formatting: a currency-formatted money cell arrives as
//   "1000" and a date-typed cell arrives as its serial number. Serials in the
//   StartDate and ActualCompletionDate columns are converted to YYYY-MM-DD.
//   Text cells pass through unchanged.
//
// MALFORMED ROWS:
//   Spreadsheet rows drop trailing empty cells, so short rows are padded with
//   empty values. Rows with more cells than the header are reported with
//   ErrMalformedRow.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
	"github.com/ginjaninja78/flood-control-pipeline/internal/validation"
)

// ErrMalformedRow marks a row with more cells than the header.
var ErrMalformedRow = errors.New("malformed row")

// SheetParser reads one worksheet row at a time.
type SheetParser struct {
	file    *excelize.File
	rows    *excelize.Rows
	sheet   string
	headers []string

	// dateCols holds the header positions of the date columns.
	dateCols map[int]bool
	date1904 bool

	current types.RawFields
	rowErr  error
	line    int
	err     error
}

// Open opens a workbook and positions the parser after the header row.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - sheet: The worksheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - A parser positioned before the first data row.
//   - An error if the file, the sheet or the header row cannot be read.
func Open(filePath, sheet string) (*SheetParser, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	parser, err := newSheetParser(f, sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	return parser, nil
}

func newSheetParser(f *excelize.File, sheet string) (*SheetParser, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found in workbook", sheet)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheet, err)
	}

	parser := &SheetParser{file: f, rows: rows, sheet: sheet}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		parser.date1904 = *props.Date1904
	}
	if err := parser.readHeaders(); err != nil {
		rows.Close()
		return nil, err
	}
	return parser, nil
}

// readHeaders consumes the first row of the sheet.
func (p *SheetParser) readHeaders() error {
	if !p.rows.Next() {
		if err := p.rows.Error(); err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		return fmt.Errorf("failed to read header: sheet '%s' is empty", p.sheet)
	}
	p.line++

	row, err := p.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(row))
	p.dateCols = make(map[int]bool)
	for i, h := range row {
		p.headers[i] = strings.TrimSpace(h)
		if p.headers[i] == types.ColStartDate || p.headers[i] == types.ColActualCompletion {
			p.dateCols[i] = true
		}
	}
	return nil
}

// Next advances to the next non-blank row.
func (p *SheetParser) Next() bool {
	if p.err != nil {
		return false
	}

	for p.rows.Next() {
		p.line++

		row, err := p.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			p.err = fmt.Errorf("failed to read row %d: %w", p.line, err)
			return false
		}
		if isRowEmpty(row) {
			continue
		}

		if len(row) > len(p.headers) {
			p.current = types.RawFields{}
			p.rowErr = fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrMalformedRow, p.line, len(row), len(p.headers))
			return true
		}

		values := make(map[string]string, len(p.headers))
		for i, header := range p.headers {
			if i >= len(row) {
				continue
			}
			if p.dateCols[i] {
				values[header] = p.dateText(row[i])
			} else {
				values[header] = row[i]
			}
		}
		p.current = types.RawFieldsFromMap(values)
		p.rowErr = nil
		return true
	}

	if err := p.rows.Error(); err != nil {
		p.err = fmt.Errorf("failed to read sheet '%s': %w", p.sheet, err)
	}
	return false
}

// Row returns the current row. A non-nil error wraps ErrMalformedRow.
func (p *SheetParser) Row() (types.RawFields, error) {
	return p.current, p.rowErr
}

// Headers returns the cleaned header row.
func (p *SheetParser) Headers() []string {
	return p.headers
}

// Err returns the fatal error that stopped iteration, if any.
func (p *SheetParser) Err() error {
	return p.err
}

// Close releases the row iterator and the workbook.
func (p *SheetParser) Close() error {
	rowsErr := p.rows.Close()
	fileErr := p.file.Close()
	if rowsErr != nil {
		return fmt.Errorf("failed to close rows: %w", rowsErr)
	}
	if fileErr != nil {
		return fmt.Errorf("failed to close workbook: %w", fileErr)
	}
	return nil
}

// dateText turns a date serial into YYYY-MM-DD. Anything that is not a
// serial is returned as-is for the date parser to judge.
func (p *SheetParser) dateText(cell string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, p.date1904)
	if err != nil {
		return cell
	}
	return t.Format(validation.DateLayout)
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
