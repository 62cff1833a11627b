// =============================================================================
// Flood Control Pipeline - CSV Parser Module
// =============================================================================
//
// This module streams project rows out of a delimited text export. It is the
// default input path of the loader.
//
// FEATURES:
//   - Configurable delimiter (comma, pipe, tab, semicolon)
//   - Header row is read once and kept for column lookup
//   - UTF-8 byte order mark on the first header cell is stripped
//   - Rows whose field count differs from the header are reported per row
//     with ErrMalformedRow instead of aborting the read
//
// The parser never interprets cell values. Typing and validation happen in
// the validation package, driven by the loader.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// ErrMalformedRow marks a row whose field count does not match the header.
var ErrMalformedRow = errors.New("malformed row")

// utf8BOM is stripped from the first header cell when present.
const utf8BOM = "\ufeff"

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads one row at a time.
//
// USAGE:
//
//	parser, err := csvparser.Open(path, ",")
//	if err != nil {
//	    return err
//	}
//	defer parser.Close()
//
//	for parser.Next() {
//	    fields, err := parser.Row()
//	    if err != nil {
//	        // malformed row, count it and move on
//	        continue
//	    }
//	    // Process fields...
//	}
//
//	if err := parser.Err(); err != nil {
//	    return err
//	}
type StreamingParser struct {
	closer  io.Closer
	reader  *csv.Reader
	headers []string

	current types.RawFields
	rowErr  error
	line    int
	err     error
}

// Open opens a CSV file and reads its header row.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - delimiter: The field delimiter. Empty means comma.
//
// RETURNS:
//   - A parser positioned before the first data row.
//   - An error if the file cannot be opened or has no header.
func Open(filePath, delimiter string) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := NewStreamingParser(file, delimiter)
	if err != nil {
		file.Close()
		return nil, err
	}
	parser.closer = file
	return parser, nil
}

// NewStreamingParser wraps an already open reader. Close is a no-op unless
// the parser was created by Open.
func NewStreamingParser(r io.Reader, delimiter string) (*StreamingParser, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, delimiter)

	parser := &StreamingParser{reader: reader}
	if err := parser.readHeaders(); err != nil {
		return nil, err
	}
	return parser, nil
}

// configureReader applies the delimiter and the lenient reading options.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Field counts are checked per row against the header.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
}

// readHeaders reads and cleans the header row.
func (p *StreamingParser) readHeaders() error {
	row, err := p.reader.Read()
	if err == io.EOF {
		return fmt.Errorf("failed to read header: input is empty")
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line++

	p.headers = make([]string, len(row))
	for i, h := range row {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		p.headers[i] = strings.TrimSpace(h)
	}
	return nil
}

// Next advances to the next data row. Returns false at end of input or on a
// fatal read error, which is then available from Err.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	row, err := p.reader.Read()
	if err == io.EOF {
		return false
	}
	p.line++

	// The reader resumes at the next line after a ParseError.
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return p.malformed("line %d: %v", parseErr.Line, parseErr.Err)
	}
	if err != nil {
		p.err = fmt.Errorf("failed to read row %d: %w", p.line, err)
		return false
	}

	if len(row) != len(p.headers) {
		return p.malformed("record %d has %d fields, header has %d",
			p.line, len(row), len(p.headers))
	}

	values := make(map[string]string, len(p.headers))
	for i, header := range p.headers {
		values[header] = row[i]
	}
	p.current = types.RawFieldsFromMap(values)
	p.rowErr = nil
	return true
}

// malformed records a rejected row and keeps iteration going.
func (p *StreamingParser) malformed(format string, args ...any) bool {
	p.current = types.RawFields{}
	p.rowErr = fmt.Errorf("%w: %s", ErrMalformedRow, fmt.Sprintf(format, args...))
	return true
}

// Row returns the current row. A non-nil error wraps ErrMalformedRow.
func (p *StreamingParser) Row() (types.RawFields, error) {
	return p.current, p.rowErr
}

// Headers returns the cleaned header row.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// Line returns the 1-indexed record number of the current row, header
// included.
func (p *StreamingParser) Line() int {
	return p.line
}

// Err returns the fatal error that stopped iteration, if any.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file when the parser owns it.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
