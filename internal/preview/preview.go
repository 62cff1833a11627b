// =============================================================================
// Flood Control Pipeline - Console Previews
// =============================================================================
//
// Renders the first few rows of each report as a markdown table on the
// command's writer, before the full table goes to its artifact. Preview
// cells are display text only: numeric columns are re-rendered with
// thousands separators and two decimals, while the exported artifacts keep
// the plain fixed strings.
//
// =============================================================================

package preview

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// printer formats numbers with English grouping, e.g. 1,234,567.89.
var printer = message.NewPrinter(language.English)

// Numeric columns (by index) that get thousands separators. Count columns
// such as Rank and NumProjects are left as plain integers.
var (
	regionalNumeric   = []int{2, 3, 4, 5, 6}
	contractorNumeric = []int{2, 4, 5, 6}
	trendNumeric      = []int{3, 4, 5}
)

// FormatNumber renders a fixed-point string with two decimals and thousands
// separators. Text that is not a number is returned unchanged.
func FormatNumber(s string) string {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return s
	}
	return printer.Sprintf("%.2f", v)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Regional writes up to limit rows of the Regional Efficiency report.
func Regional(w io.Writer, rows []types.RegionSummaryRow, limit int) {
	Table(w, types.RegionSummaryHeaders, cells(rows, limit), regionalNumeric)
}

// Contractors writes up to limit rows of the Contractor Ranking report.
func Contractors(w io.Writer, rows []types.ContractorRankingRow, limit int) {
	Table(w, types.ContractorRankingHeaders, cells(rows, limit), contractorNumeric)
}

// Trends writes up to limit rows of the Annual Trends report.
func Trends(w io.Writer, rows []types.TypeTrendRow, limit int) {
	Table(w, types.TypeTrendHeaders, cells(rows, limit), trendNumeric)
}

// SummaryLine writes the one-line summary echo printed after summary.json.
func SummaryLine(w io.Writer, s types.SummaryStats) {
	fmt.Fprintf(w, "{\"global_avg_delay_days\": \"%s\", \"total_savings\": %s}\n\n",
		s.GlobalAvgDelayDays, FormatNumber(s.TotalSavings))
}

func cells[R interface{ Values() []string }](rows []R, limit int) [][]string {
	if limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Values()
	}
	return out
}

// Table writes a markdown table with padded columns. Columns listed in
// numeric are passed through FormatNumber. An empty row set prints
// "(no rows)".
func Table(w io.Writer, headers []string, rows [][]string, numeric []int) {
	if len(rows) == 0 {
		fmt.Fprint(w, "(no rows)\n\n")
		return
	}

	formatted := make([][]string, len(rows))
	for i, row := range rows {
		formatted[i] = make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				formatted[i][j] = safeCell(row[j])
			}
		}
		for _, j := range numeric {
			if j < len(headers) {
				formatted[i][j] = FormatNumber(formatted[i][j])
			}
		}
	}

	widths := make([]int, len(headers))
	for j, h := range headers {
		widths[j] = max(utf8.RuneCountInString(h), 3)
	}
	for _, row := range formatted {
		for j, cell := range row {
			widths[j] = max(widths[j], utf8.RuneCountInString(cell))
		}
	}

	var b strings.Builder
	writeRow(&b, headers, widths)
	divider := make([]string, len(headers))
	for j, width := range widths {
		divider[j] = strings.Repeat("-", width)
	}
	writeRow(&b, divider, widths)
	for _, row := range formatted {
		writeRow(&b, row, widths)
	}
	b.WriteString("\n")

	io.WriteString(w, b.String())
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for j, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[j]-utf8.RuneCountInString(cell)))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func safeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
