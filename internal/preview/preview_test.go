package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567.891", "1,234,567.89"},
		{"0.00", "0.00"},
		{"-1500.5", "-1,500.50"},
		{"999", "999.00"},
		{"2,000.00", "2,000.00"},
		{"High Risk", "High Risk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), tt.in)
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "9,855", FormatCount(9855))
	assert.Equal(t, "12", FormatCount(12))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Name", "Amount"}, [][]string{{"Cebu", "12345.5"}, {"A|B", "1"}}, []int{1})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| Name | Amount    |", lines[0])
	assert.Equal(t, "| ---- | --------- |", lines[1])
	assert.Equal(t, "| Cebu | 12,345.50 |", lines[2])
	assert.Equal(t, "| A/B  | 1.00      |", lines[3])
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Name"}, nil, nil)
	assert.Equal(t, "(no rows)\n\n", buf.String())
}

func TestContractors_LimitAndIntegerColumns(t *testing.T) {
	rows := []types.ContractorRankingRow{
		{Rank: 1, Contractor: "Delta Builders", TotalCost: "8000.00", NumProjects: 1200, AvgDelay: "26.00",
			TotalSavings: "1500.00", ReliabilityIndex: "13.33", RiskFlag: types.RiskHigh},
		{Rank: 2, Contractor: "Echo Works", TotalCost: "700.00", NumProjects: 5, AvgDelay: "1.00",
			TotalSavings: "0.00", ReliabilityIndex: "99.00", RiskFlag: types.RiskOK},
		{Rank: 3, Contractor: "Hidden", TotalCost: "1.00", NumProjects: 5, AvgDelay: "1.00",
			TotalSavings: "0.00", ReliabilityIndex: "99.00", RiskFlag: types.RiskOK},
	}

	var buf bytes.Buffer
	Contractors(&buf, rows, 2)

	out := buf.String()
	assert.Contains(t, out, "8,000.00")
	assert.Contains(t, out, "| 1200 ")
	assert.Contains(t, out, "Echo Works")
	assert.NotContains(t, out, "Hidden")
}

func TestSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	SummaryLine(&buf, types.SummaryStats{GlobalAvgDelayDays: "30.00", TotalSavings: "2000.00"})
	assert.Equal(t, "{\"global_avg_delay_days\": \"30.00\", \"total_savings\": 2,000.00}\n\n", buf.String())
}
