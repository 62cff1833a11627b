package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/flood-control-pipeline/internal/csvparser"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// baseRow is a valid 2022 project with explicit coordinates.
func baseRow() map[string]string {
	return map[string]string{
		types.ColMainIsland:       "Luzon",
		types.ColRegion:           "NCR",
		types.ColProvince:         "Metro Manila",
		types.ColTypeOfWork:       "Drainage",
		types.ColFundingYear:      "2022",
		types.ColApprovedBudget:   "1,000,000",
		types.ColContractCost:     "900000",
		types.ColActualCompletion: "2022-03-02",
		types.ColContractor:       "ABC Builders",
		types.ColStartDate:        "2022-01-01",
		types.ColProjectLatitude:  "14.6",
		types.ColProjectLongitude: "121.0",
		types.ColCapitalLatitude:  "14.5",
		types.ColCapitalLongitude: "120.9",
	}
}

func withFields(overrides map[string]string) map[string]string {
	row := baseRow()
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func csvLine(row map[string]string) string {
	cells := make([]string, len(types.RequiredColumns))
	for i, col := range types.RequiredColumns {
		v := row[col]
		if strings.ContainsAny(v, ",\"") {
			v = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		cells[i] = v
	}
	return strings.Join(cells, ",")
}

func buildCSV(lines ...string) string {
	return strings.Join(append([]string{strings.Join(types.RequiredColumns, ",")}, lines...), "\n") + "\n"
}

func loadString(t *testing.T, input string) *Result {
	t.Helper()
	src, err := csvparser.NewStreamingParser(strings.NewReader(input), ",")
	require.NoError(t, err)
	defer src.Close()

	result, err := New(DefaultOptions(), nil).Load(src)
	require.NoError(t, err)
	return result
}

func TestLoad_ValidRowDerivedFields(t *testing.T) {
	result := loadString(t, buildCSV(csvLine(baseRow())))

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, 2022, rec.FundingYear)
	assert.Equal(t, 1000000.0, rec.ApprovedBudget)
	assert.Equal(t, 900000.0, rec.ContractCost)
	assert.Equal(t, 100000.0, rec.CostSavings)
	assert.Equal(t, 60.0, rec.CompletionDelayDays)
	require.True(t, rec.HasCoordinates())
	assert.Equal(t, 14.6, *rec.Lat)
	assert.Equal(t, 121.0, *rec.Lon)

	assert.Equal(t, types.LoadReport{TotalRows: 1, FilteredRows: 1}, result.Report)
	assert.NotEmpty(t, result.RunID)
}

func TestLoad_YearFilterIsNotAnError(t *testing.T) {
	result := loadString(t, buildCSV(
		csvLine(withFields(map[string]string{types.ColFundingYear: "2020"})),
		csvLine(withFields(map[string]string{types.ColFundingYear: "2024"})),
		csvLine(withFields(map[string]string{types.ColFundingYear: "n/a"})),
		csvLine(withFields(map[string]string{types.ColFundingYear: ""})),
		csvLine(withFields(map[string]string{types.ColFundingYear: "2021"})),
		csvLine(withFields(map[string]string{types.ColFundingYear: "2023"})),
	))

	assert.Equal(t, 6, result.Report.TotalRows)
	assert.Equal(t, 2, result.Report.FilteredRows)
	assert.Equal(t, 0, result.Report.ParseErrors)
	assert.Equal(t, 4, result.Report.OutOfRange)
	for _, rec := range result.Records {
		assert.GreaterOrEqual(t, rec.FundingYear, 2021)
		assert.LessOrEqual(t, rec.FundingYear, 2023)
	}
}

func TestLoad_ValidationFailuresAreCounted(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{name: "zero budget", overrides: map[string]string{types.ColApprovedBudget: "0"}},
		{name: "negative cost", overrides: map[string]string{types.ColContractCost: "-5"}},
		{name: "alphabetic cost", overrides: map[string]string{types.ColContractCost: "12abc"}},
		{name: "missing budget", overrides: map[string]string{types.ColApprovedBudget: ""}},
		{name: "missing start date", overrides: map[string]string{types.ColStartDate: ""}},
		{name: "bad start date", overrides: map[string]string{types.ColStartDate: "03/01/2022"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loadString(t, buildCSV(csvLine(withFields(tt.overrides))))
			assert.Empty(t, result.Records)
			assert.Equal(t, 1, result.Report.TotalRows)
			assert.Equal(t, 1, result.Report.ParseErrors)
			assert.Equal(t, 0, result.Report.FilteredRows)
		})
	}
}

func TestLoad_MalformedRowIsParseError(t *testing.T) {
	result := loadString(t, buildCSV("Luzon,NCR,short", csvLine(baseRow())))

	assert.Equal(t, 2, result.Report.TotalRows)
	assert.Equal(t, 1, result.Report.ParseErrors)
	assert.Equal(t, 1, result.Report.Malformed)
	assert.Equal(t, 1, result.Report.FilteredRows)
}

func TestLoad_MissingCompletionDateMeansZeroDelay(t *testing.T) {
	result := loadString(t, buildCSV(
		csvLine(withFields(map[string]string{types.ColActualCompletion: ""})),
		csvLine(withFields(map[string]string{types.ColActualCompletion: "soon"})),
		csvLine(withFields(map[string]string{types.ColActualCompletion: "2021-12-22"})),
	))

	require.Len(t, result.Records, 3)
	assert.Equal(t, 0.0, result.Records[0].CompletionDelayDays)
	assert.Equal(t, 0.0, result.Records[1].CompletionDelayDays)
	assert.Equal(t, -10.0, result.Records[2].CompletionDelayDays, "negative delays are kept")
	assert.Equal(t, 0, result.Report.ParseErrors)
}

func TestLoad_CategoricalDefaults(t *testing.T) {
	result := loadString(t, buildCSV(csvLine(withFields(map[string]string{
		types.ColRegion:     "",
		types.ColMainIsland: "  ",
		types.ColProvince:   "",
		types.ColTypeOfWork: "",
		types.ColContractor: "  Trimmed Co  ",
	}))))

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "Unknown", rec.Region)
	assert.Equal(t, "Unknown", rec.MainIsland)
	assert.Equal(t, "Unknown", rec.Province)
	assert.Equal(t, "Unspecified", rec.TypeOfWork)
	assert.Equal(t, "Trimmed Co", rec.Contractor)
}

func TestLoad_CoordinateTiers(t *testing.T) {
	noCoords := map[string]string{
		types.ColProjectLatitude:  "",
		types.ColProjectLongitude: "",
		types.ColCapitalLatitude:  "",
		types.ColCapitalLongitude: "",
	}
	inProvince := func(province string, extra map[string]string) string {
		row := withFields(extra)
		row[types.ColProvince] = province
		return csvLine(row)
	}

	result := loadString(t, buildCSV(
		// Reference records for Cebu: means are (11, 21).
		inProvince("Cebu", map[string]string{types.ColProjectLatitude: "10", types.ColProjectLongitude: "20"}),
		inProvince("Cebu", map[string]string{types.ColProjectLatitude: "12", types.ColProjectLongitude: "22"}),
		// Tier 2: longitude from capital, latitude from project.
		inProvince("Bohol", map[string]string{
			types.ColProjectLatitude:  "9.6",
			types.ColProjectLongitude: "",
			types.ColCapitalLatitude:  "",
			types.ColCapitalLongitude: "123.9",
		}),
		// Tier 3: nothing explicit, Cebu has reference coordinates.
		inProvince("Cebu", noCoords),
		// No reference: stays uncoordinated.
		inProvince("Siquijor", noCoords),
	))

	require.Len(t, result.Records, 5)

	bohol := result.Records[2]
	require.True(t, bohol.HasCoordinates())
	assert.Equal(t, 9.6, *bohol.Lat)
	assert.Equal(t, 123.9, *bohol.Lon)

	imputed := result.Records[3]
	require.True(t, imputed.HasCoordinates())
	assert.InDelta(t, 11.0, *imputed.Lat, 1e-9)
	assert.InDelta(t, 21.0, *imputed.Lon, 1e-9)

	orphan := result.Records[4]
	assert.Nil(t, orphan.Lat)
	assert.Nil(t, orphan.Lon)

	assert.Equal(t, 1, result.Report.ImputedCoords)
	assert.Equal(t, 1, result.Report.CapitalFilled)
}

func TestLoad_ProvinceMeanFillsOnlyMissingComponent(t *testing.T) {
	result := loadString(t, buildCSV(
		csvLine(withFields(map[string]string{types.ColProjectLatitude: "10", types.ColProjectLongitude: "20"})),
		csvLine(withFields(map[string]string{
			types.ColProjectLatitude:  "15",
			types.ColProjectLongitude: "",
			types.ColCapitalLatitude:  "",
			types.ColCapitalLongitude: "",
		})),
	))

	require.Len(t, result.Records, 2)
	partial := result.Records[1]
	require.True(t, partial.HasCoordinates())
	assert.Equal(t, 15.0, *partial.Lat)
	assert.Equal(t, 20.0, *partial.Lon)
	assert.Equal(t, 1, result.Report.ImputedCoords)
}

func TestLoad_MissingColumns(t *testing.T) {
	input := "MainIsland,Region,Province\nLuzon,NCR,Metro Manila\n"
	src, err := csvparser.NewStreamingParser(strings.NewReader(input), ",")
	require.NoError(t, err)

	_, err = New(DefaultOptions(), nil).Load(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), types.ColContractCost)
}

func TestMissingColumns(t *testing.T) {
	assert.Empty(t, MissingColumns(types.RequiredColumns))
	assert.Equal(t, []string{types.ColCapitalLongitude},
		MissingColumns(types.RequiredColumns[:len(types.RequiredColumns)-1]))
	assert.Contains(t, MissingColumns([]string{"region"}), types.ColRegion, "matching is case-exact")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projects.csv")
	require.NoError(t, os.WriteFile(path, []byte(buildCSV(csvLine(baseRow()))), 0644))

	result, err := New(DefaultOptions(), nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.Len(t, result.Records, 1)

	_, err = New(DefaultOptions(), nil).LoadFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open dataset")
}

func TestLoadFile_WorkbookWithDateCells(t *testing.T) {
	f := excelize.NewFile()
	header := make([]interface{}, len(types.RequiredColumns))
	for i, c := range types.RequiredColumns {
		header[i] = c
	}
	row := []interface{}{
		"Luzon", "NCR", "Metro Manila", "Drainage", 2022, 1000000.0, 900000.0,
		time.Date(2022, time.March, 2, 0, 0, 0, 0, time.UTC), "ABC Builders",
		time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		14.6, 121.0, 14.5, 120.9,
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	path := filepath.Join(t.TempDir(), "projects.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result, err := New(DefaultOptions(), nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.TotalRows)
	assert.Equal(t, 1, result.Report.FilteredRows)
	assert.Equal(t, 0, result.Report.ParseErrors)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 60.0, result.Records[0].CompletionDelayDays)
	assert.Equal(t, 100000.0, result.Records[0].CostSavings)
}

func TestLoad_CustomYearRange(t *testing.T) {
	src, err := csvparser.NewStreamingParser(strings.NewReader(buildCSV(
		csvLine(withFields(map[string]string{types.ColFundingYear: "2020"})),
		csvLine(withFields(map[string]string{types.ColFundingYear: "2022"})),
	)), ",")
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.MinYear, opts.MaxYear = 2020, 2020
	result, err := New(opts, nil).Load(src)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 2020, result.Records[0].FundingYear)
}
