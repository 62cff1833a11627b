package reports_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/flood-control-pipeline/internal/csvparser"
	"github.com/ginjaninja78/flood-control-pipeline/internal/loader"
	"github.com/ginjaninja78/flood-control-pipeline/internal/reports"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// Six projects, two per region, spanning 2021-2023.
//
//	region  year type        budget cost  savings delay
//	A       2021 Drainage    1000   800   200     10
//	A       2022 Drainage    2000   1700  300     30
//	B       2021 Flood Wall  1500   1400  100     40
//	B       2023 Drainage    1000   1100  -100    0 (no completion date)
//	C       2022 Flood Wall  4000   3000  1000    50
//	C       2023 Flood Wall  3000   2500  500     50
const fixture = `MainIsland,Region,Province,TypeOfWork,FundingYear,ApprovedBudgetForContract,ContractCost,ActualCompletionDate,Contractor,StartDate,ProjectLatitude,ProjectLongitude,ProvincialCapitalLatitude,ProvincialCapitalLongitude
Luzon,Region A,Pampanga,Drainage,2021,"1,000.00",800,2021-01-11,Delta Builders,2021-01-01,15.0,120.6,15.1,120.7
Luzon,Region A,Pampanga,Drainage,2022,2000,1700,2022-01-31,Delta Builders,2022-01-01,,,15.1,120.7
Visayas,Region B,Cebu,Flood Wall,2021,1500,1400,2021-03-13,Delta Builders,2021-02-01,10.3,123.9,,
Visayas,Region B,Cebu,Drainage,2023,1000,1100,,Delta Builders,2023-04-01,,,,
Mindanao,Region C,Davao,Flood Wall,2022,4000,3000,2022-02-20,Delta Builders,2022-01-01,7.1,125.6,7.0,125.5
Mindanao,Region C,,Flood Wall,2023,3000,2500,2023-04-20,Echo Works,2023-03-01,,,,
Mindanao,Region C,Davao,Flood Wall,2019,3000,2500,2019-04-20,Echo Works,2019-03-01,,,,
`

func TestEndToEnd_SixProjects(t *testing.T) {
	src, err := csvparser.NewStreamingParser(strings.NewReader(fixture), ",")
	require.NoError(t, err)

	result, err := loader.New(loader.DefaultOptions(), nil).Load(src)
	require.NoError(t, err)

	assert.Equal(t, types.LoadReport{
		TotalRows:     7,
		FilteredRows:  6,
		ImputedCoords: 1,
		OutOfRange:    1,
		CapitalFilled: 1,
	}, result.Report)

	b := reports.Generate(result.Records, reports.DefaultOptions())

	// Report 1: raw efficiencies A=250/20=12.5, B=0/20=0, C=750/50=15.
	assert.Equal(t, []types.RegionSummaryRow{
		{Region: "Region C", MainIsland: "Mindanao", TotalBudget: "7000.00", MedianSavings: "750.00",
			AvgDelay: "50.00", HighDelayPct: "100.00", EfficiencyScore: "100.00"},
		{Region: "Region A", MainIsland: "Luzon", TotalBudget: "3000.00", MedianSavings: "250.00",
			AvgDelay: "20.00", HighDelayPct: "0.00", EfficiencyScore: "83.33"},
		{Region: "Region B", MainIsland: "Visayas", TotalBudget: "2500.00", MedianSavings: "0.00",
			AvgDelay: "20.00", HighDelayPct: "50.00", EfficiencyScore: "0.00"},
	}, b.Regional)

	// Report 2: only Delta Builders has five projects.
	// (1 - 26/90) * (1500/8000) * 100 = 13.33
	assert.Equal(t, []types.ContractorRankingRow{
		{Rank: 1, Contractor: "Delta Builders", TotalCost: "8000.00", NumProjects: 5, AvgDelay: "26.00",
			TotalSavings: "1500.00", ReliabilityIndex: "13.33", RiskFlag: types.RiskHigh},
	}, b.Contractors)

	// Report 3: baselines Drainage=200, Flood Wall=100.
	assert.Equal(t, []types.TypeTrendRow{
		{FundingYear: 2021, TypeOfWork: "Drainage", TotalProjects: 1, AvgSavings: "200.00", OverrunRate: "0.00", YoYChange: "0.00"},
		{FundingYear: 2021, TypeOfWork: "Flood Wall", TotalProjects: 1, AvgSavings: "100.00", OverrunRate: "0.00", YoYChange: "0.00"},
		{FundingYear: 2022, TypeOfWork: "Flood Wall", TotalProjects: 1, AvgSavings: "1000.00", OverrunRate: "0.00", YoYChange: "900.00"},
		{FundingYear: 2022, TypeOfWork: "Drainage", TotalProjects: 1, AvgSavings: "300.00", OverrunRate: "0.00", YoYChange: "50.00"},
		{FundingYear: 2023, TypeOfWork: "Flood Wall", TotalProjects: 1, AvgSavings: "500.00", OverrunRate: "0.00", YoYChange: "400.00"},
		{FundingYear: 2023, TypeOfWork: "Drainage", TotalProjects: 1, AvgSavings: "-100.00", OverrunRate: "100.00", YoYChange: "-150.00"},
	}, b.Trends)

	assert.Equal(t, types.SummaryStats{
		TotalProjects:      6,
		TotalContractors:   1,
		TotalProvinces:     4,
		GlobalAvgDelayDays: "30.00",
		TotalSavings:       "2000.00",
		Report1Regions:     3,
		Report2Contractors: 1,
		Report3Entries:     6,
	}, b.Summary)
}

func TestEndToEnd_RepeatedGenerationIsStable(t *testing.T) {
	src, err := csvparser.NewStreamingParser(strings.NewReader(fixture), ",")
	require.NoError(t, err)
	result, err := loader.New(loader.DefaultOptions(), nil).Load(src)
	require.NoError(t, err)

	first := reports.Generate(result.Records, reports.DefaultOptions())
	second := reports.Generate(result.Records, reports.DefaultOptions())
	assert.Equal(t, first, second)
}
