package reports

import (
	"github.com/samber/lo"

	"github.com/ginjaninja78/flood-control-pipeline/internal/aggregate"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// Bundle is one complete report run over a dataset.
type Bundle struct {
	Regional    []types.RegionSummaryRow
	Contractors []types.ContractorRankingRow
	Trends      []types.TypeTrendRow
	Summary     types.SummaryStats
}

// Generate runs all three reports and the summary over records.
func Generate(records []types.CleanRecord, opts Options) *Bundle {
	b := &Bundle{
		Regional:    RegionalEfficiency(records, opts),
		Contractors: ContractorRanking(records, opts),
		Trends:      AnnualTrends(records, opts),
	}

	b.Summary = Summarize(records, opts)
	b.Summary.Report1Regions = len(b.Regional)
	b.Summary.Report2Contractors = len(b.Contractors)
	b.Summary.Report3Entries = len(b.Trends)
	return b
}

// Summarize computes the dataset-wide totals. TotalContractors counts
// contractors meeting MinProjects, not every distinct contractor. The report
// row counts are left for the caller.
func Summarize(records []types.CleanRecord, opts Options) types.SummaryStats {
	provinces := lo.Uniq(lo.Map(records, func(r types.CleanRecord, _ int) string {
		return r.Province
	}))
	delays := lo.Map(records, func(r types.CleanRecord, _ int) float64 {
		return r.CompletionDelayDays
	})
	savings := lo.SumBy(records, func(r types.CleanRecord) float64 {
		return r.CostSavings
	})

	return types.SummaryStats{
		TotalProjects:      len(records),
		TotalContractors:   QualifyingContractors(records, opts),
		TotalProvinces:     len(provinces),
		GlobalAvgDelayDays: formatFixed(aggregate.Mean(delays)),
		TotalSavings:       formatFixed(savings),
	}
}
