package reports

import (
	"cmp"
	"math"
	"slices"

	"github.com/ginjaninja78/flood-control-pipeline/internal/aggregate"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

type regionKey struct {
	region, island string
}

type regionAcc struct {
	totalBudget float64
	savings     []float64
	delays      []float64
	highDelay   int
}

type scoredRegion struct {
	row   types.RegionSummaryRow
	score float64
}

// RegionalEfficiency builds the Regional Efficiency report.
//
// Per (Region, MainIsland) group it computes total budget, median savings,
// average delay, the share of projects delayed more than HighDelayDays and a
// raw efficiency of median savings over average delay. Raw efficiencies are
// then min-max normalised across groups to a 0-100 score.
//
// RETURNS:
//   - One row per group, sorted by score descending, then region and island.
func RegionalEfficiency(records []types.CleanRecord, opts Options) []types.RegionSummaryRow {
	groups := aggregate.GroupBy(records,
		func(r types.CleanRecord) regionKey { return regionKey{r.Region, r.MainIsland} },
		func(acc regionAcc, r types.CleanRecord) regionAcc {
			acc.totalBudget += r.ApprovedBudget
			acc.savings = append(acc.savings, r.CostSavings)
			acc.delays = append(acc.delays, r.CompletionDelayDays)
			if r.CompletionDelayDays > opts.HighDelayDays {
				acc.highDelay++
			}
			return acc
		})
	if len(groups) == 0 {
		return []types.RegionSummaryRow{}
	}

	raw := make([]float64, len(groups))
	minEff, maxEff := math.Inf(1), math.Inf(-1)
	for i, g := range groups {
		raw[i] = rawEfficiency(aggregate.Median(g.Acc.savings), aggregate.Mean(g.Acc.delays))
		minEff = math.Min(minEff, raw[i])
		maxEff = math.Max(maxEff, raw[i])
	}
	spread := maxEff - minEff

	scored := make([]scoredRegion, len(groups))
	for i, g := range groups {
		score := 0.0
		if !aggregate.NearZero(spread) {
			score = aggregate.Finite((raw[i] - minEff) / spread * 100)
		}
		score = aggregate.Clamp(score, 0, 100)

		scored[i] = scoredRegion{
			score: score,
			row: types.RegionSummaryRow{
				Region:          g.Key.region,
				MainIsland:      g.Key.island,
				TotalBudget:     formatFixed(g.Acc.totalBudget),
				MedianSavings:   formatFixed(aggregate.Median(g.Acc.savings)),
				AvgDelay:        formatFixed(aggregate.Mean(g.Acc.delays)),
				HighDelayPct:    formatFixed(aggregate.Percent(g.Acc.highDelay, len(g.Acc.delays))),
				EfficiencyScore: formatFixed(score),
			},
		}
	}

	slices.SortFunc(scored, func(a, b scoredRegion) int {
		return cmp.Or(
			cmp.Compare(b.score, a.score),
			cmp.Compare(a.row.Region, b.row.Region),
			cmp.Compare(a.row.MainIsland, b.row.MainIsland),
		)
	})

	rows := make([]types.RegionSummaryRow, len(scored))
	for i, s := range scored {
		rows[i] = s.row
	}
	return rows
}

// rawEfficiency is medianSavings/avgDelay for positive delays. Non-finite and
// negative results are 0.
func rawEfficiency(medianSavings, avgDelay float64) float64 {
	if avgDelay <= 0 {
		return 0
	}
	eff := aggregate.Finite(medianSavings / avgDelay)
	if eff < 0 {
		return 0
	}
	return eff
}
