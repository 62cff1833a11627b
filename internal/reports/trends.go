package reports

import (
	"cmp"
	"math"
	"slices"

	"github.com/ginjaninja78/flood-control-pipeline/internal/aggregate"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

type trendKey struct {
	year int
	kind string
}

type trendAcc struct {
	projects   int
	savingsSum float64
	overruns   int
}

type trendEntry struct {
	key        trendKey
	acc        trendAcc
	avgSavings float64
}

// AnnualTrends builds the Annual Type Trends report.
//
// Per (FundingYear, TypeOfWork) group it computes the project count, the
// average savings and the overrun rate. YoYChange compares average savings
// against the BaselineYear according to TrendBaseline; baseline-year rows and
// rows whose baseline is zero or absent report 0.
//
// RETURNS:
//   - Rows sorted by year ascending, then average savings descending, then
//     work type.
func AnnualTrends(records []types.CleanRecord, opts Options) []types.TypeTrendRow {
	groups := aggregate.GroupBy(records,
		func(r types.CleanRecord) trendKey { return trendKey{r.FundingYear, r.TypeOfWork} },
		func(acc trendAcc, r types.CleanRecord) trendAcc {
			acc.projects++
			acc.savingsSum += r.CostSavings
			if r.CostSavings < 0 {
				acc.overruns++
			}
			return acc
		})

	entries := make([]trendEntry, len(groups))
	for i, g := range groups {
		entries[i] = trendEntry{
			key:        g.Key,
			acc:        g.Acc,
			avgSavings: g.Acc.savingsSum / float64(g.Acc.projects),
		}
	}

	change := perTypeChange(entries, opts.BaselineYear)
	if opts.TrendBaseline == BaselineWeightedYear {
		change = weightedYearChange(entries, opts.BaselineYear)
	}

	slices.SortFunc(entries, func(a, b trendEntry) int {
		return cmp.Or(
			cmp.Compare(a.key.year, b.key.year),
			cmp.Compare(b.avgSavings, a.avgSavings),
			cmp.Compare(a.key.kind, b.key.kind),
		)
	})

	rows := make([]types.TypeTrendRow, len(entries))
	for i, e := range entries {
		rows[i] = types.TypeTrendRow{
			FundingYear:   e.key.year,
			TypeOfWork:    e.key.kind,
			TotalProjects: e.acc.projects,
			AvgSavings:    formatFixed(e.avgSavings),
			OverrunRate:   formatFixed(aggregate.Percent(e.acc.overruns, e.acc.projects)),
			YoYChange:     formatFixed(change(e)),
		}
	}
	return rows
}

// perTypeChange measures each row against its own work type's baseline-year
// average.
func perTypeChange(entries []trendEntry, baselineYear int) func(trendEntry) float64 {
	baselines := make(map[string]float64)
	for _, e := range entries {
		if e.key.year == baselineYear {
			baselines[e.key.kind] = e.avgSavings
		}
	}

	return func(e trendEntry) float64 {
		if e.key.year == baselineYear {
			return 0
		}
		return relativeChange(e.avgSavings, baselines[e.key.kind])
	}
}

// weightedYearChange measures each year's project-weighted average savings
// across all types against the baseline year's. Every row of a year shares
// the same change.
func weightedYearChange(entries []trendEntry, baselineYear int) func(trendEntry) float64 {
	type yearAcc struct {
		savings  float64
		projects int
	}
	years := aggregate.ToMap(aggregate.GroupBy(entries,
		func(e trendEntry) int { return e.key.year },
		func(acc yearAcc, e trendEntry) yearAcc {
			acc.savings += e.acc.savingsSum
			acc.projects += e.acc.projects
			return acc
		}))

	weighted := func(year int) float64 {
		y, ok := years[year]
		if !ok || y.projects == 0 {
			return 0
		}
		return y.savings / float64(y.projects)
	}
	baseline := weighted(baselineYear)

	return func(e trendEntry) float64 {
		if e.key.year == baselineYear {
			return 0
		}
		return relativeChange(weighted(e.key.year), baseline)
	}
}

// relativeChange is (value - baseline) / |baseline| * 100, or 0 when the
// baseline is near zero.
func relativeChange(value, baseline float64) float64 {
	if aggregate.NearZero(baseline) {
		return 0
	}
	return aggregate.Finite((value - baseline) / math.Abs(baseline) * 100)
}
