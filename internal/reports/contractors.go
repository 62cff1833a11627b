package reports

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/ginjaninja78/flood-control-pipeline/internal/aggregate"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

type contractorAcc struct {
	projects     int
	totalCost    float64
	totalSavings float64
	delaySum     float64
}

type rankedContractor struct {
	name        string
	acc         contractorAcc
	avgDelay    float64
	reliability float64
}

// ContractorRanking builds the Contractor Ranking report.
//
// Contractors with fewer than MinProjects projects are discarded. The rest get
// a reliability index of (1 - avgDelay/DelayNormDays) * (savings/cost) * 100,
// are sorted by total contract cost descending and truncated to
// TopContractors. Ranks start at 1.
func ContractorRanking(records []types.CleanRecord, opts Options) []types.ContractorRankingRow {
	ranked := qualifyingContractors(records, opts)

	slices.SortFunc(ranked, func(a, b rankedContractor) int {
		return cmp.Or(
			cmp.Compare(b.acc.totalCost, a.acc.totalCost),
			cmp.Compare(a.name, b.name),
		)
	})
	if len(ranked) > opts.TopContractors {
		ranked = ranked[:opts.TopContractors]
	}

	rows := make([]types.ContractorRankingRow, len(ranked))
	for i, c := range ranked {
		flag := types.RiskOK
		if c.reliability < opts.RiskThreshold {
			flag = types.RiskHigh
		}
		rows[i] = types.ContractorRankingRow{
			Rank:             i + 1,
			Contractor:       c.name,
			TotalCost:        formatFixed(c.acc.totalCost),
			NumProjects:      c.acc.projects,
			AvgDelay:         formatFixed(c.avgDelay),
			TotalSavings:     formatFixed(c.acc.totalSavings),
			ReliabilityIndex: formatFixed(c.reliability),
			RiskFlag:         flag,
		}
	}
	return rows
}

// QualifyingContractors counts contractors with at least MinProjects
// projects, before top-N truncation.
func QualifyingContractors(records []types.CleanRecord, opts Options) int {
	return len(qualifyingContractors(records, opts))
}

func qualifyingContractors(records []types.CleanRecord, opts Options) []rankedContractor {
	groups := aggregate.GroupBy(records,
		func(r types.CleanRecord) string { return r.Contractor },
		func(acc contractorAcc, r types.CleanRecord) contractorAcc {
			acc.projects++
			acc.totalCost += r.ContractCost
			acc.totalSavings += r.CostSavings
			acc.delaySum += r.CompletionDelayDays
			return acc
		})

	qualified := lo.Filter(groups, func(g aggregate.Group[string, contractorAcc], _ int) bool {
		return g.Acc.projects >= opts.MinProjects
	})

	return lo.Map(qualified, func(g aggregate.Group[string, contractorAcc], _ int) rankedContractor {
		avgDelay := g.Acc.delaySum / float64(g.Acc.projects)
		return rankedContractor{
			name:        g.Key,
			acc:         g.Acc,
			avgDelay:    avgDelay,
			reliability: reliabilityIndex(avgDelay, g.Acc.totalSavings, g.Acc.totalCost, opts),
		}
	})
}

// reliabilityIndex applies the delay and savings factors and the configured
// clamp. Non-finite values are 0.
func reliabilityIndex(avgDelay, totalSavings, totalCost float64, opts Options) float64 {
	v := aggregate.Finite((1 - avgDelay/opts.DelayNormDays) * (totalSavings / totalCost) * 100)
	if opts.ReliabilityClamp == ClampBoth {
		return aggregate.Clamp(v, 0, 100)
	}
	if v > 100 {
		return 100
	}
	return v
}
