// =============================================================================
// Flood Control Pipeline - Reports
// =============================================================================
//
// This package computes the three analytical reports and the dataset summary
// from an already cleaned dataset:
//   - Regional Efficiency    (group by region and island, min-max score)
//   - Contractor Ranking     (group by contractor, reliability index, top N)
//   - Annual Type Trends     (group by year and work type, change vs baseline)
//   - Summary                (dataset-wide totals plus report row counts)
//
// Every function is a pure read-only pass over the records. Output rows carry
// fixed two-decimal strings and are sorted deterministically.
//
// =============================================================================

package reports

import "fmt"

// TrendBaseline selects how the Annual Trends baseline is computed.
type TrendBaseline string

const (
	// BaselinePerType compares each work type against its own baseline-year
	// average savings.
	BaselinePerType TrendBaseline = "per_type"

	// BaselineWeightedYear compares each year's project-weighted average
	// savings across all types against the baseline year's.
	BaselineWeightedYear TrendBaseline = "weighted_year"
)

// ReliabilityClamp selects the bounds applied to the reliability index.
type ReliabilityClamp string

const (
	// ClampUpper caps the index at 100 and keeps negative values.
	ClampUpper ReliabilityClamp = "upper"

	// ClampBoth limits the index to [0, 100].
	ClampBoth ReliabilityClamp = "both"
)

// Options holds the report thresholds and policies.
type Options struct {
	// HighDelayDays is the delay above which a project counts as highly delayed.
	HighDelayDays float64

	// MinProjects is the minimum project count for a contractor to be ranked.
	MinProjects int

	// TopContractors is the number of ranked contractors kept.
	TopContractors int

	// DelayNormDays is the delay norm of the reliability index.
	DelayNormDays float64

	// RiskThreshold flags contractors whose reliability is below it.
	RiskThreshold float64

	// BaselineYear is the reference year of the trend report.
	BaselineYear int

	// TrendBaseline selects the baseline of the trend report's change column.
	TrendBaseline TrendBaseline

	// ReliabilityClamp bounds the reliability index to 100, or to [0, 100].
	ReliabilityClamp ReliabilityClamp
}

// DefaultOptions returns the standard thresholds with the per-type baseline
// and upper-only reliability clamp.
func DefaultOptions() Options {
	return Options{
		HighDelayDays:    30,
		MinProjects:      5,
		TopContractors:   15,
		DelayNormDays:    90,
		RiskThreshold:    50,
		BaselineYear:     2021,
		TrendBaseline:    BaselinePerType,
		ReliabilityClamp: ClampUpper,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if o.MinProjects < 1 {
		return fmt.Errorf("min_projects must be at least 1")
	}
	if o.TopContractors < 1 {
		return fmt.Errorf("top_contractors must be at least 1")
	}
	if o.DelayNormDays <= 0 {
		return fmt.Errorf("delay_norm_days must be positive")
	}
	switch o.TrendBaseline {
	case BaselinePerType, BaselineWeightedYear:
	default:
		return fmt.Errorf("invalid trend_baseline '%s' (must be 'per_type' or 'weighted_year')", o.TrendBaseline)
	}
	switch o.ReliabilityClamp {
	case ClampUpper, ClampBoth:
	default:
		return fmt.Errorf("invalid reliability_clamp '%s' (must be 'upper' or 'both')", o.ReliabilityClamp)
	}
	return nil
}

// formatFixed renders v with two decimals and no thousands separators.
// Negative zero renders as "0.00".
func formatFixed(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
