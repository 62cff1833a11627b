// =============================================================================
// Flood Control Pipeline - Aggregation Framework
// =============================================================================
//
// A single parametric group-by-then-reduce utility shared by the loader and
// all three reports, plus the small statistics helpers they need.
//
// USAGE:
//
//	groups := aggregate.GroupBy(records,
//	    func(r types.CleanRecord) string { return r.Contractor },
//	    func(acc contractorAcc, r types.CleanRecord) contractorAcc {
//	        acc.count++
//	        acc.cost += r.ContractCost
//	        return acc
//	    })
//
// Keys are compared for equality only. Groups come back in first-seen key
// order, which keeps downstream iteration stable without relying on map order.
//
// =============================================================================

package aggregate

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

// Epsilon is the tolerance below which a range or baseline counts as zero.
const Epsilon = 1e-9

// Group is one distinct key with its folded accumulator.
type Group[K comparable, A any] struct {
	Key K
	Acc A
}

// GroupBy partitions items by key and folds each partition with reduce,
// starting from the zero value of A.
//
// PARAMETERS:
//   - items: The input collection. It is not modified.
//   - key: Extracts the grouping key of an item.
//   - reduce: Folds one item into its group's accumulator.
//
// RETURNS:
//   - One Group per distinct key, in first-seen order.
func GroupBy[T any, K comparable, A any](items []T, key func(T) K, reduce func(A, T) A) []Group[K, A] {
	index := make(map[K]int)
	groups := make([]Group[K, A], 0)

	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			var zero A
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, A]{Key: k, Acc: zero})
		}
		groups[i].Acc = reduce(groups[i].Acc, item)
	}

	return groups
}

// ToMap indexes groups by key.
func ToMap[K comparable, A any](groups []Group[K, A]) map[K]A {
	return lo.SliceToMap(groups, func(g Group[K, A]) (K, A) {
		return g.Key, g.Acc
	})
}

// =============================================================================
// STATISTICS
// =============================================================================

// Mean returns the arithmetic mean, or 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// Median returns the middle value after sorting, averaging the two middle
// values for even counts. An empty input yields 0. The input is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Finite replaces NaN and infinities with 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp limits v to [lower, upper].
func Clamp(v, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, v))
}

// NearZero reports whether |v| is below Epsilon.
func NearZero(v float64) bool {
	return math.Abs(v) < Epsilon
}
