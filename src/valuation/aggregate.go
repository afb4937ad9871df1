package valuation

import (
	"time"

	"github.com/username/dealfolio/backend/src/models"
)

// AggregateByOwner sums pipeline and weighted value per deal owner,
// restricted to active deals (stage not in excludedStages). Duplicate
// owners merge; summation is order-independent.
func AggregateByOwner(deals []models.Deal, now time.Time, excludedStages map[string]bool) map[string]models.OwnerSummary {
	result := make(map[string]models.OwnerSummary)
	for _, d := range deals {
		if excludedStages[d.Stage] {
			continue
		}
		summary := result[d.Owner]
		summary.PipelineSum += d.PipelineValue
		summary.WeightedSum += Valuate(d, now)
		summary.Count++
		result[d.Owner] = summary
	}
	return result
}

// AggregateCreatedInRange sums deals whose discovery date falls within
// [start, end], regardless of current stage: everything created in the
// window counts, including deals later closed or lost. The weighted
// component is valued at the supplied reference time.
func AggregateCreatedInRange(deals []models.Deal, start, end, now time.Time) models.RangeSummary {
	var summary models.RangeSummary
	for _, d := range deals {
		if d.DiscoveryDate == nil {
			continue
		}
		if d.DiscoveryDate.Before(start) || d.DiscoveryDate.After(end) {
			continue
		}
		summary.ValueSum += d.PipelineValue
		summary.WeightedSum += Valuate(d, now)
		summary.Count++
	}
	return summary
}

// CumulativeByMonth runs the monthly created-in-range aggregation for every
// calendar month from startMonth through endMonth and sums the weighted
// totals. O(months x deals) with no memoization; month ranges in this
// domain stay small.
func CumulativeByMonth(deals []models.Deal, startMonth, endMonth, now time.Time) float64 {
	total := 0.0
	month := time.Date(startMonth.Year(), startMonth.Month(), 1, 0, 0, 0, 0, startMonth.Location())
	last := time.Date(endMonth.Year(), endMonth.Month(), 1, 0, 0, 0, 0, endMonth.Location())
	for !month.After(last) {
		monthEnd := month.AddDate(0, 1, 0).Add(-time.Nanosecond)
		total += AggregateCreatedInRange(deals, month, monthEnd, now).WeightedSum
		month = month.AddDate(0, 1, 0)
	}
	return total
}
