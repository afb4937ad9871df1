package processors

import (
	"time"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/valuation"
)

// BuildClosingProjections walks each calendar month from start through end
// and reports the pipe created in that month (by discovery date, all
// stages) with a running cumulative of the weighted sums. The final
// Cumulative equals valuation.CumulativeByMonth over the same range.
func BuildClosingProjections(deals []models.Deal, start, end, now time.Time) []models.MonthlyProjection {
	var report []models.MonthlyProjection
	cumulative := 0.0
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	for !month.After(last) {
		monthEnd := month.AddDate(0, 1, 0).Add(-time.Nanosecond)
		summary := valuation.AggregateCreatedInRange(deals, month, monthEnd, now)
		cumulative += summary.WeightedSum
		report = append(report, models.MonthlyProjection{
			Month:       month.Format("2006-01"),
			ValueSum:    summary.ValueSum,
			WeightedSum: summary.WeightedSum,
			Count:       summary.Count,
			Cumulative:  cumulative,
		})
		month = month.AddDate(0, 1, 0)
	}
	return report
}
