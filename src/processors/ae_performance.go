package processors

import (
	"sort"
	"time"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/valuation"
	"github.com/username/dealfolio/backend/src/views"
)

// BuildAEPerformance reports each account executive's open pipeline against
// the view's configured targets for the given month. Meetings booked counts
// deals that entered the pipeline during that month, whatever stage they
// are in now.
func BuildAEPerformance(deals []models.Deal, now time.Time, view views.View, month time.Time) []models.AEPerformance {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	byOwner := valuation.AggregateByOwner(deals, now, view.ExcludedStageSet())

	meetings := make(map[string]int)
	for _, d := range deals {
		if d.DiscoveryDate == nil {
			continue
		}
		if d.DiscoveryDate.Before(monthStart) || d.DiscoveryDate.After(monthEnd) {
			continue
		}
		meetings[d.Owner]++
	}

	owners := make(map[string]bool, len(byOwner))
	for owner := range byOwner {
		owners[owner] = true
	}
	for owner := range meetings {
		owners[owner] = true
	}

	report := make([]models.AEPerformance, 0, len(owners))
	for owner := range owners {
		summary := byOwner[owner]
		targets := view.TargetsFor(owner)
		report = append(report, models.AEPerformance{
			Owner:          owner,
			PipelineSum:    summary.PipelineSum,
			WeightedSum:    summary.WeightedSum,
			DealCount:      summary.Count,
			MeetingsBooked: meetings[owner],
			MeetingTarget:  targets.MonthlyMeetings,
			WeightedTarget: targets.MonthlyWeighted,
		})
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Owner < report[j].Owner })
	return report
}
