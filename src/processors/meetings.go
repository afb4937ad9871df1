package processors

import (
	"sort"
	"time"

	"github.com/username/dealfolio/backend/src/models"
)

// BuildMeetingGeneration counts deals entering the pipeline per calendar
// month inside [start, end], split by source type. Deals without a
// discovery date never generated a trackable meeting and are skipped.
func BuildMeetingGeneration(deals []models.Deal, start, end time.Time) []models.MeetingGeneration {
	monthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	rangeEnd := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, 1, 0)

	byMonth := make(map[string]*models.MeetingGeneration)
	for _, d := range deals {
		if d.DiscoveryDate == nil {
			continue
		}
		if d.DiscoveryDate.Before(monthStart) || !d.DiscoveryDate.Before(rangeEnd) {
			continue
		}
		key := d.DiscoveryDate.Format("2006-01")
		entry, ok := byMonth[key]
		if !ok {
			entry = &models.MeetingGeneration{Month: key, BySource: make(map[string]int)}
			byMonth[key] = entry
		}
		entry.Total++
		source := d.SourceType
		if source == "" {
			source = "Unknown"
		}
		entry.BySource[source]++
	}

	report := make([]models.MeetingGeneration, 0, len(byMonth))
	for _, entry := range byMonth {
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Month < report[j].Month })
	return report
}
