package processors

import (
	"sort"
	"time"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/valuation"
)

// BuildPipelineReport buckets the active deals per stage with count,
// pipeline sum and weighted sum. The stage vocabulary is letter-prefixed
// (A closest to closing), so plain string order is the pipeline order.
func BuildPipelineReport(deals []models.Deal, now time.Time, excludedStages map[string]bool) []models.StageBucket {
	byStage := make(map[string]models.StageBucket)
	for _, d := range deals {
		if excludedStages[d.Stage] {
			continue
		}
		bucket := byStage[d.Stage]
		bucket.Stage = d.Stage
		bucket.Count++
		bucket.PipelineSum += d.PipelineValue
		bucket.WeightedSum += valuation.Valuate(d, now)
		byStage[d.Stage] = bucket
	}

	buckets := make([]models.StageBucket, 0, len(byStage))
	for _, bucket := range byStage {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Stage < buckets[j].Stage })
	return buckets
}
