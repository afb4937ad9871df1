package valuation

import (
	"time"

	"github.com/username/dealfolio/backend/src/models"
)

// Valuate returns the probability-adjusted value of a single deal at the
// reference time. Deals without a positive pipeline value contribute 0 and
// skip the table lookup entirely. Always in [0, deal.PipelineValue].
func Valuate(deal models.Deal, now time.Time) float64 {
	if deal.PipelineValue <= 0 {
		return 0
	}
	age := AgeDays(deal.DiscoveryDate, now)
	return deal.PipelineValue * Probability(deal.Stage, deal.SourceType, age)
}

// ValuateAll annotates every deal with its age, probability and weighted
// value, preserving input order and all other fields. The input slice is
// not modified.
func ValuateAll(deals []models.Deal, now time.Time) []models.ValuedDeal {
	out := make([]models.ValuedDeal, 0, len(deals))
	for _, d := range deals {
		age := AgeDays(d.DiscoveryDate, now)
		prob := 0.0
		weighted := 0.0
		if d.PipelineValue > 0 {
			prob = Probability(d.Stage, d.SourceType, age)
			weighted = d.PipelineValue * prob
		}
		out = append(out, models.ValuedDeal{
			Deal:          d,
			AgeDays:       age,
			Probability:   prob,
			WeightedValue: weighted,
		})
	}
	return out
}
