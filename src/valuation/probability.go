package valuation

import (
	"math"
	"time"
)

// AnySource matches every source type for a rule.
const AnySource = ""

// Rule maps one (stage, source) pair to a pair of probabilities around an
// age threshold: WithinProb applies while ageDays <= AgeThreshold,
// BeyondProb once the deal has lingered past it. Rules with equal
// probabilities on both sides are effectively age-independent.
type Rule struct {
	Stage        string
	Source       string
	AgeThreshold int
	WithinProb   float64
	BeyondProb   float64
}

// rules is the hand-curated decision table the sales team runs on. Later
// stages and warmer (referral) sources start higher but decay faster once a
// deal has sat in the stage too long. Matching is exact and case-sensitive;
// anything not listed values at zero. Kept as data so each entry can be
// tested and extended without touching the evaluator.
var rules = []Rule{
	{Stage: "E Intro attended", Source: "Outbound", AgeThreshold: 180, WithinProb: 0.15, BeyondProb: 0.17},
	{Stage: "E Intro attended", Source: "Inbound", AgeThreshold: 90, WithinProb: 0.35, BeyondProb: 0.33},
	{Stage: "E Intro attended", Source: "Client referral", AgeThreshold: 30, WithinProb: 0.7, BeyondProb: 0.0},
	{Stage: "E Intro attended", Source: "Internal referral", AgeThreshold: 30, WithinProb: 0.6, BeyondProb: 0.0},
	{Stage: "E Intro attended", Source: "Partnership", AgeThreshold: 60, WithinProb: 0.4, BeyondProb: 0.25},
	{Stage: "D POA Booked", Source: AnySource, AgeThreshold: 0, WithinProb: 0.5, BeyondProb: 0.5},
	{Stage: "C Proposal sent", Source: AnySource, AgeThreshold: 90, WithinProb: 0.5, BeyondProb: 0.3},
	{Stage: "B Legals", Source: "Client referral", AgeThreshold: 15, WithinProb: 0.9, BeyondProb: 0.0},
	{Stage: "B Legals", Source: "Internal referral", AgeThreshold: 15, WithinProb: 0.85, BeyondProb: 0.0},
	{Stage: "B Legals", Source: "Outbound", AgeThreshold: 45, WithinProb: 0.9, BeyondProb: 0.75},
	{Stage: "B Legals", Source: "Inbound", AgeThreshold: 45, WithinProb: 0.9, BeyondProb: 0.75},
	{Stage: "B Legals", Source: "Partnership", AgeThreshold: 30, WithinProb: 0.8, BeyondProb: 0.5},
}

// Rules returns a copy of the decision table for inspection and entry-by-
// entry testing.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Probability looks up the closing probability for a deal in the given
// stage, from the given source, that has been ageDays in the pipeline.
// Unmapped combinations return 0.0; no normalization, no errors. Pure and
// safe for concurrent use.
func Probability(stage, source string, ageDays int) float64 {
	for _, r := range rules {
		if r.Stage != stage {
			continue
		}
		if r.Source != AnySource && r.Source != source {
			continue
		}
		if ageDays <= r.AgeThreshold {
			return r.WithinProb
		}
		return r.BeyondProb
	}
	return 0.0
}

// AgeDays returns floor((now - discovery) in days). A missing discovery
// date counts as age 0. Future discovery dates yield negative ages on
// purpose; the threshold comparisons in Probability handle them like any
// other input.
func AgeDays(discovery *time.Time, now time.Time) int {
	if discovery == nil {
		return 0
	}
	return int(math.Floor(now.Sub(*discovery).Hours() / 24))
}
