package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/dealfolio/backend/src/models"
)

var testNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

// dealAgedDays builds a deal whose discovery date is exactly ageDays before
// testNow.
func dealAgedDays(stage, source string, value float64, ageDays int) models.Deal {
	d := testNow.AddDate(0, 0, -ageDays)
	return models.Deal{
		Stage:         stage,
		SourceType:    source,
		PipelineValue: value,
		DiscoveryDate: &d,
	}
}

func TestValuate_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		deal models.Deal
		want float64
	}{
		{"outbound intro past decay threshold", dealAgedDays("E Intro attended", "Outbound", 1000, 200), 170.0},
		{"outbound intro at threshold boundary", dealAgedDays("E Intro attended", "Outbound", 1000, 180), 150.0},
		{"POA booked ignores source and age", dealAgedDays("D POA Booked", "anything", 5000, 9999), 2500.0},
		{"unknown stage values at zero", models.Deal{Stage: "Z Unknown", SourceType: "Outbound", PipelineValue: 500}, 0.0},
		{"legals referral at boundary", dealAgedDays("B Legals", "Client referral", 2000, 15), 1800.0},
		{"legals referral past boundary", dealAgedDays("B Legals", "Client referral", 2000, 16), 0.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Valuate(tc.deal, testNow), 1e-6)
		})
	}
}

func TestValuate_ZeroValueSkipsLookup(t *testing.T) {
	// Zero, absent or negative pipeline values contribute nothing, whatever
	// the stage and source say.
	for _, value := range []float64{0, -100} {
		deal := dealAgedDays("B Legals", "Outbound", value, 10)
		assert.Equal(t, 0.0, Valuate(deal, testNow))
	}
}

func TestValuate_MissingDiscoveryDateIsAgeZero(t *testing.T) {
	deal := models.Deal{Stage: "E Intro attended", SourceType: "Client referral", PipelineValue: 100}
	// Age 0 is inside the 30 day referral window.
	assert.InDelta(t, 70.0, Valuate(deal, testNow), 1e-9)
}

func TestValuate_Idempotent(t *testing.T) {
	deal := dealAgedDays("C Proposal sent", "Inbound", 1234.56, 45)
	first := Valuate(deal, testNow)
	second := Valuate(deal, testNow)
	assert.Equal(t, first, second)
}

func TestValuate_BoundedByPipelineValue(t *testing.T) {
	for _, r := range Rules() {
		for _, age := range []int{-10, 0, r.AgeThreshold, r.AgeThreshold + 1, 10000} {
			deal := dealAgedDays(r.Stage, r.Source, 1000, age)
			got := Valuate(deal, testNow)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, deal.PipelineValue)
		}
	}
}

func TestValuateAll_PreservesOrderAndFields(t *testing.T) {
	deals := []models.Deal{
		dealAgedDays("E Intro attended", "Outbound", 1000, 200),
		{Stage: "Z Unknown", SourceType: "Outbound", PipelineValue: 500},
		dealAgedDays("D POA Booked", "Inbound", 5000, 3),
	}
	deals[0].Owner = "alice"
	deals[1].Owner = "bob"
	deals[2].Owner = "carol"

	valued := ValuateAll(deals, testNow)
	require.Len(t, valued, 3)

	assert.Equal(t, "alice", valued[0].Owner)
	assert.InDelta(t, 170.0, valued[0].WeightedValue, 1e-9)
	assert.Equal(t, 200, valued[0].AgeDays)

	assert.Equal(t, "bob", valued[1].Owner)
	assert.Equal(t, 0.0, valued[1].WeightedValue)
	assert.Equal(t, 0.0, valued[1].Probability)

	assert.Equal(t, "carol", valued[2].Owner)
	assert.InDelta(t, 2500.0, valued[2].WeightedValue, 1e-9)

	// Input slice untouched.
	assert.Equal(t, "E Intro attended", deals[0].Stage)
}
