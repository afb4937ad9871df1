package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/valuation"
	"github.com/username/dealfolio/backend/src/views"
)

var reportNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func testDeal(owner, stage, source string, value float64, discovered string) models.Deal {
	deal := models.Deal{Owner: owner, Stage: stage, SourceType: source, PipelineValue: value}
	if discovered != "" {
		ts, err := time.Parse("2006-01-02", discovered)
		if err != nil {
			panic(err)
		}
		deal.DiscoveryDate = &ts
	}
	return deal
}

func testDeals() []models.Deal {
	return []models.Deal{
		testDeal("alice", "E Intro attended", "Outbound", 1000, "2025-01-10"),  // age 156 -> 0.15 -> 150
		testDeal("alice", "D POA Booked", "Inbound", 2000, "2025-02-20"),       // 0.5 -> 1000
		testDeal("bob", "B Legals", "Outbound", 4000, "2025-05-01"),            // age 45 -> 0.9 -> 3600
		testDeal("bob", "D POA Booked", "Client referral", 500, "2025-03-05"),  // 0.5 -> 250
		testDeal("carol", "A Closed", "Inbound", 9000, "2025-02-01"),           // excluded from active
		testDeal("carol", "X Lost", "Outbound", 700, "2025-03-15"),             // excluded from active
		testDeal("dave", "C Proposal sent", "Partnership", 3000, ""),           // no discovery date, age 0 -> 0.5 -> 1500
	}
}

func TestBuildPipelineReport(t *testing.T) {
	excluded := map[string]bool{"A Closed": true, "X Lost": true}
	report := BuildPipelineReport(testDeals(), reportNow, excluded)
	require.Len(t, report, 4)

	// Letter-prefixed stages sort into pipeline order, closest to close first.
	assert.Equal(t, "B Legals", report[0].Stage)
	assert.Equal(t, "C Proposal sent", report[1].Stage)
	assert.Equal(t, "D POA Booked", report[2].Stage)
	assert.Equal(t, "E Intro attended", report[3].Stage)

	poa := report[2]
	assert.Equal(t, 2, poa.Count)
	assert.InDelta(t, 2500.0, poa.PipelineSum, 1e-9)
	assert.InDelta(t, 1250.0, poa.WeightedSum, 1e-9)
}

func TestBuildAEPerformance(t *testing.T) {
	view := views.View{
		Name:           "uk",
		ExcludedStages: []string{"A Closed", "X Lost"},
		DefaultTargets: views.Targets{MonthlyMeetings: 5, MonthlyWeighted: 10000},
		Targets: map[string]views.Targets{
			"alice": {MonthlyMeetings: 10, MonthlyWeighted: 25000},
		},
	}
	march := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	report := BuildAEPerformance(testDeals(), reportNow, view, march)
	// carol has only excluded deals but one discovered in March (X Lost),
	// so she still shows with a meeting count.
	require.Len(t, report, 4)

	byOwner := make(map[string]models.AEPerformance)
	for _, row := range report {
		byOwner[row.Owner] = row
	}

	alice := byOwner["alice"]
	assert.Equal(t, 2, alice.DealCount)
	assert.InDelta(t, 1150.0, alice.WeightedSum, 1e-9)
	assert.Equal(t, 0, alice.MeetingsBooked, "no alice deals discovered in March")
	assert.Equal(t, 10, alice.MeetingTarget)

	bob := byOwner["bob"]
	assert.Equal(t, 1, bob.MeetingsBooked)
	assert.Equal(t, 5, bob.MeetingTarget, "default targets for unlisted owners")

	carol := byOwner["carol"]
	assert.Equal(t, 0, carol.DealCount)
	assert.Equal(t, 1, carol.MeetingsBooked)
}

func TestBuildClosingProjections(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	deals := testDeals()

	report := BuildClosingProjections(deals, start, end, reportNow)
	require.Len(t, report, 3)

	assert.Equal(t, "2025-01", report[0].Month)
	assert.Equal(t, 1, report[0].Count)
	assert.InDelta(t, 150.0, report[0].WeightedSum, 1e-9)

	// February includes the closed deal's created pipe (value counts, weight 0).
	assert.Equal(t, 2, report[1].Count)
	assert.InDelta(t, 11000.0, report[1].ValueSum, 1e-9)
	assert.InDelta(t, 1000.0, report[1].WeightedSum, 1e-9)

	assert.Equal(t, "2025-03", report[2].Month)
	assert.InDelta(t, 250.0, report[2].WeightedSum, 1e-9)

	// Running cumulative matches the valuation primitive over the range.
	want := valuation.CumulativeByMonth(deals, start, end, reportNow)
	assert.InDelta(t, want, report[2].Cumulative, 1e-9)
	assert.InDelta(t, 1400.0, report[2].Cumulative, 1e-9)
}

func TestBuildMeetingGeneration(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	report := BuildMeetingGeneration(testDeals(), start, end)
	require.Len(t, report, 2)

	feb := report[0]
	assert.Equal(t, "2025-02", feb.Month)
	assert.Equal(t, 2, feb.Total)
	assert.Equal(t, 2, feb.BySource["Inbound"])

	mar := report[1]
	assert.Equal(t, "2025-03", mar.Month)
	assert.Equal(t, 2, mar.Total)
	assert.Equal(t, 1, mar.BySource["Client referral"])
	assert.Equal(t, 1, mar.BySource["Outbound"])
}
