package models

import "time"

// RawDealRow is a single row lifted from an uploaded CSV (or a Google Sheet
// exported as CSV) before any type coercion. Every field is kept as the
// source string so a bad cell degrades that one deal instead of failing the
// whole file.
type RawDealRow struct {
	Owner         string `json:"owner"`
	Company       string `json:"company"`
	Stage         string `json:"stage"`
	SourceType    string `json:"source_type"`
	PipelineValue string `json:"pipeline"`
	DiscoveryDate string `json:"discovery_date"`
}

// Deal is the canonical sales opportunity record stored per view.
type Deal struct {
	ID            int64      `json:"id"`
	View          string     `json:"view"`
	Owner         string     `json:"owner"`
	Company       string     `json:"company"`
	Stage         string     `json:"stage"`
	SourceType    string     `json:"source_type"`
	PipelineValue float64    `json:"pipeline_value"`
	DiscoveryDate *time.Time `json:"discovery_date,omitempty"`
	InputString   string     `json:"-"`
	HashID        string     `json:"-"`
}

// ValuedDeal is a Deal annotated with its probability-adjusted value.
// Recomputed on every report request, never persisted.
type ValuedDeal struct {
	Deal
	AgeDays       int     `json:"age_days"`
	Probability   float64 `json:"probability"`
	WeightedValue float64 `json:"weighted_value"`
}

// OwnerSummary aggregates actively open pipeline per account executive.
type OwnerSummary struct {
	PipelineSum float64 `json:"pipeline_sum"`
	WeightedSum float64 `json:"weighted_sum"`
	Count       int     `json:"count"`
}

// RangeSummary aggregates deals discovered inside a date window, regardless
// of their current stage ("created pipe" semantics).
type RangeSummary struct {
	ValueSum    float64 `json:"value_sum"`
	WeightedSum float64 `json:"weighted_sum"`
	Count       int     `json:"count"`
}

// StageBucket is one row of the pipeline report.
type StageBucket struct {
	Stage       string  `json:"stage"`
	Count       int     `json:"count"`
	PipelineSum float64 `json:"pipeline_sum"`
	WeightedSum float64 `json:"weighted_sum"`
}

// AEPerformance combines an owner's aggregate with the targets configured
// for the view.
type AEPerformance struct {
	Owner          string  `json:"owner"`
	PipelineSum    float64 `json:"pipeline_sum"`
	WeightedSum    float64 `json:"weighted_sum"`
	DealCount      int     `json:"deal_count"`
	MeetingsBooked int     `json:"meetings_booked"`
	MeetingTarget  int     `json:"meeting_target"`
	WeightedTarget float64 `json:"weighted_target"`
}

// MonthlyProjection is one month of the closing projection report.
type MonthlyProjection struct {
	Month       string  `json:"month"` // "2006-01"
	ValueSum    float64 `json:"value_sum"`
	WeightedSum float64 `json:"weighted_sum"`
	Count       int     `json:"count"`
	Cumulative  float64 `json:"cumulative"`
}

// MeetingGeneration counts deals entering the pipeline per month, split by
// source type.
type MeetingGeneration struct {
	Month    string         `json:"month"`
	Total    int            `json:"total"`
	BySource map[string]int `json:"by_source"`
}
