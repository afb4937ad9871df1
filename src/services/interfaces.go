package services

import (
	"io"
	"time"

	"github.com/username/dealfolio/backend/src/models"
)

// UploadSummary reports what an upload (or scheduled sync) did.
type UploadSummary struct {
	View       string `json:"view"`
	Parsed     int    `json:"parsed"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
}

// DealService owns the deal snapshot per view: ingestion, retrieval,
// deletion and the cache that sits in front of the database.
type DealService interface {
	ProcessUpload(fileReader io.Reader, view, source string) (*UploadSummary, error)
	GetDeals(view string) ([]models.Deal, error)
	DeleteAllDeals(view string) error
	InvalidateViewCache(view string)
}

// ReportService computes the dashboard reports for a view at a reference
// time. Every report is a pure recomputation over the view's deal snapshot.
type ReportService interface {
	GetValuedDeals(view string, now time.Time) ([]models.ValuedDeal, error)
	GetPipelineReport(view string, now time.Time) ([]models.StageBucket, error)
	GetAEPerformance(view string, month, now time.Time) ([]models.AEPerformance, error)
	GetClosingProjections(view string, start, end, now time.Time) ([]models.MonthlyProjection, error)
	GetMeetingGeneration(view string, start, end time.Time) ([]models.MeetingGeneration, error)
}

// EmailService sends the account lifecycle emails.
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}
