package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/views"
)

// stubReportService records the arguments it was called with and returns
// canned data.
type stubReportService struct {
	lastView  string
	lastNow   time.Time
	lastMonth time.Time
	lastStart time.Time
	lastEnd   time.Time
	err       error
}

func (s *stubReportService) GetValuedDeals(view string, now time.Time) ([]models.ValuedDeal, error) {
	s.lastView, s.lastNow = view, now
	if s.err != nil {
		return nil, s.err
	}
	return []models.ValuedDeal{}, nil
}

func (s *stubReportService) GetPipelineReport(view string, now time.Time) ([]models.StageBucket, error) {
	s.lastView, s.lastNow = view, now
	if s.err != nil {
		return nil, s.err
	}
	return []models.StageBucket{{Stage: "D POA Booked", Count: 2}}, nil
}

func (s *stubReportService) GetAEPerformance(view string, month, now time.Time) ([]models.AEPerformance, error) {
	s.lastView, s.lastMonth, s.lastNow = view, month, now
	if s.err != nil {
		return nil, s.err
	}
	return []models.AEPerformance{}, nil
}

func (s *stubReportService) GetClosingProjections(view string, start, end, now time.Time) ([]models.MonthlyProjection, error) {
	s.lastView, s.lastStart, s.lastEnd, s.lastNow = view, start, end, now
	if s.err != nil {
		return nil, s.err
	}
	return []models.MonthlyProjection{}, nil
}

func (s *stubReportService) GetMeetingGeneration(view string, start, end time.Time) ([]models.MeetingGeneration, error) {
	s.lastView, s.lastStart, s.lastEnd = view, start, end
	if s.err != nil {
		return nil, s.err
	}
	return []models.MeetingGeneration{}, nil
}

func TestPipelineReportRequiresView(t *testing.T) {
	h := NewReportHandler(&stubReportService{})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/pipeline", nil)
	rec := httptest.NewRecorder()
	h.HandleGetPipelineReport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipelineReportParsesAsof(t *testing.T) {
	stub := &stubReportService{}
	h := NewReportHandler(stub)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/pipeline?view=uk&asof=2025-06-15", nil)
	rec := httptest.NewRecorder()
	h.HandleGetPipelineReport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uk", stub.lastView)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), stub.lastNow)
	assert.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestPipelineReportRejectsBadAsof(t *testing.T) {
	h := NewReportHandler(&stubReportService{})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/pipeline?view=uk&asof=June-2025", nil)
	rec := httptest.NewRecorder()
	h.HandleGetPipelineReport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipelineReportUnknownViewIs404(t *testing.T) {
	stub := &stubReportService{err: fmt.Errorf("%w: %q", views.ErrUnknownView, "nope")}
	h := NewReportHandler(stub)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/pipeline?view=nope", nil)
	rec := httptest.NewRecorder()
	h.HandleGetPipelineReport(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPipelineReportHonoursIfNoneMatch(t *testing.T) {
	h := NewReportHandler(&stubReportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/pipeline?view=uk&asof=2025-06-15", nil)
	rec := httptest.NewRecorder()
	h.HandleGetPipelineReport(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req2 := httptest.NewRequest(http.MethodGet, "/api/reports/pipeline?view=uk&asof=2025-06-15", nil)
	req2.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	h.HandleGetPipelineReport(rec2, req2)
	assert.Equal(t, http.StatusNotModified, rec2.Code)
	assert.Empty(t, rec2.Body.String())
}

func TestAEPerformanceDefaultsMonthToAsof(t *testing.T) {
	stub := &stubReportService{}
	h := NewReportHandler(stub)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/ae-performance?view=uk&asof=2025-06-15", nil)
	rec := httptest.NewRecorder()
	h.HandleGetAEPerformance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), stub.lastMonth)
}

func TestAEPerformanceExplicitMonth(t *testing.T) {
	stub := &stubReportService{}
	h := NewReportHandler(stub)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/ae-performance?view=uk&month=2025-03", nil)
	rec := httptest.NewRecorder()
	h.HandleGetAEPerformance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), stub.lastMonth)
}

func TestClosingProjectionsRequireMonthRange(t *testing.T) {
	h := NewReportHandler(&stubReportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/closing-projections?view=uk", nil)
	rec := httptest.NewRecorder()
	h.HandleGetClosingProjections(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/closing-projections?view=uk&start=2025-06&end=2025-01", nil)
	rec = httptest.NewRecorder()
	h.HandleGetClosingProjections(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "end before start should be rejected")
}

func TestMeetingGenerationPassesRange(t *testing.T) {
	stub := &stubReportService{}
	h := NewReportHandler(stub)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/meeting-generation?view=uk&start=2025-01&end=2025-06", nil)
	rec := httptest.NewRecorder()
	h.HandleGetMeetingGeneration(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), stub.lastStart)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), stub.lastEnd)
}
