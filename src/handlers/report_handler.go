package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/services"
	"github.com/username/dealfolio/backend/src/utils"
	"github.com/username/dealfolio/backend/src/views"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// referenceTime reads the optional "asof" query parameter (YYYY-MM-DD) used
// to compute deal ages and probabilities. Defaults to the current UTC time,
// so historical dashboards can be reproduced exactly.
func referenceTime(r *http.Request) (time.Time, error) {
	asof := r.URL.Query().Get("asof")
	if asof == "" {
		return time.Now().UTC(), nil
	}
	return utils.ParseDate(asof)
}

func monthParam(r *http.Request, name string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := utils.ParseMonth(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (h *ReportHandler) HandleGetValuedDeals(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	now, err := referenceTime(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid 'asof' date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	valued, err := h.reportService.GetValuedDeals(view, now)
	if err != nil {
		sendReportError(w, "valued deals", view, err)
		return
	}
	writeJSONWithETag(w, r, valued)
}

func (h *ReportHandler) HandleGetPipelineReport(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	now, err := referenceTime(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid 'asof' date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	report, err := h.reportService.GetPipelineReport(view, now)
	if err != nil {
		sendReportError(w, "pipeline report", view, err)
		return
	}
	writeJSONWithETag(w, r, report)
}

func (h *ReportHandler) HandleGetAEPerformance(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	now, err := referenceTime(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid 'asof' date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	month, set, err := monthParam(r, "month")
	if err != nil {
		utils.SendJSONError(w, "Invalid 'month', expected YYYY-MM", http.StatusBadRequest)
		return
	}
	if !set {
		month = utils.MonthStart(now)
	}
	report, err := h.reportService.GetAEPerformance(view, month, now)
	if err != nil {
		sendReportError(w, "AE performance", view, err)
		return
	}
	writeJSONWithETag(w, r, report)
}

func (h *ReportHandler) HandleGetClosingProjections(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	now, err := referenceTime(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid 'asof' date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	start, end, ok := requireMonthRange(w, r)
	if !ok {
		return
	}
	report, err := h.reportService.GetClosingProjections(view, start, end, now)
	if err != nil {
		sendReportError(w, "closing projections", view, err)
		return
	}
	writeJSONWithETag(w, r, report)
}

func (h *ReportHandler) HandleGetMeetingGeneration(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	start, end, ok := requireMonthRange(w, r)
	if !ok {
		return
	}
	report, err := h.reportService.GetMeetingGeneration(view, start, end)
	if err != nil {
		sendReportError(w, "meeting generation", view, err)
		return
	}
	writeJSONWithETag(w, r, report)
}

// requireMonthRange reads the mandatory "start" and "end" query parameters
// (YYYY-MM, inclusive).
func requireMonthRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, startSet, err := monthParam(r, "start")
	if err != nil || !startSet {
		utils.SendJSONError(w, "A 'start' month (YYYY-MM) is required", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	end, endSet, err := monthParam(r, "end")
	if err != nil || !endSet {
		utils.SendJSONError(w, "An 'end' month (YYYY-MM) is required", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		utils.SendJSONError(w, "'end' month must not be before 'start' month", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func sendReportError(w http.ResponseWriter, report, view string, err error) {
	if errors.Is(err, views.ErrUnknownView) {
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	logger.L.Error("Failed to build report", "report", report, "view", view, "error", err)
	utils.SendJSONError(w, "Failed to build "+report, http.StatusInternalServerError)
}

// writeJSONWithETag sends the payload with an ETag and honours
// If-None-Match so unchanged dashboards cost the client nothing.
func writeJSONWithETag(w http.ResponseWriter, r *http.Request, payload interface{}) {
	etag, err := utils.GenerateETag(payload)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	if encErr := json.NewEncoder(w).Encode(payload); encErr != nil {
		logger.L.Error("Error encoding report JSON response", "error", encErr)
	}
}
