package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/reports"
	"github.com/username/scrapdash/backend/src/utils"
)

type ReportHandler struct {
	reportService *reports.Service
}

func NewReportHandler(reportService *reports.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// reportRequest mirrors FilterCriteria with dates as display-format strings.
type reportRequest struct {
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Materials        []string `json:"materials"`
	Counterparties   []string `json:"counterparties"`
	TransactionTypes []string `json:"transaction_types"`
	GroupBy          string   `json:"group_by"`
}

func (req reportRequest) toCriteria() models.FilterCriteria {
	kinds := make([]models.TransactionKind, 0, len(req.TransactionTypes))
	for _, t := range req.TransactionTypes {
		kinds = append(kinds, models.TransactionKind(t))
	}
	return models.FilterCriteria{
		StartDate:        utils.ParseDate(req.StartDate),
		EndDate:          utils.ParseDate(req.EndDate),
		Materials:        req.Materials,
		Counterparties:   req.Counterparties,
		TransactionTypes: kinds,
		GroupBy:          models.GroupBy(req.GroupBy),
	}
}

// HandleGenerateReport serves POST /api/reports.
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reportService.GenerateReport(req.toCriteria())
	if err != nil {
		writeReportError(w, err)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// HandleDailyReport serves GET /api/reports/daily?date=DD-MM-YYYY.
func (h *ReportHandler) HandleDailyReport(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.reportService.DailyReport(day)
	if err != nil {
		writeReportError(w, err)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// HandleWeeklyReport serves GET /api/reports/weekly?date=DD-MM-YYYY, where
// date is any day of the wanted week.
func (h *ReportHandler) HandleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	anchor, err := dateParam(r, "date")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.reportService.WeeklyReport(anchor)
	if err != nil {
		writeReportError(w, err)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// HandleMonthlyReport serves GET /api/reports/monthly?date=DD-MM-YYYY, where
// date is any day of the wanted month.
func (h *ReportHandler) HandleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	anchor, err := dateParam(r, "date")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.reportService.MonthlyReport(anchor)
	if err != nil {
		writeReportError(w, err)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// dateParam reads an optional date query parameter, defaulting to today.
func dateParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(utils.DefaultDateFormat, value)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name + " parameter, expected " + utils.DefaultDateFormat)
	}
	return t, nil
}

// writeReportError maps service errors to HTTP statuses. A source that has
// not loaded yet is a retryable 503; an invalid filter is the caller's 400.
func writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidFilter):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrSourceUnavailable):
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":     err.Error(),
			"retryable": true,
		})
	default:
		logger.L.Error("Report generation failed", "error", err)
		utils.SendJSONError(w, "error generating report", http.StatusInternalServerError)
	}
}
