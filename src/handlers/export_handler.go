package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/scrapdash/backend/src/export"
	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/reports"
)

type ExportHandler struct {
	reportService *reports.Service
}

func NewExportHandler(reportService *reports.Service) *ExportHandler {
	return &ExportHandler{reportService: reportService}
}

// HandleExport serves GET /api/export: the grouped rows of a custom report
// flattened to CSV for download. Filter parameters mirror POST /api/reports,
// passed as query parameters with comma-separated lists.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := reportRequest{
		StartDate:        q.Get("start_date"),
		EndDate:          q.Get("end_date"),
		Materials:        splitList(q.Get("materials")),
		Counterparties:   splitList(q.Get("counterparties")),
		TransactionTypes: splitList(q.Get("transaction_types")),
		GroupBy:          q.Get("group_by"),
	}

	report, err := h.reportService.GenerateReport(req.toCriteria())
	if err != nil {
		writeReportError(w, err)
		return
	}

	filename := fmt.Sprintf("scrapdash_%s_%s_%s.csv",
		report.GroupBy, report.StartDate, report.EndDate)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(w, report.Groups, report.GroupBy); err != nil {
		// Headers are already out; all we can do is log.
		logger.L.Error("CSV export failed mid-stream", "error", err)
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
