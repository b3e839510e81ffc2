package handlers

import (
	"net/http"

	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/reports"
	"github.com/username/scrapdash/backend/src/utils"
)

type TransactionHandler struct {
	reportService *reports.Service
}

func NewTransactionHandler(reportService *reports.Service) *TransactionHandler {
	return &TransactionHandler{reportService: reportService}
}

// HandleGetTransactions serves GET /api/transactions: the current unified
// transaction list, newest first.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.reportService.Transactions()
	if txs == nil {
		txs = []models.UnifiedTransaction{}
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

// HandleGetSummary serves GET /api/summary: the dashboard KPI numbers.
func (h *TransactionHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.Summary()
	if err != nil {
		writeReportError(w, err)
		return
	}
	utils.SendJSON(w, summary, http.StatusOK)
}
