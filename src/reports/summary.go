package reports

import (
	"time"

	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// BuildSummary derives the top-level dashboard KPI numbers from the unified
// set: totals, distinct active counterparties, average transaction value,
// and trailing 30-day vs prior 30-day revenue growth. An empty set yields
// all-zero output.
//
// The growth windows are anchored on the ingestion timestamp, matching the
// dashboard's "recent activity" semantics.
func BuildSummary(txs []models.UnifiedTransaction, now time.Time) models.Summary {
	var s models.Summary
	counterparties := make(map[string]struct{})

	currentStart := now.AddDate(0, 0, -30)
	priorStart := now.AddDate(0, 0, -60)
	var currentRevenue, priorRevenue float64

	for _, tx := range txs {
		s.TransactionCount++
		s.CombinedRevenue += tx.TotalAmount
		s.TotalWeight += tx.WeightKg
		if tx.Kind == models.KindSale {
			s.SalesRevenue += tx.TotalAmount
		}
		counterparties[tx.CounterpartyKey] = struct{}{}

		switch {
		case tx.CreatedAt.After(currentStart) && !tx.CreatedAt.After(now):
			currentRevenue += tx.TotalAmount
		case tx.CreatedAt.After(priorStart) && !tx.CreatedAt.After(currentStart):
			priorRevenue += tx.TotalAmount
		}
	}

	s.ActiveCounterparties = len(counterparties)
	s.AvgTransactionValue = utils.SafeDivide(s.CombinedRevenue, float64(s.TransactionCount))
	s.RevenueGrowth = utils.GrowthPercent(currentRevenue, priorRevenue)
	return s
}
