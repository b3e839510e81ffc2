package reports

import (
	"time"

	"github.com/username/scrapdash/backend/src/aggregate"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// BuildWeeklyReport covers the Sunday-to-Saturday week containing anchor:
// totals, a seven-row day-by-day breakdown, revenue growth against the
// immediately preceding week, and the best-performing day by revenue.
func BuildWeeklyReport(txs []models.UnifiedTransaction, anchor time.Time) *models.WeeklyReport {
	weekStart := utils.StartOfWeek(anchor)
	weekEnd := weekStart.AddDate(0, 0, 6)

	filtered := aggregate.Filter(txs, models.FilterCriteria{
		StartDate: weekStart,
		EndDate:   weekEnd,
		GroupBy:   models.GroupByDay,
	})
	totals := aggregate.Totals(filtered)

	previous := aggregate.Filter(txs, models.FilterCriteria{
		StartDate: weekStart.AddDate(0, 0, -7),
		EndDate:   weekStart.AddDate(0, 0, -1),
		GroupBy:   models.GroupByDay,
	})
	previousTotals := aggregate.Totals(previous)

	days := dayBreakdown(filtered, weekStart)
	bestDay, bestRevenue := bestPerformingDay(days)

	return &models.WeeklyReport{
		WeekStart: weekStart.Format(utils.DefaultDateFormat),
		WeekEnd:   weekEnd.Format(utils.DefaultDateFormat),
		Totals:    totals,
		Days:      days,
		RevenueGrowth: utils.GrowthPercent(
			totals.PurchaseRevenue+totals.SalesRevenue,
			previousTotals.PurchaseRevenue+previousTotals.SalesRevenue),
		BestDay:        bestDay,
		BestDayRevenue: bestRevenue,
	}
}

// dayBreakdown folds the week's transactions into exactly seven rows, one
// per calendar day, including days with no activity.
func dayBreakdown(txs []models.UnifiedTransaction, weekStart time.Time) []models.WeeklyDayRow {
	rows := make([]models.WeeklyDayRow, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		key := date.Format(utils.DefaultDateFormat)
		rows[i] = models.WeeklyDayRow{
			Date:    key,
			Weekday: date.Weekday().String(),
		}
		index[key] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.TransactionDate.Format(utils.DefaultDateFormat)]
		if !ok {
			continue
		}
		rows[i].TransactionCount++
		rows[i].Weight += tx.WeightKg
		switch tx.Kind {
		case models.KindPurchase:
			rows[i].PurchaseRevenue += tx.TotalAmount
		case models.KindSale:
			rows[i].SalesRevenue += tx.TotalAmount
		}
	}
	for i := range rows {
		rows[i].NetProfit = rows[i].SalesRevenue - rows[i].PurchaseRevenue
	}
	return rows
}

// bestPerformingDay picks the day with the highest combined revenue. Ties
// break toward the earlier day; a week with no revenue reports the first day.
func bestPerformingDay(days []models.WeeklyDayRow) (string, float64) {
	best, bestRevenue := "", 0.0
	for _, row := range days {
		revenue := row.PurchaseRevenue + row.SalesRevenue
		if best == "" || revenue > bestRevenue {
			best, bestRevenue = row.Date, revenue
		}
	}
	return best, bestRevenue
}
