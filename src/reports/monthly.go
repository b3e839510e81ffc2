package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/username/scrapdash/backend/src/aggregate"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// TopCounterpartyCount is the size of the monthly counterparty leaderboard.
const TopCounterpartyCount = 10

// BuildMonthlyReport covers the calendar month containing anchor: totals, a
// week-by-week breakdown, month-over-month and year-over-year growth, the
// top counterparties by revenue, and per-material price analysis.
func BuildMonthlyReport(txs []models.UnifiedTransaction, anchor time.Time) *models.MonthlyReport {
	monthStart := utils.StartOfMonth(anchor)
	monthEnd := utils.EndOfMonth(anchor)

	filtered := aggregate.Filter(txs, models.FilterCriteria{
		StartDate: monthStart,
		EndDate:   monthEnd,
		GroupBy:   models.GroupByWeek,
	})
	totals := aggregate.Totals(filtered)

	return &models.MonthlyReport{
		Month:             utils.MonthLabel(anchor),
		Totals:            totals,
		Weeks:             weekBreakdown(filtered, monthStart, monthEnd),
		MonthOverMonth:    windowGrowth(txs, totals, monthStart.AddDate(0, -1, 0)),
		YearOverYear:      windowGrowth(txs, totals, monthStart.AddDate(-1, 0, 0)),
		TopCounterparties: topCounterparties(filtered),
		MaterialPrices:    materialPriceAnalysis(filtered),
	}
}

// windowGrowth compares the current month's combined revenue against the
// month starting at previousStart.
func windowGrowth(txs []models.UnifiedTransaction, current models.ReportTotals, previousStart time.Time) float64 {
	previous := aggregate.Totals(aggregate.Filter(txs, models.FilterCriteria{
		StartDate: previousStart,
		EndDate:   utils.EndOfMonth(previousStart),
		GroupBy:   models.GroupByMonth,
	}))
	return utils.GrowthPercent(
		current.PurchaseRevenue+current.SalesRevenue,
		previous.PurchaseRevenue+previous.SalesRevenue)
}

// weekBreakdown folds the month's transactions into Sunday-anchored week
// rows clipped to the month's boundaries. The row count varies with month
// length and alignment.
func weekBreakdown(txs []models.UnifiedTransaction, monthStart, monthEnd time.Time) []models.MonthlyWeekRow {
	var rows []models.MonthlyWeekRow
	starts := make([]time.Time, 0, 6)

	for weekStart := utils.StartOfWeek(monthStart); !weekStart.After(monthEnd); weekStart = weekStart.AddDate(0, 0, 7) {
		rowStart := weekStart
		if rowStart.Before(monthStart) {
			rowStart = monthStart
		}
		rowEnd := utils.StartOfDay(weekStart.AddDate(0, 0, 6))
		if rowEnd.After(monthEnd) {
			rowEnd = utils.StartOfDay(monthEnd)
		}
		rows = append(rows, models.MonthlyWeekRow{
			Label: fmt.Sprintf("Week %d", len(rows)+1),
			Start: rowStart.Format(utils.DefaultDateFormat),
			End:   rowEnd.Format(utils.DefaultDateFormat),
		})
		starts = append(starts, weekStart)
	}

	for _, tx := range txs {
		weekStart := utils.StartOfWeek(tx.TransactionDate)
		for i, start := range starts {
			if start.Equal(weekStart) {
				rows[i].TransactionCount++
				rows[i].Weight += tx.WeightKg
				switch tx.Kind {
				case models.KindPurchase:
					rows[i].PurchaseRevenue += tx.TotalAmount
				case models.KindSale:
					rows[i].SalesRevenue += tx.TotalAmount
				}
				break
			}
		}
	}
	for i := range rows {
		rows[i].NetProfit = rows[i].SalesRevenue - rows[i].PurchaseRevenue
	}
	return rows
}

// topCounterparties ranks the month's counterparties by combined revenue,
// keeping the top N.
func topCounterparties(txs []models.UnifiedTransaction) []models.CounterpartyRank {
	groups := aggregate.Group(txs, models.GroupByCounterparty)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].PurchaseRevenue+groups[i].SalesRevenue >
			groups[j].PurchaseRevenue+groups[j].SalesRevenue
	})

	limit := len(groups)
	if limit > TopCounterpartyCount {
		limit = TopCounterpartyCount
	}
	ranks := make([]models.CounterpartyRank, 0, limit)
	for i := 0; i < limit; i++ {
		g := groups[i]
		ranks = append(ranks, models.CounterpartyRank{
			Rank:             i + 1,
			CounterpartyName: g.Key,
			TransactionCount: g.PurchaseCount + g.SaleCount,
			Revenue:          g.PurchaseRevenue + g.SalesRevenue,
			Weight:           g.Weight,
		})
	}
	return ranks
}

// materialPriceAnalysis reports min/max/avg price-per-kg per material over
// the month, ordered by revenue descending.
func materialPriceAnalysis(txs []models.UnifiedTransaction) []models.MaterialPriceStat {
	groups := aggregate.Group(txs, models.GroupByMaterial)
	stats := make([]models.MaterialPriceStat, 0, len(groups))
	for _, g := range groups {
		stats = append(stats, models.MaterialPriceStat{
			Material:      g.Key,
			MinPricePerKg: g.MinPricePerKg,
			MaxPricePerKg: g.MaxPricePerKg,
			AvgPricePerKg: g.AvgPricePerKg,
			Weight:        g.Weight,
			Revenue:       g.PurchaseRevenue + g.SalesRevenue,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Revenue > stats[j].Revenue
	})
	return stats
}
