package models

// ReportTotals are the top-level figures of a report window, computed from
// the filtered transaction set directly (not by summing groups), so the two
// can be checked against each other.
type ReportTotals struct {
	PurchaseCount   int     `json:"purchase_count"`
	SaleCount       int     `json:"sale_count"`
	PurchaseRevenue float64 `json:"purchase_revenue"`
	SalesRevenue    float64 `json:"sales_revenue"`
	NetProfit       float64 `json:"net_profit"`
	TotalWeight     float64 `json:"total_weight"`
	AvgPricePerKg   float64 `json:"avg_price_per_kg"`
}

// Distribution is one bucket of a categorical breakdown (payment method,
// quality grade) with its share of the window's transactions.
type Distribution struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CustomReport exposes the raw grouped rows for a caller-specified window
// and grouping, plus the window totals.
type CustomReport struct {
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	GroupBy   GroupBy            `json:"group_by"`
	Groups    []GroupedAggregate `json:"groups"`
	Totals    ReportTotals       `json:"totals"`
	Partial   bool               `json:"partial"`
}

// DailyReport covers one calendar day.
type DailyReport struct {
	Date           string         `json:"date"`
	Totals         ReportTotals   `json:"totals"`
	PeakHour       int            `json:"peak_hour"`
	PeakHourCount  int            `json:"peak_hour_count"`
	PaymentMethods []Distribution `json:"payment_methods"`
	QualityGrades  []Distribution `json:"quality_grades"`
	Partial        bool           `json:"partial"`
}

// WeeklyDayRow is one day of a weekly report's day-by-day breakdown. All
// seven days of the week are present even when no transactions occurred.
type WeeklyDayRow struct {
	Date             string  `json:"date"`
	Weekday          string  `json:"weekday"`
	TransactionCount int     `json:"transaction_count"`
	PurchaseRevenue  float64 `json:"purchase_revenue"`
	SalesRevenue     float64 `json:"sales_revenue"`
	NetProfit        float64 `json:"net_profit"`
	Weight           float64 `json:"weight"`
}

// WeeklyReport covers one Sunday-to-Saturday week.
type WeeklyReport struct {
	WeekStart      string         `json:"week_start"`
	WeekEnd        string         `json:"week_end"`
	Totals         ReportTotals   `json:"totals"`
	Days           []WeeklyDayRow `json:"days"`
	RevenueGrowth  float64        `json:"revenue_growth_percent"`
	BestDay        string         `json:"best_day"`
	BestDayRevenue float64        `json:"best_day_revenue"`
	Partial        bool           `json:"partial"`
}

// MonthlyWeekRow is one Sunday-anchored week of a monthly report, clipped to
// the month's boundaries.
type MonthlyWeekRow struct {
	Label            string  `json:"label"`
	Start            string  `json:"start"`
	End              string  `json:"end"`
	TransactionCount int     `json:"transaction_count"`
	PurchaseRevenue  float64 `json:"purchase_revenue"`
	SalesRevenue     float64 `json:"sales_revenue"`
	NetProfit        float64 `json:"net_profit"`
	Weight           float64 `json:"weight"`
}

// CounterpartyRank is one entry of the monthly top-counterparty leaderboard.
type CounterpartyRank struct {
	Rank             int     `json:"rank"`
	CounterpartyName string  `json:"counterparty_name"`
	TransactionCount int     `json:"transaction_count"`
	Revenue          float64 `json:"revenue"`
	Weight           float64 `json:"weight"`
}

// MaterialPriceStat is the per-material price analysis of a monthly report.
// Min/max/avg come only from transactions with weight, and default to 0 when
// none qualify.
type MaterialPriceStat struct {
	Material      string  `json:"material"`
	MinPricePerKg float64 `json:"min_price_per_kg"`
	MaxPricePerKg float64 `json:"max_price_per_kg"`
	AvgPricePerKg float64 `json:"avg_price_per_kg"`
	Weight        float64 `json:"weight"`
	Revenue       float64 `json:"revenue"`
}

// MonthlyReport covers one calendar month.
type MonthlyReport struct {
	Month             string              `json:"month"`
	Totals            ReportTotals        `json:"totals"`
	Weeks             []MonthlyWeekRow    `json:"weeks"`
	MonthOverMonth    float64             `json:"month_over_month_percent"`
	YearOverYear      float64             `json:"year_over_year_percent"`
	TopCounterparties []CounterpartyRank  `json:"top_counterparties"`
	MaterialPrices    []MaterialPriceStat `json:"material_prices"`
	Partial           bool                `json:"partial"`
}

// Summary holds the top-level dashboard KPI numbers derived from the full
// unified set.
type Summary struct {
	TransactionCount     int     `json:"transaction_count"`
	SalesRevenue         float64 `json:"sales_revenue"`
	CombinedRevenue      float64 `json:"combined_revenue"`
	TotalWeight          float64 `json:"total_weight"`
	ActiveCounterparties int     `json:"active_counterparties"`
	AvgTransactionValue  float64 `json:"avg_transaction_value"`
	RevenueGrowth        float64 `json:"revenue_growth_percent"`
	Partial              bool    `json:"partial"`
}
