package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/username/scrapdash/backend/src/models"
)

// keyHeader maps each grouping dimension to its key column header.
var keyHeader = map[models.GroupBy]string{
	models.GroupByDay:          "Date",
	models.GroupByWeek:         "Week",
	models.GroupByMonth:        "Month",
	models.GroupByMaterial:     "Material",
	models.GroupByCounterparty: "Counterparty",
}

// WriteCSV flattens an ordered grouped-aggregate list into tabular rows:
// one header row plus one row per group. Time-bucketed groupings carry the
// distinct material/counterparty counts as extra columns; categorical
// groupings omit them (the key itself is the dimension). Quoting of fields
// containing the delimiter is handled by encoding/csv.
//
// Precision follows on-screen display: currency two decimals, weight one,
// percentages one.
func WriteCSV(w io.Writer, groups []models.GroupedAggregate, groupBy models.GroupBy) error {
	writer := csv.NewWriter(w)

	header := []string{
		keyHeader[groupBy],
		"Purchases", "Sales",
		"Purchase Revenue", "Sales Revenue", "Net Profit",
		"Weight (kg)",
		"Min Price/kg", "Max Price/kg", "Avg Price/kg",
		"Margin %",
	}
	if groupBy.IsTimeBucketed() {
		header = append(header, "Materials", "Counterparties")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, g := range groups {
		row := []string{
			g.Key,
			strconv.Itoa(g.PurchaseCount),
			strconv.Itoa(g.SaleCount),
			currency(g.PurchaseRevenue),
			currency(g.SalesRevenue),
			currency(g.NetProfit),
			weight(g.Weight),
			currency(g.MinPricePerKg),
			currency(g.MaxPricePerKg),
			currency(g.AvgPricePerKg),
			percent(g.MarginPercent),
		}
		if groupBy.IsTimeBucketed() {
			row = append(row, strconv.Itoa(g.DistinctMaterials), strconv.Itoa(g.DistinctCounterparties))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("error writing CSV row for group %q: %w", g.Key, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func currency(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func weight(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
