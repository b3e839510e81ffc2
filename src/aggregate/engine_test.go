package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/scrapdash/backend/src/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func purchase(id string, day time.Time, material, counterparty string, amount, weight float64) models.UnifiedTransaction {
	return models.UnifiedTransaction{
		ID:               id,
		Kind:             models.KindPurchase,
		CounterpartyName: counterparty,
		CounterpartyKey:  counterparty,
		MaterialName:     material,
		TransactionDate:  day,
		CreatedAt:        day,
		TotalAmount:      amount,
		WeightKg:         weight,
	}
}

func sale(id string, day time.Time, material, counterparty string, amount, weight float64) models.UnifiedTransaction {
	tx := purchase(id, day, material, counterparty, amount, weight)
	tx.Kind = models.KindSale
	return tx
}

func TestGroupByDaySingleBucket(t *testing.T) {
	day := date(2024, 3, 1)
	txs := []models.UnifiedTransaction{
		purchase("p1", day, "Copper", "Juma", 800, 10),
		purchase("p2", day, "Copper", "Asha", 500, 5),
	}

	groups := Group(txs, models.GroupByDay)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "01-03-2024", g.Key)
	assert.Equal(t, 2, g.PurchaseCount)
	assert.Equal(t, 0, g.SaleCount)
	assert.Equal(t, 1300.0, g.PurchaseRevenue)
	assert.Equal(t, 15.0, g.Weight)
	assert.InDelta(t, 86.6667, g.AvgPricePerKg, 0.001)
	assert.Equal(t, 1, g.DistinctMaterials)
	assert.Equal(t, 2, g.DistinctCounterparties)
	assert.InDelta(t, 50.0, g.MinPricePerKg, 0.0001)
	assert.InDelta(t, 100.0, g.MaxPricePerKg, 0.0001)
}

func TestGroupZeroWeightAveragePrice(t *testing.T) {
	day := date(2024, 3, 1)
	txs := []models.UnifiedTransaction{
		sale("s1", day, "Plastic", "Coast Ltd", 0, 0),
		purchase("p1", day, "Copper", "Juma", 100, 10),
	}

	groups := Group(txs, models.GroupByMaterial)
	require.Len(t, groups, 2)

	var plastic, copper models.GroupedAggregate
	for _, g := range groups {
		switch g.Key {
		case "Plastic":
			plastic = g
		case "Copper":
			copper = g
		}
	}
	assert.Zero(t, plastic.AvgPricePerKg)
	assert.Zero(t, plastic.MinPricePerKg)
	assert.Zero(t, plastic.MaxPricePerKg)
	assert.InDelta(t, 10.0, copper.AvgPricePerKg, 0.0001)
}

func TestGroupZeroWeightExcludedFromPriceRange(t *testing.T) {
	day := date(2024, 3, 1)
	txs := []models.UnifiedTransaction{
		purchase("p1", day, "Copper", "Juma", 200, 2),  // 100/kg
		purchase("p2", day, "Copper", "Asha", 500, 0),  // weightless, no price signal
		purchase("p3", day, "Copper", "Omar", 240, 4),  // 60/kg
	}

	groups := Group(txs, models.GroupByMaterial)
	require.Len(t, groups, 1)
	assert.InDelta(t, 60.0, groups[0].MinPricePerKg, 0.0001)
	assert.InDelta(t, 100.0, groups[0].MaxPricePerKg, 0.0001)
}

func TestGroupTimeOrderingIsChronological(t *testing.T) {
	txs := []models.UnifiedTransaction{
		purchase("p1", date(2024, 3, 5), "Copper", "Juma", 100, 1),
		purchase("p2", date(2024, 3, 1), "Copper", "Juma", 100, 1),
		purchase("p3", date(2024, 3, 3), "Copper", "Juma", 100, 1),
	}

	groups := Group(txs, models.GroupByDay)
	require.Len(t, groups, 3)
	assert.Equal(t, "01-03-2024", groups[0].Key)
	assert.Equal(t, "03-03-2024", groups[1].Key)
	assert.Equal(t, "05-03-2024", groups[2].Key)
}

func TestGroupMonthOrderingIsChronologicalNotLexical(t *testing.T) {
	// "April 2024" sorts before "January 2024" lexically; the engine must
	// order by calendar bucket instead.
	txs := []models.UnifiedTransaction{
		purchase("p1", date(2024, 4, 10), "Copper", "Juma", 100, 1),
		purchase("p2", date(2024, 1, 10), "Copper", "Juma", 100, 1),
	}

	groups := Group(txs, models.GroupByMonth)
	require.Len(t, groups, 2)
	assert.Equal(t, "January 2024", groups[0].Key)
	assert.Equal(t, "April 2024", groups[1].Key)
}

func TestGroupCategoricalOrderingByNetProfit(t *testing.T) {
	day := date(2024, 3, 1)
	txs := []models.UnifiedTransaction{
		purchase("p1", day, "Copper", "Juma", 500, 5),    // net -500
		sale("s1", day, "Aluminium", "Coast", 900, 10),   // net +900
		sale("s2", day, "Steel", "Coast", 200, 4),        // net +200
	}

	groups := Group(txs, models.GroupByMaterial)
	require.Len(t, groups, 3)
	assert.Equal(t, "Aluminium", groups[0].Key)
	assert.Equal(t, "Steel", groups[1].Key)
	assert.Equal(t, "Copper", groups[2].Key)
}

func TestGroupMarginPercent(t *testing.T) {
	day := date(2024, 3, 1)
	txs := []models.UnifiedTransaction{
		purchase("p1", day, "Copper", "Juma", 600, 10),
		sale("s1", day, "Copper", "Coast", 1000, 10),
	}

	groups := Group(txs, models.GroupByMaterial)
	require.Len(t, groups, 1)
	assert.Equal(t, 400.0, groups[0].NetProfit)
	assert.InDelta(t, 40.0, groups[0].MarginPercent, 0.0001)

	// No sales: margin stays zero rather than dividing by zero.
	onlyBuys := Group(txs[:1], models.GroupByMaterial)
	require.Len(t, onlyBuys, 1)
	assert.Zero(t, onlyBuys[0].MarginPercent)
}

func TestGroupRevenueConservation(t *testing.T) {
	txs := []models.UnifiedTransaction{
		purchase("p1", date(2024, 3, 1), "Copper", "Juma", 800, 10),
		purchase("p2", date(2024, 3, 2), "Steel", "Asha", 500, 50),
		sale("s1", date(2024, 3, 2), "Copper", "Coast", 1200, 8),
		sale("s2", date(2024, 3, 15), "Steel", "Inland", 300, 30),
	}
	totals := Totals(txs)

	for _, groupBy := range []models.GroupBy{
		models.GroupByDay, models.GroupByWeek, models.GroupByMonth,
		models.GroupByMaterial, models.GroupByCounterparty,
	} {
		groups := Group(txs, groupBy)
		var purchaseRev, salesRev, weight float64
		var count int
		for _, g := range groups {
			purchaseRev += g.PurchaseRevenue
			salesRev += g.SalesRevenue
			weight += g.Weight
			count += g.PurchaseCount + g.SaleCount
		}
		assert.InDelta(t, totals.PurchaseRevenue, purchaseRev, 0.0001, "groupBy=%s", groupBy)
		assert.InDelta(t, totals.SalesRevenue, salesRev, 0.0001, "groupBy=%s", groupBy)
		assert.InDelta(t, totals.TotalWeight, weight, 0.0001, "groupBy=%s", groupBy)
		assert.Equal(t, totals.PurchaseCount+totals.SaleCount, count, "groupBy=%s", groupBy)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	groups := Group(nil, models.GroupByDay)
	assert.Empty(t, groups)
	assert.NotNil(t, groups)
}

func TestTotals(t *testing.T) {
	txs := []models.UnifiedTransaction{
		purchase("p1", date(2024, 3, 1), "Copper", "Juma", 800, 10),
		sale("s1", date(2024, 3, 2), "Copper", "Coast", 1200, 8),
	}
	totals := Totals(txs)

	assert.Equal(t, 1, totals.PurchaseCount)
	assert.Equal(t, 1, totals.SaleCount)
	assert.Equal(t, 800.0, totals.PurchaseRevenue)
	assert.Equal(t, 1200.0, totals.SalesRevenue)
	assert.Equal(t, 400.0, totals.NetProfit)
	assert.Equal(t, 18.0, totals.TotalWeight)
	assert.InDelta(t, 2000.0/18.0, totals.AvgPricePerKg, 0.0001)
}

func TestTotalsEmpty(t *testing.T) {
	totals := Totals(nil)
	assert.Zero(t, totals.PurchaseCount)
	assert.Zero(t, totals.NetProfit)
	assert.Zero(t, totals.AvgPricePerKg)
}
