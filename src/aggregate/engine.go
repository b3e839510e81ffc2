package aggregate

import (
	"sort"
	"time"

	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// accumulator carries the running state for one group while transactions are
// folded. Ratio fields of the aggregate (net profit, average price, margin)
// are derived in a separate finalize pass, keeping accumulation and
// derivation independently testable.
type accumulator struct {
	agg      *models.GroupedAggregate
	bucket   time.Time // bucket start for time groupings, zero otherwise
	order    int       // insertion order of first occurrence, for tie-breaks
	hasPrice bool      // whether any weighted transaction contributed a price
}

// Group folds a transaction set into one aggregate per group key and returns
// them ordered: time-bucketed groupings ascending by calendar bucket,
// categorical groupings descending by net profit, ties broken by insertion
// order of first occurrence.
func Group(txs []models.UnifiedTransaction, groupBy models.GroupBy) []models.GroupedAggregate {
	accs := make(map[string]*accumulator)
	var keys []string

	for _, tx := range txs {
		k, bucket := groupKey(tx, groupBy)
		acc, ok := accs[k]
		if !ok {
			acc = &accumulator{
				agg: &models.GroupedAggregate{
					Key:            k,
					Materials:      make(map[string]struct{}),
					Counterparties: make(map[string]struct{}),
				},
				bucket: bucket,
				order:  len(keys),
			}
			accs[k] = acc
			keys = append(keys, k)
		}
		accumulate(acc, tx)
	}

	groups := make([]models.GroupedAggregate, 0, len(keys))
	for _, k := range keys {
		finalize(accs[k].agg)
		groups = append(groups, *accs[k].agg)
	}

	if groupBy.IsTimeBucketed() {
		sort.SliceStable(groups, func(i, j int) bool {
			return accs[groups[i].Key].bucket.Before(accs[groups[j].Key].bucket)
		})
	} else {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].NetProfit > groups[j].NetProfit
		})
	}
	return groups
}

// groupKey derives the group label and, for time groupings, the bucket start
// used for chronological ordering.
func groupKey(tx models.UnifiedTransaction, groupBy models.GroupBy) (string, time.Time) {
	switch groupBy {
	case models.GroupByDay:
		return tx.TransactionDate.Format(utils.DefaultDateFormat), utils.StartOfDay(tx.TransactionDate)
	case models.GroupByWeek:
		return utils.WeekLabel(tx.TransactionDate), utils.StartOfWeek(tx.TransactionDate)
	case models.GroupByMonth:
		return utils.MonthLabel(tx.TransactionDate), utils.StartOfMonth(tx.TransactionDate)
	case models.GroupByMaterial:
		return tx.MaterialName, time.Time{}
	default: // models.GroupByCounterparty
		return tx.CounterpartyName, time.Time{}
	}
}

// accumulate folds one transaction into its group. Only transactions with
// weight contribute to the min/max price range.
func accumulate(acc *accumulator, tx models.UnifiedTransaction) {
	agg := acc.agg

	switch tx.Kind {
	case models.KindPurchase:
		agg.PurchaseCount++
		agg.PurchaseRevenue += tx.TotalAmount
	case models.KindSale:
		agg.SaleCount++
		agg.SalesRevenue += tx.TotalAmount
	}

	agg.Weight += tx.WeightKg
	agg.Materials[tx.MaterialName] = struct{}{}
	agg.Counterparties[tx.CounterpartyName] = struct{}{}

	if tx.WeightKg > 0 {
		price := tx.EffectivePricePerKg()
		if !acc.hasPrice {
			agg.MinPricePerKg = price
			agg.MaxPricePerKg = price
			acc.hasPrice = true
		} else {
			if price < agg.MinPricePerKg {
				agg.MinPricePerKg = price
			}
			if price > agg.MaxPricePerKg {
				agg.MaxPricePerKg = price
			}
		}
	}
}

// finalize derives the ratio statistics after all transactions are folded.
// A group with zero weight reports an average price of 0, never NaN.
func finalize(agg *models.GroupedAggregate) {
	agg.NetProfit = agg.SalesRevenue - agg.PurchaseRevenue
	agg.DistinctMaterials = len(agg.Materials)
	agg.DistinctCounterparties = len(agg.Counterparties)
	agg.AvgPricePerKg = utils.SafeDivide(agg.PurchaseRevenue+agg.SalesRevenue, agg.Weight)
	if agg.SalesRevenue > 0 {
		agg.MarginPercent = agg.NetProfit / agg.SalesRevenue * 100
	}
}

// Totals computes the top-level figures of a window directly from the
// filtered set. Summing the grouped aggregates over the same set must yield
// the same revenue figures; no transaction is double-counted or dropped.
func Totals(txs []models.UnifiedTransaction) models.ReportTotals {
	var t models.ReportTotals
	for _, tx := range txs {
		switch tx.Kind {
		case models.KindPurchase:
			t.PurchaseCount++
			t.PurchaseRevenue += tx.TotalAmount
		case models.KindSale:
			t.SaleCount++
			t.SalesRevenue += tx.TotalAmount
		}
		t.TotalWeight += tx.WeightKg
	}
	t.NetProfit = t.SalesRevenue - t.PurchaseRevenue
	t.AvgPricePerKg = utils.SafeDivide(t.PurchaseRevenue+t.SalesRevenue, t.TotalWeight)
	return t
}
