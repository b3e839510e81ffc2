package aggregate

import (
	"fmt"

	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// ValidateCriteria rejects a filter before any aggregation runs. Callers get
// an explicit validation failure instead of a silently empty report.
func ValidateCriteria(c models.FilterCriteria) error {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: date range is required", models.ErrInvalidFilter)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date %s precedes start date %s", models.ErrInvalidFilter,
			c.EndDate.Format(utils.DefaultDateFormat), c.StartDate.Format(utils.DefaultDateFormat))
	}
	switch c.GroupBy {
	case models.GroupByDay, models.GroupByWeek, models.GroupByMonth,
		models.GroupByMaterial, models.GroupByCounterparty:
	default:
		return fmt.Errorf("%w: unknown grouping %q", models.ErrInvalidFilter, c.GroupBy)
	}
	for _, kind := range c.TransactionTypes {
		if kind != models.KindPurchase && kind != models.KindSale {
			return fmt.Errorf("%w: unknown transaction type %q", models.ErrInvalidFilter, kind)
		}
	}
	return nil
}

// Filter narrows the working set by date range, material set, counterparty
// set, and transaction type, preserving the input order. All four predicates
// are ANDed; an empty filter set passes everything. The end bound is
// normalized to end-of-day so both bounds are inclusive.
func Filter(txs []models.UnifiedTransaction, c models.FilterCriteria) []models.UnifiedTransaction {
	start := utils.StartOfDay(c.StartDate)
	end := utils.EndOfDay(c.EndDate)

	materials := toSet(c.Materials)
	counterparties := toSet(c.Counterparties)
	kinds := make(map[models.TransactionKind]struct{}, len(c.TransactionTypes))
	for _, k := range c.TransactionTypes {
		kinds[k] = struct{}{}
	}

	out := make([]models.UnifiedTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.TransactionDate.Before(start) || tx.TransactionDate.After(end) {
			continue
		}
		if len(materials) > 0 {
			if _, ok := materials[tx.MaterialName]; !ok {
				continue
			}
		}
		if len(counterparties) > 0 {
			if _, ok := counterparties[tx.CounterpartyName]; !ok {
				continue
			}
		}
		if len(kinds) > 0 {
			if _, ok := kinds[tx.Kind]; !ok {
				continue
			}
		}
		out = append(out, tx)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
