package reports

import (
	"github.com/username/scrapdash/backend/src/aggregate"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// BuildCustomReport runs the filter pipeline and aggregation engine over a
// caller-specified window and grouping. An empty filtered set produces a
// well-formed report with zero totals and an empty group list.
func BuildCustomReport(txs []models.UnifiedTransaction, c models.FilterCriteria) *models.CustomReport {
	filtered := aggregate.Filter(txs, c)
	return &models.CustomReport{
		StartDate: c.StartDate.Format(utils.DefaultDateFormat),
		EndDate:   c.EndDate.Format(utils.DefaultDateFormat),
		GroupBy:   c.GroupBy,
		Groups:    aggregate.Group(filtered, c.GroupBy),
		Totals:    aggregate.Totals(filtered),
	}
}
