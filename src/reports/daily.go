package reports

import (
	"sort"
	"time"

	"github.com/username/scrapdash/backend/src/aggregate"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// BuildDailyReport covers one calendar day: totals, the peak activity hour,
// and payment-method / quality-grade distributions.
func BuildDailyReport(txs []models.UnifiedTransaction, day time.Time) *models.DailyReport {
	criteria := models.FilterCriteria{
		StartDate: day,
		EndDate:   day,
		GroupBy:   models.GroupByDay,
	}
	filtered := aggregate.Filter(txs, criteria)

	peakHour, peakCount := peakActivityHour(filtered)

	return &models.DailyReport{
		Date:           utils.StartOfDay(day).Format(utils.DefaultDateFormat),
		Totals:         aggregate.Totals(filtered),
		PeakHour:       peakHour,
		PeakHourCount:  peakCount,
		PaymentMethods: distribution(filtered, func(tx models.UnifiedTransaction) string { return tx.PaymentMethod }),
		QualityGrades:  distribution(filtered, func(tx models.UnifiedTransaction) string { return tx.QualityGrade }),
	}
}

// peakActivityHour finds the hour-of-day bucket with the most transactions,
// using the ingestion timestamp. Ties break toward the earliest hour; an
// empty day reports hour 0 with count 0.
func peakActivityHour(txs []models.UnifiedTransaction) (int, int) {
	var counts [24]int
	for _, tx := range txs {
		counts[tx.CreatedAt.Hour()]++
	}
	peakHour, peakCount := 0, 0
	for hour, count := range counts {
		if count > peakCount {
			peakHour, peakCount = hour, count
		}
	}
	return peakHour, peakCount
}

// distribution buckets the day's transactions by a label and computes each
// bucket's share of the day total. Ordered by count descending, then label.
func distribution(txs []models.UnifiedTransaction, labelOf func(models.UnifiedTransaction) string) []models.Distribution {
	counts := make(map[string]int)
	for _, tx := range txs {
		counts[labelOf(tx)]++
	}

	out := make([]models.Distribution, 0, len(counts))
	for label, count := range counts {
		out = append(out, models.Distribution{
			Label:   label,
			Count:   count,
			Percent: utils.RoundFloat(utils.SafeDivide(float64(count), float64(len(txs)))*100, 1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
