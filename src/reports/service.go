package reports

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/scrapdash/backend/src/aggregate"
	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/store"
	"github.com/username/scrapdash/backend/src/utils"
)

// SourceMonitor exposes the listener's per-source load state, so reports can
// refuse to run with no data and mark themselves partial when only one
// source has completed its initial load.
type SourceMonitor interface {
	Loaded(kind models.TransactionKind) bool
}

// Service composes store snapshots, the filter pipeline, and the aggregation
// engine into the report surface consumed by the presentation layer.
//
// Aggregates are always recomputed from the current full state; results are
// memoized in the report cache keyed by (criteria, store version), so a key
// can never serve data from a superseded store state. The request counter
// implements last-write-wins: a computation that finishes after a newer
// request started, or after the store moved on, is discarded instead of
// being published to the cache.
type Service struct {
	store    *store.Store
	monitor  SourceMonitor
	cache    *cache.Cache
	requests atomic.Uint64
}

func NewService(st *store.Store, monitor SourceMonitor, reportCache *cache.Cache) *Service {
	return &Service{store: st, monitor: monitor, cache: reportCache}
}

// Transactions returns a copy of the current unified transaction list,
// newest first.
func (s *Service) Transactions() []models.UnifiedTransaction {
	return s.store.Snapshot()
}

// GenerateReport builds a custom report for caller-supplied criteria.
func (s *Service) GenerateReport(c models.FilterCriteria) (*models.CustomReport, error) {
	if err := aggregate.ValidateCriteria(c); err != nil {
		return nil, err
	}
	if err := s.available(); err != nil {
		return nil, err
	}

	version := s.store.Version()
	key := s.cacheKey("custom", version, c)
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.CustomReport), nil
	}

	reqID := s.requests.Add(1)
	report := BuildCustomReport(s.store.Snapshot(), c)
	report.Partial = s.partial()
	s.publish(key, report, reqID, version)
	return report, nil
}

// DailyReport builds the report for one calendar day.
func (s *Service) DailyReport(day time.Time) (*models.DailyReport, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	version := s.store.Version()
	key := s.cacheKey("daily", version, day.Format(utils.DefaultDateFormat))
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.DailyReport), nil
	}

	reqID := s.requests.Add(1)
	report := BuildDailyReport(s.store.Snapshot(), day)
	report.Partial = s.partial()
	s.publish(key, report, reqID, version)
	return report, nil
}

// WeeklyReport builds the report for the week containing anchor.
func (s *Service) WeeklyReport(anchor time.Time) (*models.WeeklyReport, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	version := s.store.Version()
	key := s.cacheKey("weekly", version, utils.StartOfWeek(anchor).Format(utils.DefaultDateFormat))
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.WeeklyReport), nil
	}

	reqID := s.requests.Add(1)
	report := BuildWeeklyReport(s.store.Snapshot(), anchor)
	report.Partial = s.partial()
	s.publish(key, report, reqID, version)
	return report, nil
}

// MonthlyReport builds the report for the month containing anchor.
func (s *Service) MonthlyReport(anchor time.Time) (*models.MonthlyReport, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	version := s.store.Version()
	key := s.cacheKey("monthly", version, utils.MonthLabel(anchor))
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.MonthlyReport), nil
	}

	reqID := s.requests.Add(1)
	report := BuildMonthlyReport(s.store.Snapshot(), anchor)
	report.Partial = s.partial()
	s.publish(key, report, reqID, version)
	return report, nil
}

// Summary derives the dashboard KPI numbers from the full unified set.
func (s *Service) Summary() (models.Summary, error) {
	if err := s.available(); err != nil {
		return models.Summary{}, err
	}
	summary := BuildSummary(s.store.Snapshot(), time.Now())
	summary.Partial = s.partial()
	return summary, nil
}

// available fails when neither source has completed an initial load; with no
// data at all a report would be misleading rather than merely partial.
func (s *Service) available() error {
	if !s.monitor.Loaded(models.KindPurchase) && !s.monitor.Loaded(models.KindSale) {
		return fmt.Errorf("%w: no source has completed its initial load", models.ErrSourceUnavailable)
	}
	return nil
}

// partial reports whether figures combining both sources are trustworthy yet.
func (s *Service) partial() bool {
	return !s.monitor.Loaded(models.KindPurchase) || !s.monitor.Loaded(models.KindSale)
}

// publish caches a finished computation unless it has gone stale: a newer
// request was issued or the store mutated while it ran. Stale results are
// discarded silently; the caller still receives its (snapshot-consistent)
// report, but it never becomes the shared answer for the key.
func (s *Service) publish(key string, report interface{}, reqID, version uint64) {
	if s.requests.Load() != reqID || s.store.Version() != version {
		logger.L.Debug("Discarding stale report computation", "key", key, "requestID", reqID)
		return
	}
	s.cache.Set(key, report, cache.DefaultExpiration)
}

func (s *Service) cacheKey(kind string, version uint64, detail interface{}) string {
	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprintf("%s_v%d", kind, version)
	}
	return fmt.Sprintf("%s_v%d_%s", kind, version, b)
}
