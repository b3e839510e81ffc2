package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/scrapdash/backend/src/listener"
	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/reports"
	"github.com/username/scrapdash/backend/src/store"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type fakeStatus struct {
	purchasesLoaded bool
	salesLoaded     bool
}

func (f *fakeStatus) Loaded(kind models.TransactionKind) bool {
	if kind == models.KindPurchase {
		return f.purchasesLoaded
	}
	return f.salesLoaded
}

func (f *fakeStatus) State(kind models.TransactionKind) listener.State {
	if f.Loaded(kind) {
		return listener.StateActive
	}
	return listener.StateReconnecting
}

func newTestService(status *fakeStatus) (*reports.Service, *store.Store) {
	st := store.New()
	return reports.NewService(st, status, cache.New(5*time.Minute, 10*time.Minute)), st
}

func seedTransactions(st *store.Store) {
	day := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	st.Insert(models.UnifiedTransaction{
		ID: "p1", Kind: models.KindPurchase, MaterialName: "Copper",
		CounterpartyName: "Juma", CounterpartyKey: "Juma",
		TransactionDate: day, CreatedAt: day, TotalAmount: 800, WeightKg: 10,
		PaymentMethod: "cash",
	})
	st.Insert(models.UnifiedTransaction{
		ID: "s1", Kind: models.KindSale, MaterialName: "Copper",
		CounterpartyName: "Coast Ltd", CounterpartyKey: "buy-1",
		TransactionDate: day, CreatedAt: day.Add(time.Hour), TotalAmount: 1200, WeightKg: 8,
		PaymentMethod: "bank",
	})
}

func bothLoaded() *fakeStatus {
	return &fakeStatus{purchasesLoaded: true, salesLoaded: true}
}

func TestHandleGenerateReport(t *testing.T) {
	svc, st := newTestService(bothLoaded())
	seedTransactions(st)
	h := NewReportHandler(svc)

	body := `{"start_date":"01-03-2024","end_date":"31-03-2024","group_by":"material"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.CustomReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, models.GroupByMaterial, report.GroupBy)
	assert.Equal(t, 800.0, report.Totals.PurchaseRevenue)
	assert.Equal(t, 1200.0, report.Totals.SalesRevenue)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "Copper", report.Groups[0].Key)
}

func TestHandleGenerateReportBadBody(t *testing.T) {
	svc, _ := newTestService(bothLoaded())
	h := NewReportHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateReportInvalidFilter(t *testing.T) {
	svc, _ := newTestService(bothLoaded())
	h := NewReportHandler(svc)

	body := `{"start_date":"01-03-2024","end_date":"31-03-2024","group_by":"quarter"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateReportSourcesUnavailable(t *testing.T) {
	svc, _ := newTestService(&fakeStatus{})
	h := NewReportHandler(svc)

	body := `{"start_date":"01-03-2024","end_date":"31-03-2024","group_by":"day"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["retryable"])
}

func TestHandleDailyReport(t *testing.T) {
	svc, st := newTestService(bothLoaded())
	seedTransactions(st)
	h := NewReportHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/daily?date=05-03-2024", nil)
	rec := httptest.NewRecorder()
	h.HandleDailyReport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.DailyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "05-03-2024", report.Date)
	assert.Equal(t, 1, report.Totals.PurchaseCount)
	assert.Equal(t, 1, report.Totals.SaleCount)
}

func TestHandleDailyReportBadDate(t *testing.T) {
	svc, _ := newTestService(bothLoaded())
	h := NewReportHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/daily?date=2024-03-05", nil)
	rec := httptest.NewRecorder()
	h.HandleDailyReport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWeeklyAndMonthlyReports(t *testing.T) {
	svc, st := newTestService(bothLoaded())
	seedTransactions(st)
	h := NewReportHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/weekly?date=05-03-2024", nil)
	rec := httptest.NewRecorder()
	h.HandleWeeklyReport(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var weekly models.WeeklyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weekly))
	assert.Equal(t, "03-03-2024", weekly.WeekStart)
	assert.Len(t, weekly.Days, 7)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/monthly?date=05-03-2024", nil)
	rec = httptest.NewRecorder()
	h.HandleMonthlyReport(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var monthly models.MonthlyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &monthly))
	assert.Equal(t, "March 2024", monthly.Month)
}

func TestHandleGetTransactionsEmptyIsArray(t *testing.T) {
	svc, _ := newTestService(bothLoaded())
	h := NewTransactionHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	h.HandleGetTransactions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandleGetSummary(t *testing.T) {
	svc, st := newTestService(bothLoaded())
	seedTransactions(st)
	h := NewTransactionHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	h.HandleGetSummary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, 2000.0, summary.CombinedRevenue)
	assert.Equal(t, 2, summary.ActiveCounterparties)
}

func TestHandleExport(t *testing.T) {
	svc, st := newTestService(bothLoaded())
	seedTransactions(st)
	h := NewExportHandler(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/export?start_date=01-03-2024&end_date=31-03-2024&group_by=material", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="scrapdash_material_01-03-2024_31-03-2024.csv"`,
		rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Material", records[0][0])
	assert.Equal(t, "Copper", records[1][0])
}

func TestHandleExportInvalidFilter(t *testing.T) {
	svc, _ := newTestService(bothLoaded())
	h := NewExportHandler(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/export?start_date=31-03-2024&end_date=01-03-2024&group_by=day", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	cases := []struct {
		name       string
		status     *fakeStatus
		wantStatus string
		wantCode   int
	}{
		{"both loaded", bothLoaded(), "ok", http.StatusOK},
		{"one loaded", &fakeStatus{purchasesLoaded: true}, "degraded", http.StatusOK},
		{"none loaded", &fakeStatus{}, "unavailable", http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(tc.status)
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			rec := httptest.NewRecorder()
			h.HandleHealth(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantStatus, resp["status"])
		})
	}
}
