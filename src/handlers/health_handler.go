package handlers

import (
	"net/http"

	"github.com/username/scrapdash/backend/src/listener"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/utils"
)

// SourceStatus is the slice of the listener the health endpoint needs.
type SourceStatus interface {
	State(kind models.TransactionKind) listener.State
	Loaded(kind models.TransactionKind) bool
}

type HealthHandler struct {
	status SourceStatus
}

func NewHealthHandler(status SourceStatus) *HealthHandler {
	return &HealthHandler{status: status}
}

type sourceHealth struct {
	State  listener.State `json:"state"`
	Loaded bool           `json:"loaded"`
}

type healthResponse struct {
	Status    string       `json:"status"`
	Purchases sourceHealth `json:"purchases"`
	Sales     sourceHealth `json:"sales"`
}

// HandleHealth serves GET /api/health with per-source listener states.
// Status is "ok" when both sources are active and loaded, "degraded" when
// only one side is usable, "unavailable" when neither is.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Purchases: sourceHealth{
			State:  h.status.State(models.KindPurchase),
			Loaded: h.status.Loaded(models.KindPurchase),
		},
		Sales: sourceHealth{
			State:  h.status.State(models.KindSale),
			Loaded: h.status.Loaded(models.KindSale),
		},
	}

	purchasesUp := resp.Purchases.Loaded
	salesUp := resp.Sales.Loaded
	switch {
	case purchasesUp && salesUp:
		resp.Status = "ok"
	case purchasesUp || salesUp:
		resp.Status = "degraded"
	default:
		resp.Status = "unavailable"
	}

	code := http.StatusOK
	if resp.Status == "unavailable" {
		code = http.StatusServiceUnavailable
	}
	utils.SendJSON(w, resp, code)
}
