package sources

import (
	"context"

	"github.com/username/scrapdash/backend/src/models"
)

// Operation is the change kind carried by a subscription event.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ChangeEvent is one change notification from a source. Seq is the source's
// monotonic version marker for the change; together with the record identity
// it forms the deduplication key used by the listener. Exactly one of
// Purchase/Sale is set, matching Kind, except for deletes which carry only
// the RecordID.
type ChangeEvent struct {
	EventID  string
	Kind     models.TransactionKind
	Op       Operation
	Seq      int64
	RecordID string
	Purchase *models.PurchaseRecord
	Sale     *models.SaleRecord
}

// PurchaseSource is the queryable, subscribable purchase record feed.
// FetchAll returns all records most-recent first. Subscribe delivers change
// events until the context is cancelled or the transport fails; a transport
// failure is signalled by the channel closing while the context is still
// live, and the caller is expected to resubscribe and reconcile via FetchAll.
type PurchaseSource interface {
	FetchAll(ctx context.Context) ([]models.PurchaseRecord, error)
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// SaleSource is the sale-side twin of PurchaseSource.
type SaleSource interface {
	FetchAll(ctx context.Context) ([]models.SaleRecord, error)
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// CounterpartyDirectory resolves a counterparty id to its display name. Used
// when a purchase record references a registered supplier without carrying
// an inline name.
type CounterpartyDirectory interface {
	LookupName(ctx context.Context, id string) (string, error)
}
