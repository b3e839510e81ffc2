package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/models"
	"github.com/username/scrapdash/backend/src/sources"
	"github.com/username/scrapdash/backend/src/store"
	"github.com/username/scrapdash/backend/src/unify"
)

// State is the per-source connection state. Each source walks
// Disconnected -> Subscribing -> Active, bouncing through Reconnecting on
// transport interruption and returning to Disconnected on teardown.
type State string

const (
	StateDisconnected State = "disconnected"
	StateSubscribing  State = "subscribing"
	StateActive       State = "active"
	StateReconnecting State = "reconnecting"
)

// Listener keeps the in-memory transaction set consistent with both sources.
// Each source runs its own loop: subscribe, full reload, then apply change
// events one at a time through the store's single writer. A transport error
// triggers a resubscribe plus a reconciling reload; events lost during the
// gap are recovered by the reload, never assumed delivered.
//
// The two source loops are fully independent: a sale-source failure never
// blocks purchase data, and vice versa. Reports combining both are marked
// partial until both initial loads have completed.
type Listener struct {
	adapter   *unify.Adapter
	store     *store.Store
	purchases sources.PurchaseSource
	sales     sources.SaleSource
	backoff   time.Duration

	mu      sync.Mutex
	states  map[models.TransactionKind]State
	loaded  map[models.TransactionKind]bool
	applied map[models.TransactionKind]map[string]struct{}

	wg sync.WaitGroup
}

func New(
	adapter *unify.Adapter,
	st *store.Store,
	purchases sources.PurchaseSource,
	sales sources.SaleSource,
	backoff time.Duration,
) *Listener {
	return &Listener{
		adapter:   adapter,
		store:     st,
		purchases: purchases,
		sales:     sales,
		backoff:   backoff,
		states: map[models.TransactionKind]State{
			models.KindPurchase: StateDisconnected,
			models.KindSale:     StateDisconnected,
		},
		loaded: map[models.TransactionKind]bool{},
		applied: map[models.TransactionKind]map[string]struct{}{
			models.KindPurchase: {},
			models.KindSale:     {},
		},
	}
}

// Start launches one loop per source. Both run until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) {
	l.wg.Add(2)
	go l.run(ctx, models.KindPurchase)
	go l.run(ctx, models.KindSale)
}

// Wait blocks until both source loops have shut down.
func (l *Listener) Wait() {
	l.wg.Wait()
}

// State reports the connection state of one source.
func (l *Listener) State(kind models.TransactionKind) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[kind]
}

// Loaded reports whether a source's initial load has completed at least
// once. Full report figures are only trustworthy once both sources report
// true.
func (l *Listener) Loaded(kind models.TransactionKind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[kind]
}

func (l *Listener) run(ctx context.Context, kind models.TransactionKind) {
	defer l.wg.Done()

	for {
		if ctx.Err() != nil {
			l.setState(kind, StateDisconnected)
			return
		}

		l.setState(kind, StateSubscribing)
		subCtx, cancel := context.WithCancel(ctx)
		ch, err := l.subscribe(subCtx, kind)
		if err != nil {
			cancel()
			logger.L.Error("Subscription failed", "kind", kind, "error", err)
			l.setState(kind, StateReconnecting)
			if !l.sleep(ctx) {
				l.setState(kind, StateDisconnected)
				return
			}
			continue
		}

		// The subscription is live before the reload runs, so changes made
		// during the load are delivered as events and deduplicated.
		if err := l.reload(ctx, kind); err != nil {
			cancel()
			logger.L.Error("Initial load failed", "kind", kind, "error", err)
			l.setState(kind, StateReconnecting)
			if !l.sleep(ctx) {
				l.setState(kind, StateDisconnected)
				return
			}
			continue
		}

		l.setState(kind, StateActive)
		logger.L.Info("Source active", "kind", kind, "storeSize", l.store.Len())

		for ev := range ch {
			l.handleEvent(ctx, ev)
		}
		cancel()

		if ctx.Err() != nil {
			l.setState(kind, StateDisconnected)
			logger.L.Info("Source torn down", "kind", kind)
			return
		}

		// Channel closed while the context is live: transport failure.
		logger.L.Warn("Subscription interrupted, reconnecting", "kind", kind)
		l.setState(kind, StateReconnecting)
		if !l.sleep(ctx) {
			l.setState(kind, StateDisconnected)
			return
		}
	}
}

func (l *Listener) subscribe(ctx context.Context, kind models.TransactionKind) (<-chan sources.ChangeEvent, error) {
	if kind == models.KindPurchase {
		return l.purchases.Subscribe(ctx)
	}
	return l.sales.Subscribe(ctx)
}

// reload replaces the working set of one kind from a full fetch. Malformed
// records are dropped and logged, never aborting the batch. The dedup set is
// reset because the reload subsumes every previously applied event.
func (l *Listener) reload(ctx context.Context, kind models.TransactionKind) error {
	var txs []models.UnifiedTransaction

	switch kind {
	case models.KindPurchase:
		records, err := l.purchases.FetchAll(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			tx, err := l.adapter.UnifyPurchase(ctx, rec)
			if err != nil {
				logger.L.Warn("Dropping malformed purchase record", "id", rec.ID, "error", err)
				continue
			}
			txs = append(txs, tx)
		}
	case models.KindSale:
		records, err := l.sales.FetchAll(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			tx, err := l.adapter.UnifySale(ctx, rec)
			if err != nil {
				logger.L.Warn("Dropping malformed sale record", "id", rec.ID, "error", err)
				continue
			}
			txs = append(txs, tx)
		}
	}

	l.store.ReplaceAll(kind, txs)

	l.mu.Lock()
	l.loaded[kind] = true
	l.applied[kind] = make(map[string]struct{})
	l.mu.Unlock()

	logger.L.Info("Source reload complete", "kind", kind, "records", len(txs))
	return nil
}

// handleEvent applies one change notification to the store. Events are
// deduplicated on (kind, record id, version marker) so redelivery after a
// reconnect is a no-op.
func (l *Listener) handleEvent(ctx context.Context, ev sources.ChangeEvent) {
	dedupKey := fmt.Sprintf("%s|%d", ev.RecordID, ev.Seq)

	l.mu.Lock()
	if _, seen := l.applied[ev.Kind][dedupKey]; seen {
		l.mu.Unlock()
		logger.L.Debug("Skipping already-applied event", "kind", ev.Kind, "recordID", ev.RecordID, "seq", ev.Seq)
		return
	}
	l.applied[ev.Kind][dedupKey] = struct{}{}
	l.mu.Unlock()

	switch ev.Op {
	case sources.OpDelete:
		removed := l.store.Delete(ev.Kind, ev.RecordID)
		logger.L.Debug("Applied delete event", "kind", ev.Kind, "recordID", ev.RecordID, "removed", removed)
	case sources.OpInsert, sources.OpUpdate:
		tx, err := l.unifyEvent(ctx, ev)
		if err != nil {
			logger.L.Warn("Dropping malformed event record", "kind", ev.Kind, "recordID", ev.RecordID, "error", err)
			return
		}
		if ev.Op == sources.OpInsert {
			l.store.Insert(tx)
		} else {
			// An update for an unknown record is treated as an insert.
			l.store.Update(tx)
		}
		logger.L.Debug("Applied change event", "kind", ev.Kind, "op", ev.Op, "recordID", ev.RecordID)
	default:
		logger.L.Warn("Ignoring event with unknown operation", "kind", ev.Kind, "op", ev.Op)
	}
}

func (l *Listener) unifyEvent(ctx context.Context, ev sources.ChangeEvent) (models.UnifiedTransaction, error) {
	switch {
	case ev.Purchase != nil:
		return l.adapter.UnifyPurchase(ctx, *ev.Purchase)
	case ev.Sale != nil:
		return l.adapter.UnifySale(ctx, *ev.Sale)
	default:
		return models.UnifiedTransaction{}, errors.New("event carries no record payload")
	}
}

func (l *Listener) setState(kind models.TransactionKind, s State) {
	l.mu.Lock()
	l.states[kind] = s
	l.mu.Unlock()
}

// sleep waits out the reconnect backoff. Returns false if ctx was cancelled.
func (l *Listener) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(l.backoff):
		return true
	}
}
