package store

import (
	"sort"
	"sync"

	"github.com/username/scrapdash/backend/src/models"
)

// Store owns the in-memory unified transaction set. Mutations are applied
// one at a time under the write lock, fully, before any reader takes a
// snapshot, so no partial-apply state is ever visible. The set is kept
// ordered by CreatedAt descending (ingestion order, newest first).
//
// Version increases monotonically on every mutation. Readers capture it
// alongside a snapshot; a computation whose captured version no longer
// matches is stale and must not be published.
type Store struct {
	mu      sync.RWMutex
	txs     []models.UnifiedTransaction
	version uint64
}

func New() *Store {
	return &Store{}
}

func key(kind models.TransactionKind, id string) string {
	return string(kind) + "|" + id
}

func (s *Store) indexOf(kind models.TransactionKind, id string) int {
	k := key(kind, id)
	for i := range s.txs {
		if key(s.txs[i].Kind, s.txs[i].ID) == k {
			return i
		}
	}
	return -1
}

// Insert prepends tx to the set. A no-op if a transaction with the same
// (kind, id) is already present, which guards against a completed initial
// load racing with a live insert for the same record.
func (s *Store) Insert(tx models.UnifiedTransaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(tx.Kind, tx.ID) >= 0 {
		return false
	}
	s.txs = append([]models.UnifiedTransaction{tx}, s.txs...)
	s.version++
	return true
}

// Update replaces the entry with matching (kind, id) in place (full replace,
// not merge). A missing entry is treated as an insert.
func (s *Store) Update(tx models.UnifiedTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(tx.Kind, tx.ID); i >= 0 {
		s.txs[i] = tx
	} else {
		s.txs = append([]models.UnifiedTransaction{tx}, s.txs...)
	}
	s.version++
}

// Delete removes the entry with matching (kind, id). Deleting an absent
// entry is a no-op and does not bump the version.
func (s *Store) Delete(kind models.TransactionKind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(kind, id)
	if i < 0 {
		return false
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	s.version++
	return true
}

// ReplaceAll swaps out every transaction of one kind for the given set, used
// by reconciliation reloads after a transport gap. The merged set is
// re-sorted by CreatedAt descending.
func (s *Store) ReplaceAll(kind models.TransactionKind, txs []models.UnifiedTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.txs[:0:0]
	for _, tx := range s.txs {
		if tx.Kind != kind {
			kept = append(kept, tx)
		}
	}
	kept = append(kept, txs...)
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.After(kept[j].CreatedAt)
	})
	s.txs = kept
	s.version++
}

// Snapshot returns a copy of the current set for read-only aggregation work.
func (s *Store) Snapshot() []models.UnifiedTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UnifiedTransaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Version returns the current mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the current set size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}
