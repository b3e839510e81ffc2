package sources

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/username/scrapdash/backend/src/models"
)

// SQLiteSupplierDirectory resolves supplier ids to display names with a
// small in-process cache. Supplier names change rarely; a stale name only
// affects display labels until the next process restart.
type SQLiteSupplierDirectory struct {
	db    *sql.DB
	mu    sync.RWMutex
	names map[string]string
}

func NewSQLiteSupplierDirectory(db *sql.DB) *SQLiteSupplierDirectory {
	return &SQLiteSupplierDirectory{db: db, names: make(map[string]string)}
}

func (d *SQLiteSupplierDirectory) LookupName(ctx context.Context, id string) (string, error) {
	d.mu.RLock()
	name, ok := d.names[id]
	d.mu.RUnlock()
	if ok {
		return name, nil
	}

	err := d.db.QueryRowContext(ctx, `SELECT name FROM suppliers WHERE id = ?`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("supplier %s not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("%w: looking up supplier %s: %v", models.ErrSourceUnavailable, id, err)
	}

	d.mu.Lock()
	d.names[id] = name
	d.mu.Unlock()
	return name, nil
}
