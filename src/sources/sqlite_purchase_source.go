package sources

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/username/scrapdash/backend/src/models"
)

// SQLitePurchaseSource serves purchase records from the local replica of the
// hosted store and synthesizes a subscription by polling the change_log
// table.
type SQLitePurchaseSource struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewSQLitePurchaseSource(db *sql.DB, pollInterval time.Duration) *SQLitePurchaseSource {
	return &SQLitePurchaseSource{db: db, pollInterval: pollInterval}
}

const purchaseColumns = `id, COALESCE(supplier_id, ''), is_walkin, COALESCE(walkin_name, ''),
	material_type, transaction_date, total_amount, COALESCE(weight_kg, 0), COALESCE(unit_price, 0),
	COALESCE(payment_method, ''), COALESCE(payment_status, ''), COALESCE(quality_grade, ''),
	COALESCE(notes, ''), COALESCE(reference, ''), created_at, updated_at`

func (s *SQLitePurchaseSource) FetchAll(ctx context.Context) ([]models.PurchaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying purchases: %v", models.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []models.PurchaseRecord
	for rows.Next() {
		rec, scanErr := scanPurchase(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning purchase row: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over purchase rows: %w", err)
	}
	return records, nil
}

func (s *SQLitePurchaseSource) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	lastSeq, err := latestSeq(ctx, s.db, models.KindPurchase)
	if err != nil {
		return nil, fmt.Errorf("%w: reading change log position: %v", models.ErrSourceUnavailable, err)
	}

	out := make(chan ChangeEvent)
	go pollChangeLog(ctx, s.db, models.KindPurchase, s.pollInterval, lastSeq, out, s.fillEvent)
	return out, nil
}

// fillEvent loads the purchase payload for insert/update events. A record
// that vanished between the log entry and the poll is downgraded to a
// delete, since the reconciling reload will agree with that outcome.
func (s *SQLitePurchaseSource) fillEvent(ctx context.Context, ev *ChangeEvent) error {
	if ev.Op == OpDelete {
		return nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, ev.RecordID)
	rec, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		ev.Op = OpDelete
		return nil
	}
	if err != nil {
		return err
	}
	ev.Purchase = &rec
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPurchase(row rowScanner) (models.PurchaseRecord, error) {
	var rec models.PurchaseRecord
	err := row.Scan(
		&rec.ID, &rec.SupplierID, &rec.IsWalkIn, &rec.WalkinName,
		&rec.MaterialType, &rec.TransactionDate, &rec.TotalAmount, &rec.WeightKg, &rec.UnitPrice,
		&rec.PaymentMethod, &rec.PaymentStatus, &rec.QualityGrade,
		&rec.Notes, &rec.Reference, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
