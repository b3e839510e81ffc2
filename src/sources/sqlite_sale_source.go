package sources

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/username/scrapdash/backend/src/models"
)

// SQLiteSaleSource is the sale-side twin of SQLitePurchaseSource.
type SQLiteSaleSource struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewSQLiteSaleSource(db *sql.DB, pollInterval time.Duration) *SQLiteSaleSource {
	return &SQLiteSaleSource{db: db, pollInterval: pollInterval}
}

const saleColumns = `id, COALESCE(transaction_id, ''), COALESCE(counterparty_id, ''),
	COALESCE(counterparty_name, ''), material_name, transaction_date, total_amount,
	COALESCE(weight_kg, 0), COALESCE(price_per_kg, 0), COALESCE(payment_method, ''),
	COALESCE(payment_status, ''), COALESCE(notes, ''), created_at, updated_at`

func (s *SQLiteSaleSource) FetchAll(ctx context.Context) ([]models.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales: %v", models.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []models.SaleRecord
	for rows.Next() {
		rec, scanErr := scanSale(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning sale row: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sale rows: %w", err)
	}
	return records, nil
}

func (s *SQLiteSaleSource) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	lastSeq, err := latestSeq(ctx, s.db, models.KindSale)
	if err != nil {
		return nil, fmt.Errorf("%w: reading change log position: %v", models.ErrSourceUnavailable, err)
	}

	out := make(chan ChangeEvent)
	go pollChangeLog(ctx, s.db, models.KindSale, s.pollInterval, lastSeq, out, s.fillEvent)
	return out, nil
}

func (s *SQLiteSaleSource) fillEvent(ctx context.Context, ev *ChangeEvent) error {
	if ev.Op == OpDelete {
		return nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = ?`, ev.RecordID)
	rec, err := scanSale(row)
	if err == sql.ErrNoRows {
		ev.Op = OpDelete
		return nil
	}
	if err != nil {
		return err
	}
	ev.Sale = &rec
	return nil
}

func scanSale(row rowScanner) (models.SaleRecord, error) {
	var rec models.SaleRecord
	err := row.Scan(
		&rec.ID, &rec.TransactionID, &rec.CounterpartyID,
		&rec.CounterpartyName, &rec.MaterialName, &rec.TransactionDate, &rec.TotalAmount,
		&rec.WeightKg, &rec.PricePerKg, &rec.PaymentMethod,
		&rec.PaymentStatus, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
