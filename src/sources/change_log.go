package sources

import (
	"context"
	"database/sql"
	"time"

	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/models"
)

// latestSeq returns the newest change_log sequence number for a source kind,
// so a fresh subscription starts after the changes the initial load already
// covers.
func latestSeq(ctx context.Context, db *sql.DB, kind models.TransactionKind) (int64, error) {
	var seq sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM change_log WHERE source_kind = ?`, string(kind)).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq.Int64, nil
}

// pollChangeLog tails the change_log table for one source kind and delivers
// each entry as a ChangeEvent. The channel is closed when the context is
// cancelled or when a poll fails; the latter is the transport-failure signal
// that moves the listener into its reconnecting state.
func pollChangeLog(
	ctx context.Context,
	db *sql.DB,
	kind models.TransactionKind,
	pollInterval time.Duration,
	lastSeq int64,
	out chan<- ChangeEvent,
	fill func(ctx context.Context, ev *ChangeEvent) error,
) {
	defer close(out)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rows, err := db.QueryContext(ctx,
			`SELECT seq, event_id, operation, record_id FROM change_log
			 WHERE source_kind = ? AND seq > ? ORDER BY seq ASC`, string(kind), lastSeq)
		if err != nil {
			logger.L.Error("Change log poll failed, closing subscription", "kind", kind, "error", err)
			return
		}

		events, err := collectChangeRows(rows, kind)
		if err != nil {
			logger.L.Error("Change log scan failed, closing subscription", "kind", kind, "error", err)
			return
		}

		for i := range events {
			ev := events[i]
			if err := fill(ctx, &ev); err != nil {
				logger.L.Error("Loading change payload failed, closing subscription",
					"kind", kind, "recordID", ev.RecordID, "error", err)
				return
			}
			select {
			case <-ctx.Done():
				return
			case out <- ev:
				lastSeq = ev.Seq
			}
		}
	}
}

func collectChangeRows(rows *sql.Rows, kind models.TransactionKind) ([]ChangeEvent, error) {
	defer rows.Close()

	var events []ChangeEvent
	for rows.Next() {
		var ev ChangeEvent
		var op string
		if err := rows.Scan(&ev.Seq, &ev.EventID, &op, &ev.RecordID); err != nil {
			return nil, err
		}
		ev.Kind = kind
		ev.Op = Operation(op)
		events = append(events, ev)
	}
	return events, rows.Err()
}
