package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/scrapdash/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the local replica of the hosted data store and ensures the
// schema exists. The purchases/sales/suppliers tables mirror the upstream
// record shapes; change_log is the append-only feed the sources poll to
// synthesize insert/update/delete subscriptions.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		supplier_id TEXT,
		is_walkin BOOLEAN DEFAULT FALSE,
		walkin_name TEXT,
		material_type TEXT NOT NULL,
		transaction_date TIMESTAMP NOT NULL,
		total_amount REAL NOT NULL DEFAULT 0,
		weight_kg REAL DEFAULT 0,
		unit_price REAL DEFAULT 0,
		payment_method TEXT,
		payment_status TEXT,
		quality_grade TEXT,
		notes TEXT,
		reference TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(supplier_id) REFERENCES suppliers(id)
	);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		transaction_id TEXT,
		counterparty_id TEXT,
		counterparty_name TEXT,
		material_name TEXT NOT NULL,
		transaction_date TIMESTAMP NOT NULL,
		total_amount REAL NOT NULL DEFAULT 0,
		weight_kg REAL DEFAULT 0,
		price_per_kg REAL DEFAULT 0,
		payment_method TEXT,
		payment_status TEXT,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS change_log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		operation TEXT NOT NULL,
		record_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_change_log_kind_seq ON change_log(source_kind, seq);
	CREATE INDEX IF NOT EXISTS idx_purchases_created_at ON purchases(created_at);
	CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}
