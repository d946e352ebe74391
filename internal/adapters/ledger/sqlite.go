package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/donorlab/cadence/internal/domain/model"
	"github.com/donorlab/cadence/pkg/metrics"
)

// SQLiteReader reads transactions from a CRM SQLite export. The export is
// treated as read-only: no migrations, no writes.
type SQLiteReader struct{}

// NewSQLiteReader creates a new SQLite gateway.
func NewSQLiteReader() *SQLiteReader {
	return &SQLiteReader{}
}

// Load opens the database at path and reads the transactions table.
// Expected schema: transactions(account_id TEXT, date TEXT ISO-8601,
// amount_cents INTEGER, kind TEXT, groups TEXT).
func (r *SQLiteReader) Load(ctx context.Context, path string) ([]model.Transaction, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		metrics.IncLedgerErrors()
		return nil, fmt.Errorf("open ledger db %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT account_id, date, amount_cents, COALESCE(kind, ''), COALESCE(groups, '')
		 FROM transactions ORDER BY date, account_id`)
	if err != nil {
		metrics.IncLedgerErrors()
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t       model.Transaction
			rawDate string
			cents   int64
		)
		if err := rows.Scan(&t.AccountID, &rawDate, &cents, &t.Kind, &t.Groups); err != nil {
			metrics.IncLedgerErrors()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		day, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			metrics.IncLedgerErrors()
			return nil, fmt.Errorf("account %q: %w: %q", t.AccountID, ErrBadDate, rawDate)
		}
		t.Date = model.Day(day)
		t.Amount = model.Money{Cents: cents}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		metrics.IncLedgerErrors()
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	metrics.AddTransactionsLoaded(len(txns))
	return txns, nil
}
