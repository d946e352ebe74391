// Package ledger loads raw transaction rows from donor CRM exports.
//
// Gateways validate their input: a row that survives loading is guaranteed
// to carry a real date and a parseable amount, which is the invariant the
// core pipeline assumes at its boundary.
package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/donorlab/cadence/internal/domain/model"
	"github.com/donorlab/cadence/pkg/metrics"
)

// Accepted date layouts. CRM exports use US-style dates; ISO is accepted
// for synthetic and test ledgers.
var dateLayouts = []string{"2006-01-02", "1/2/2006", "01/02/2006"}

// Column headers recognized per field, checked case-insensitively in order.
var (
	accountHeaders = []string{"account_id", "account number"}
	dateHeaders    = []string{"date"}
	amountHeaders  = []string{"amount"}
	kindHeaders    = []string{"kind", "type"}
	groupsHeaders  = []string{"groups"}
)

// CSVReader reads transactions from a CRM CSV export.
type CSVReader struct{}

// NewCSVReader creates a new CSV gateway.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Load reads and parses the transaction CSV at path. The first row must be
// a header naming at least the account, date, and amount columns; kind and
// groups columns are optional.
func (r *CSVReader) Load(ctx context.Context, path string) ([]model.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		metrics.IncLedgerErrors()
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer file.Close()

	txns, err := r.parse(ctx, file)
	if err != nil {
		metrics.IncLedgerErrors()
		return nil, fmt.Errorf("ledger %s: %w", path, err)
	}
	metrics.AddTransactionsLoaded(len(txns))
	return txns, nil
}

func (r *CSVReader) parse(ctx context.Context, src io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(src)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		t, err := cols.transaction(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// columns holds the resolved index of each field, -1 when absent.
type columns struct {
	account int
	date    int
	amount  int
	kind    int
	groups  int
}

func mapColumns(header []string) (columns, error) {
	find := func(names []string) int {
		for i, h := range header {
			for _, n := range names {
				if strings.EqualFold(strings.TrimSpace(h), n) {
					return i
				}
			}
		}
		return -1
	}
	c := columns{
		account: find(accountHeaders),
		date:    find(dateHeaders),
		amount:  find(amountHeaders),
		kind:    find(kindHeaders),
		groups:  find(groupsHeaders),
	}
	if c.account < 0 || c.date < 0 || c.amount < 0 {
		return columns{}, fmt.Errorf("%w: need account, date and amount columns, got %v", ErrMissingColumns, header)
	}
	return c, nil
}

func (c columns) transaction(record []string) (model.Transaction, error) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	account := get(c.account)
	if account == "" {
		return model.Transaction{}, ErrMissingAccount
	}

	date, err := parseDate(get(c.date))
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := model.ParseAmount(get(c.amount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("amount %q: %w", get(c.amount), err)
	}

	return model.Transaction{
		AccountID: account,
		Date:      date,
		Amount:    amount,
		Kind:      get(c.kind),
		Groups:    get(c.groups),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}
