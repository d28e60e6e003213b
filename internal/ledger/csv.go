// Package ledger persists classified ledgers and indexes ingestion runs.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/model"
)

// TimeFormat is the layout of Completion Time in ledger files.
const TimeFormat = "2006-01-02 15:04:05"

// derivedColumns are appended after the statement columns on write.
var derivedColumns = []string{model.ColMonthName, model.ColDayName, model.ColHour, model.ColType}

// coreColumns hold the typed fields of every transaction.
var coreColumns = []string{
	model.ColCompletionTime,
	model.ColDetails,
	model.ColPaidIn,
	model.ColWithdrawn,
	model.ColBalance,
}

// requiredColumns must be present in the header of a ledger file.
var requiredColumns = append(append([]string{}, coreColumns...), model.ColType)

// Header returns the file header for a ledger: Receipt No. when present,
// the core columns, the remaining optional columns, then the derived ones.
func Header(l *model.Ledger) []string {
	header := make([]string, 0, len(coreColumns)+len(l.Columns)+len(derivedColumns))
	if l.Has(model.ColReceiptNo) {
		header = append(header, model.ColReceiptNo)
	}
	header = append(header, coreColumns...)
	for _, c := range l.Columns {
		if c == model.ColReceiptNo || isDerived(c) || indexOf(coreColumns, c) >= 0 {
			continue
		}
		header = append(header, c)
	}
	return append(header, derivedColumns...)
}

// WriteLedger writes l to w (including header).
func WriteLedger(w io.Writer, l *model.Ledger) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := Header(l)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range l.Transactions {
		if err := cw.Write(MarshalTransaction(header, txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row laid out by header.
func MarshalTransaction(header []string, txn model.Transaction) []string {
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case model.ColCompletionTime:
			row[i] = txn.CompletionTime.Format(TimeFormat)
		case model.ColDetails:
			row[i] = txn.Details
		case model.ColPaidIn:
			row[i] = txn.PaidIn.StringFixed(2)
		case model.ColWithdrawn:
			row[i] = txn.Withdrawn.StringFixed(2)
		case model.ColBalance:
			row[i] = txn.Balance.StringFixed(2)
		case model.ColReceiptNo:
			row[i] = txn.ReceiptNo
		case model.ColMonthName:
			row[i] = txn.MonthName
		case model.ColDayName:
			row[i] = txn.DayName
		case model.ColHour:
			row[i] = strconv.Itoa(txn.Hour)
		case model.ColType:
			row[i] = txn.Type
		default:
			row[i] = txn.Extra[col]
		}
	}
	return row
}

// ReadLedger reads a ledger file. Calendar columns absent from the file
// are recomputed from Completion Time.
func ReadLedger(r io.Reader) (*model.Ledger, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading ledger CSV: missing header")
	}

	header := records[0]
	var missing []string
	for _, c := range requiredColumns {
		if indexOf(header, c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ledger CSV missing columns %v", missing)
	}
	hasCalendar := indexOf(header, model.ColMonthName) >= 0 &&
		indexOf(header, model.ColDayName) >= 0 &&
		indexOf(header, model.ColHour) >= 0

	l := &model.Ledger{}
	for _, c := range header {
		if !isDerived(c) && indexOf(coreColumns, c) < 0 {
			l.Columns = append(l.Columns, c)
		}
	}

	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(header, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if !hasCalendar {
			txn.MonthName, txn.DayName, txn.Hour = derive.Calendar(txn.CompletionTime)
		}
		l.Transactions = append(l.Transactions, txn)
	}
	return l, nil
}

// UnmarshalTransaction converts a CSV row laid out by header to a Transaction.
func UnmarshalTransaction(header, record []string) (model.Transaction, error) {
	if len(record) != len(header) {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", len(header), len(record))
	}

	var txn model.Transaction
	for i, col := range header {
		v := record[i]
		var err error
		switch col {
		case model.ColCompletionTime:
			txn.CompletionTime, err = time.Parse(TimeFormat, v)
		case model.ColDetails:
			txn.Details = v
		case model.ColPaidIn:
			txn.PaidIn, err = parseAmount(v)
		case model.ColWithdrawn:
			txn.Withdrawn, err = parseAmount(v)
		case model.ColBalance:
			txn.Balance, err = parseAmount(v)
		case model.ColReceiptNo:
			txn.ReceiptNo = v
		case model.ColMonthName:
			txn.MonthName = v
		case model.ColDayName:
			txn.DayName = v
		case model.ColHour:
			txn.Hour, err = strconv.Atoi(v)
		case model.ColType:
			txn.Type = v
		default:
			if txn.Extra == nil {
				txn.Extra = make(map[string]string)
			}
			txn.Extra[col] = v
		}
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing %s %q: %w", col, v, err)
		}
	}
	return txn, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func isDerived(c string) bool {
	return indexOf(derivedColumns, c) >= 0
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
