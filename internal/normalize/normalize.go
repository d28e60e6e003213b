// Package normalize turns raw statement tables into a clean, typed ledger.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/model"
)

const stage = "normalize"

// maxMissingRatio is the share of missing values above which a column is dropped.
const maxMissingRatio = 0.5

// requiredColumns must all be present once rows are filtered to completed ones.
var requiredColumns = []string{
	model.ColPaidIn,
	model.ColWithdrawn,
	model.ColBalance,
	model.ColDetails,
	model.ColCompletionTime,
}

// derivedColumns are recomputed downstream and never carried over from input.
var derivedColumns = map[string]bool{
	model.ColMonthName: true,
	model.ColDayName:   true,
	model.ColHour:      true,
	model.ColType:      true,
}

// Stats describes what normalization discarded.
type Stats struct {
	InputRows      int
	CompletedRows  int
	InvalidDates   int
	Duplicates     int
	DroppedColumns []string
	FilledColumns  []string
}

// row is a candidate transaction between the coercion step and the ledger.
type row struct {
	time      time.Time
	details   string
	paidIn    decimal.Decimal
	withdrawn decimal.Decimal
	balance   decimal.Decimal
	cells     map[string]string // every other column; missing values are absent
}

// Normalize concatenates tables in encounter order and applies the cleaning
// steps in sequence. Each step either proceeds or fails terminally.
func Normalize(tables []model.RawTable) (*model.Ledger, *Stats, error) {
	if len(tables) == 0 {
		return nil, nil, apperr.Input(apperr.NoTablesExtracted, stage, "no tables were extracted from the document")
	}

	columns, raw := concat(tables)
	stats := &Stats{InputRows: len(raw)}
	if len(raw) == 0 {
		return nil, stats, apperr.Input(apperr.EmptyDataset, stage, "the extracted tables contain no rows")
	}

	if !contains(columns, model.ColStatus) {
		return nil, stats, apperr.Missing(stage, model.ColStatus)
	}

	completed := raw[:0:0]
	for _, r := range raw {
		if r[model.ColStatus] == model.StatusCompleted {
			completed = append(completed, r)
		}
	}
	stats.CompletedRows = len(completed)
	if len(completed) == 0 {
		return nil, stats, apperr.Input(apperr.NoCompletedTransactions, stage, "no completed transactions found")
	}

	var missing []string
	for _, c := range requiredColumns {
		if !contains(columns, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, stats, apperr.Missing(stage, missing...)
	}

	rows := make([]row, 0, len(completed))
	for _, r := range completed {
		ts, ok := ParseTime(r[model.ColCompletionTime])
		if !ok {
			stats.InvalidDates++
			continue
		}
		rows = append(rows, row{
			time:      ts,
			details:   CleanDetails(r[model.ColDetails]),
			paidIn:    ParseAmount(r[model.ColPaidIn]),
			withdrawn: ParseAmount(r[model.ColWithdrawn]),
			balance:   ParseAmount(r[model.ColBalance]),
			cells:     otherCells(r),
		})
	}
	if len(rows) == 0 {
		return nil, stats, apperr.Input(apperr.NoValidDates, stage, "no valid transaction dates found")
	}

	others := otherColumns(columns)
	others = applyMissingPolicy(rows, others, stats)

	rows = dedupe(rows, others, stats)

	others = renameColumns(rows, others)

	return buildLedger(rows, others), stats, nil
}

// concat unions column labels in encounter order and copies every row with
// trimmed labels and blank cells removed.
func concat(tables []model.RawTable) ([]string, []model.RawRow) {
	var columns []string
	seen := make(map[string]bool)
	addColumn := func(label string) string {
		label = strings.TrimSpace(label)
		if !seen[label] {
			seen[label] = true
			columns = append(columns, label)
		}
		return label
	}

	var rows []model.RawRow
	for _, t := range tables {
		for _, c := range t.Columns {
			addColumn(c)
		}
		for _, r := range t.Rows {
			out := make(model.RawRow, len(r))
			for k, v := range r {
				label := addColumn(k)
				if v = strings.TrimSpace(v); v != "" {
					out[label] = v
				}
			}
			rows = append(rows, out)
		}
	}
	return columns, rows
}

func otherCells(r model.RawRow) map[string]string {
	cells := make(map[string]string)
	for k, v := range r {
		if isRequired(k) || derivedColumns[k] {
			continue
		}
		cells[k] = v
	}
	return cells
}

func otherColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		if isRequired(c) || derivedColumns[c] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// applyMissingPolicy drops columns that are mostly missing and fills the gaps
// of numeric columns with the column mean. It returns the surviving columns.
func applyMissingPolicy(rows []row, columns []string, stats *Stats) []string {
	var kept []string
	n := len(rows)
	for _, c := range columns {
		var values []string
		for _, r := range rows {
			if v, ok := r.cells[c]; ok {
				values = append(values, v)
			}
		}
		missing := n - len(values)
		if float64(missing)/float64(n) > maxMissingRatio {
			for _, r := range rows {
				delete(r.cells, c)
			}
			stats.DroppedColumns = append(stats.DroppedColumns, c)
			continue
		}
		kept = append(kept, c)
		if missing == 0 {
			continue
		}
		mean, numeric := columnMean(values)
		if !numeric {
			continue
		}
		fill := mean.String()
		for _, r := range rows {
			if _, ok := r.cells[c]; !ok {
				r.cells[c] = fill
			}
		}
		stats.FilledColumns = append(stats.FilledColumns, c)
	}
	return kept
}

// columnMean reports whether every present value is a number and, if so,
// their mean. A column without values has mean 0.
func columnMean(values []string) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		sum = sum.Add(d)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))), true
}

// dedupe removes exact duplicate rows, keeping the first occurrence.
func dedupe(rows []row, columns []string, stats *Stats) []row {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, r := range rows {
		k := r.key(columns)
		if seen[k] {
			stats.Duplicates++
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func (r row) key(columns []string) string {
	var b strings.Builder
	b.WriteString(r.time.Format(time.RFC3339Nano))
	for _, s := range []string{r.details, r.paidIn.String(), r.withdrawn.String(), r.balance.String()} {
		b.WriteByte(0x1f)
		b.WriteString(s)
	}
	for _, c := range columns {
		b.WriteByte(0x1f)
		if v, ok := r.cells[c]; ok {
			b.WriteByte(1)
			b.WriteString(v)
		}
	}
	return b.String()
}

// renameColumns strips embedded line breaks from column labels.
func renameColumns(rows []row, columns []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range columns {
		clean := strings.NewReplacer("\r", "", "\n", "").Replace(c)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
		if clean == c {
			continue
		}
		for _, r := range rows {
			if v, ok := r.cells[c]; ok {
				delete(r.cells, c)
				r.cells[clean] = v
			}
		}
	}
	return out
}

func buildLedger(rows []row, columns []string) *model.Ledger {
	var kept []string
	for _, c := range columns {
		if c != model.ColStatus {
			kept = append(kept, c)
		}
	}

	txns := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		txn := model.Transaction{
			CompletionTime: r.time,
			Details:        r.details,
			PaidIn:         r.paidIn,
			Withdrawn:      r.withdrawn.Abs(),
			Balance:        r.balance,
			ReceiptNo:      r.cells[model.ColReceiptNo],
			Type:           model.TypeOther,
		}
		for _, c := range kept {
			if c == model.ColReceiptNo {
				continue
			}
			if txn.Extra == nil {
				txn.Extra = make(map[string]string)
			}
			txn.Extra[c] = r.cells[c]
		}
		txns = append(txns, txn)
	}
	return &model.Ledger{Columns: kept, Transactions: txns}
}

func isRequired(c string) bool {
	return contains(requiredColumns, c)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
