package derive

import (
	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/model"
)

// Record is a transaction with its analysis attributes attached.
type Record struct {
	model.Transaction
	Amount             decimal.Decimal
	TimeOfDay          string
	CounterpartyName   string
	CounterpartyNumber string
	HasNumber          bool
}

// Enrich computes the analysis attributes for every transaction of the ledger.
// The ledger itself is not modified.
func Enrich(ledger *model.Ledger) []Record {
	out := make([]Record, 0, ledger.Len())
	if ledger == nil {
		return out
	}
	for _, txn := range ledger.Transactions {
		hour := txn.Hour
		if txn.MonthName == "" {
			_, _, hour = Calendar(txn.CompletionTime)
		}
		number, ok := ExtractNumber(txn.Details)
		out = append(out, Record{
			Transaction:        txn,
			Amount:             txn.Amount(),
			TimeOfDay:          TimeBucket(hour),
			CounterpartyName:   ExtractName(txn.Details),
			CounterpartyNumber: number,
			HasNumber:          ok,
		})
	}
	return out
}
