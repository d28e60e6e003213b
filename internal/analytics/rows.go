package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
)

// Row is the listing view of one enriched transaction.
type Row struct {
	CompletionTime     time.Time       `json:"completion_time"`
	ReceiptNo          string          `json:"receipt_no,omitempty"`
	Details            string          `json:"details"`
	PaidIn             decimal.Decimal `json:"paid_in"`
	Withdrawn          decimal.Decimal `json:"withdrawn"`
	Balance            decimal.Decimal `json:"balance"`
	Amount             decimal.Decimal `json:"amount"`
	Type               string          `json:"transaction_type"`
	MonthName          string          `json:"month_name"`
	DayName            string          `json:"day_name"`
	Hour               int             `json:"hour"`
	TimeOfDay          string          `json:"time_of_day"`
	CounterpartyName   string          `json:"counterparty_name"`
	CounterpartyNumber *string         `json:"counterparty_number"`
}

// Rows converts at most limit records to rows; limit <= 0 means all.
func Rows(records []derive.Record, limit int) []Row {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]Row, len(records))
	for i, r := range records {
		out[i] = Row{
			CompletionTime:   r.CompletionTime,
			ReceiptNo:        r.ReceiptNo,
			Details:          r.Details,
			PaidIn:           r.PaidIn,
			Withdrawn:        r.Withdrawn,
			Balance:          r.Balance,
			Amount:           r.Amount,
			Type:             r.Type,
			MonthName:        r.MonthName,
			DayName:          r.DayName,
			Hour:             r.Hour,
			TimeOfDay:        r.TimeOfDay,
			CounterpartyName: r.CounterpartyName,
		}
		if r.HasNumber {
			n := r.CounterpartyNumber
			out[i].CounterpartyNumber = &n
		}
	}
	return out
}
