package model

// Column labels of the statement table and the canonical ledger file.
const (
	ColCompletionTime = "Completion Time"
	ColDetails        = "Details"
	ColPaidIn         = "Paid In"
	ColWithdrawn      = "Withdrawn"
	ColBalance        = "Balance"
	ColReceiptNo      = "Receipt No."
	ColStatus         = "Transaction Status"
	ColMonthName      = "month_name"
	ColDayName        = "day_name"
	ColHour           = "Hour"
	ColType           = "Transaction_Type"
)

// StatusCompleted is the only status kept by normalization.
const StatusCompleted = "Completed"

// RawRow maps a column label to cell text as produced by table extraction.
// A blank cell and an absent label are both missing values.
type RawRow map[string]string

// RawTable is an ordered sequence of rows extracted from one document page or sheet.
type RawTable struct {
	Columns []string
	Rows    []RawRow
}
