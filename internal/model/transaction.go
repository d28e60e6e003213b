package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types produced by the classifier that other packages refer to.
const (
	TypeSendMoney       = "Send Money"
	TypePayBill         = "Pay Bill"
	TypeTillNo          = "Till No"
	TypeCashWithdrawal  = "Cash Withdrawal"
	TypeReceivedMoney   = "Received Money"
	TypeCustomerDeposit = "Customer Deposit"
	TypeCharges         = "Mpesa Charges" // internal fee label, never persisted
	TypeOther           = "Other"
)

// Transaction is one row of the canonical ledger.
type Transaction struct {
	CompletionTime time.Time
	Details        string
	PaidIn         decimal.Decimal
	Withdrawn      decimal.Decimal // always >= 0 once normalized
	Balance        decimal.Decimal
	ReceiptNo      string
	Type           string
	MonthName      string
	DayName        string
	Hour           int
	Extra          map[string]string // original columns that survived normalization
}

// Amount is paid in plus withdrawn.
func (t Transaction) Amount() decimal.Decimal {
	return t.PaidIn.Add(t.Withdrawn)
}

// Ledger is the classified collection of transactions from one ingestion run.
type Ledger struct {
	ID           string
	Columns      []string // optional columns present in every row, in file order
	Transactions []Transaction
}

// Has reports whether an optional column survived normalization.
func (l *Ledger) Has(column string) bool {
	for _, c := range l.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Transactions)
}
