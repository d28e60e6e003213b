package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/model"
)

// TypeTotal is the count and total amount of one transaction type.
type TypeTotal struct {
	Type        string          `json:"transaction_type"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PeriodActivity is the receipt count and mean amount of one time period.
type PeriodActivity struct {
	Period       string          `json:"period"`
	ReceiptCount int             `json:"receipt_count"`
	MeanAmount   decimal.Decimal `json:"mean_amount"`
}

// Counterparty is a ranked counterparty with its summed amount.
type Counterparty struct {
	Name         string          `json:"name"`
	Number       string          `json:"number"`
	ReceiptCount int             `json:"receipt_count"`
	Amount       decimal.Decimal `json:"amount"`
}

// PayBillCounterparty is a ranked pay bill with its largest single payment.
type PayBillCounterparty struct {
	Name         string          `json:"name"`
	Number       string          `json:"number"`
	ReceiptCount int             `json:"receipt_count"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
}

// TypeTotals counts and sums amounts per transaction type.
func TypeTotals(records []derive.Record) []TypeTotal {
	groups := Aggregate(records, ByType, Amount)
	out := make([]TypeTotal, len(groups))
	for i, g := range groups {
		out[i] = TypeTotal{Type: g.Keys[0], Count: g.Size, TotalAmount: g.Sum}
	}
	return out
}

// TimeOfDayActivity ranks time-of-day buckets by receipt count.
func TimeOfDayActivity(records []derive.Record) []PeriodActivity {
	return periodActivity(records, ByTimeOfDay)
}

// WeekdayActivity ranks weekdays by receipt count.
func WeekdayActivity(records []derive.Record) []PeriodActivity {
	return periodActivity(records, ByWeekday)
}

func periodActivity(records []derive.Record, key KeyFunc) []PeriodActivity {
	groups := Top(Aggregate(records, key, Amount), TopN)
	out := make([]PeriodActivity, len(groups))
	for i, g := range groups {
		out[i] = PeriodActivity{Period: g.Keys[0], ReceiptCount: g.Count, MeanAmount: g.Mean}
	}
	return out
}

// TopCounterparties ranks the counterparties of one transaction type by
// receipt count, summing their amounts.
func TopCounterparties(records []derive.Record, txType string) []Counterparty {
	groups := Top(Aggregate(Filter(records, OfType(txType)), ByCounterparty, Amount), TopN)
	out := make([]Counterparty, len(groups))
	for i, g := range groups {
		out[i] = Counterparty{Name: g.Keys[0], Number: g.Keys[1], ReceiptCount: g.Count, Amount: g.Sum}
	}
	return out
}

// TopPayBills ranks pay bill counterparties by receipt count with their
// largest payment.
func TopPayBills(records []derive.Record) []PayBillCounterparty {
	groups := Top(Aggregate(Filter(records, OfType(model.TypePayBill)), ByCounterparty, Amount), TopN)
	out := make([]PayBillCounterparty, len(groups))
	for i, g := range groups {
		out[i] = PayBillCounterparty{Name: g.Keys[0], Number: g.Keys[1], ReceiptCount: g.Count, MaxAmount: g.Max}
	}
	return out
}
