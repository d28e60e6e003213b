package analytics

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/model"
)

// Bundle is the fixed set of metrics reported for every category view.
type Bundle struct {
	TotalTransactions           int             `json:"total_transactions"`
	AverageTransactionsPerMonth float64         `json:"average_transactions_per_month"`
	TotalTransactedAmount       decimal.Decimal `json:"total_transacted_amount"`
	HighestTransactedAmount     decimal.Decimal `json:"highest_transacted_amount"`
	MinimumTransactedAmount     decimal.Decimal `json:"minimum_transacted_amount"`
	AverageTransactedAmount     decimal.Decimal `json:"average_transacted_amount"`
}

// NewBundle computes the bundle of records. ok is false when records is empty.
func NewBundle(records []derive.Record) (b Bundle, ok bool) {
	if len(records) == 0 {
		return Bundle{}, false
	}
	b.TotalTransactions = len(records)
	b.HighestTransactedAmount = records[0].Amount
	b.MinimumTransactedAmount = records[0].Amount
	for _, r := range records {
		b.TotalTransactedAmount = b.TotalTransactedAmount.Add(r.Amount)
		if r.Amount.GreaterThan(b.HighestTransactedAmount) {
			b.HighestTransactedAmount = r.Amount
		}
		if r.Amount.LessThan(b.MinimumTransactedAmount) {
			b.MinimumTransactedAmount = r.Amount
		}
	}
	b.AverageTransactedAmount = b.TotalTransactedAmount.Div(decimal.NewFromInt(int64(len(records))))

	if months := Aggregate(records, ByMonth, Amount); len(months) > 0 {
		rows := 0
		for _, m := range months {
			rows += m.Size
		}
		b.AverageTransactionsPerMonth = float64(rows) / float64(len(months))
	}
	return b, true
}

// AllowLists are the fixed phrase, name and number lists behind the
// category views.
type AllowLists struct {
	SavingsPhrases []string `yaml:"savings_phrases" validate:"dive,required"`
	ShoppingNames  []string `yaml:"shopping_names" validate:"dive,required"`
	BettingNumbers []int64  `yaml:"betting_numbers"`
	BillTypes      []string `yaml:"bill_types" validate:"dive,required"`
	KPLCNumbers    []string `yaml:"kplc_numbers" validate:"dive,numeric"`
	WiFiNumbers    []string `yaml:"safaricom_wifi_numbers" validate:"dive,numeric"`
	ZukuNumbers    []string `yaml:"zuku_numbers" validate:"dive,numeric"`
	FuelNames      []string `yaml:"fuel_names" validate:"dive,required"`
}

// DefaultAllowLists returns the built-in lists.
func DefaultAllowLists() AllowLists {
	return AllowLists{
		SavingsPhrases: []string{"M-Shwari Lock Activate", "SANLAM", "M-Shwari Deposit"},
		ShoppingNames:  []string{"Quick Mart", "Naivas", "Tuskys"},
		BettingNumbers: []int64{4097371, 290290, 290680, 955100},
		BillTypes:      []string{model.TypePayBill, model.TypeTillNo},
		KPLCNumbers:    []string{"888888", "888880"},
		WiFiNumbers:    []string{"150501"},
		ZukuNumbers:    []string{"320320"},
		FuelNames:      []string{"Rubis", "Shell", "Total", "Astrol"},
	}
}

// Category is a named filter over records.
type Category struct {
	Name  string
	Match func(derive.Record) bool
}

// Category names.
const (
	CategorySavings       = "savings"
	CategoryShopping      = "shopping"
	CategoryBetting       = "betting"
	CategoryDataBills     = "data_bills"
	CategoryKPLC          = "kplc"
	CategorySafaricomWiFi = "safaricom_wifi"
	CategoryZuku          = "zuku"
	CategoryFuel          = "fuel"
)

// Categories builds the category filters from lists.
func Categories(lists AllowLists) []Category {
	bill := OfType(lists.BillTypes...)
	billNumber := func(numbers []string) func(derive.Record) bool {
		return func(r derive.Record) bool {
			return bill(r) && r.HasNumber && containsString(numbers, r.CounterpartyNumber)
		}
	}
	return []Category{
		{CategorySavings, func(r derive.Record) bool { return containsFold(r.Details, lists.SavingsPhrases) }},
		{CategoryShopping, func(r derive.Record) bool { return containsFold(r.CounterpartyName, lists.ShoppingNames) }},
		{CategoryBetting, func(r derive.Record) bool { return containsInt(lists.BettingNumbers, NumberValue(r)) }},
		{CategoryDataBills, bill},
		{CategoryKPLC, billNumber(lists.KPLCNumbers)},
		{CategorySafaricomWiFi, billNumber(lists.WiFiNumbers)},
		{CategoryZuku, billNumber(lists.ZukuNumbers)},
		{CategoryFuel, func(r derive.Record) bool { return bill(r) && containsFold(r.CounterpartyName, lists.FuelNames) }},
	}
}

// NumberValue is the counterparty number as an integer, 0 when it is
// absent or not purely numeric.
func NumberValue(r derive.Record) int64 {
	if !r.HasNumber {
		return 0
	}
	n, err := strconv.ParseInt(r.CounterpartyNumber, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func containsFold(s string, phrases []string) bool {
	s = strings.ToLower(s)
	for _, p := range phrases {
		if strings.Contains(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int64, n int64) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
