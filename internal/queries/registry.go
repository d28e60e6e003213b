// Package queries names the analytics views and runs them against stored ledgers.
package queries

import (
	"sort"

	"github.com/pesalens/pesalens/internal/analytics"
	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/model"
)

// Func computes a query payload from a dataset.
type Func func(d *analytics.Dataset) (any, error)

// Query is a named, read-only view over one ledger.
type Query struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns,omitempty"` // optional columns the query needs
	Run         Func     `json:"-"`
}

// Registry holds queries by name.
type Registry struct {
	queries map[string]Query
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{queries: make(map[string]Query)}
}

// Register adds a query. Panics on duplicate name.
func (r *Registry) Register(q Query) {
	if _, ok := r.queries[q.Name]; ok {
		panic("duplicate query: " + q.Name)
	}
	r.queries[q.Name] = q
}

// Get returns the named query.
func (r *Registry) Get(name string) (Query, bool) {
	q, ok := r.queries[name]
	return q, ok
}

// List returns every query sorted by name.
func (r *Registry) List() []Query {
	out := make([]Query, 0, len(r.queries))
	for _, q := range r.queries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultRegistry registers every built-in query, with category views
// built from lists.
func DefaultRegistry(lists analytics.AllowLists) *Registry {
	r := NewRegistry()

	summary := func(name, desc string, pick func(analytics.Summary) any) {
		r.Register(Query{Name: name, Description: desc, Run: func(d *analytics.Dataset) (any, error) {
			return pick(analytics.Summarize(d.Records)), nil
		}})
	}
	summary("summary", "All ledger totals, counts and extremes", func(s analytics.Summary) any { return s })
	summary("total_received", "Sum of paid in", func(s analytics.Summary) any { return map[string]any{"total": s.TotalReceived} })
	summary("total_withdrawn", "Sum of withdrawn", func(s analytics.Summary) any { return map[string]any{"total": s.TotalWithdrawn} })
	summary("total_transacted", "Sum of paid in and withdrawn", func(s analytics.Summary) any { return map[string]any{"total": s.TotalTransacted} })
	summary("withdrawal_count", "Rows with a non-zero withdrawal", func(s analytics.Summary) any {
		return map[string]any{"no_of_withdrawals": s.WithdrawalCount}
	})
	summary("deposit_count", "Rows with a non-zero deposit", func(s analytics.Summary) any {
		return map[string]any{"number_of_deposits": s.DepositCount}
	})
	summary("total_transaction_count", "Withdrawal count plus deposit count", func(s analytics.Summary) any {
		return map[string]any{"total_no_of_transactions": s.TotalTransactionCount}
	})
	summary("top_deposit", "Largest deposit", func(s analytics.Summary) any {
		return map[string]any{"highest_received_amount": s.TopDeposit}
	})
	summary("lowest_deposit", "Smallest non-zero deposit", func(s analytics.Summary) any {
		return map[string]any{"lowest_amount_received": s.LowestDeposit}
	})
	summary("top_withdrawal", "Largest withdrawal", func(s analytics.Summary) any {
		return map[string]any{"highest_withdrawn_amount": s.TopWithdrawal}
	})
	summary("lowest_withdrawal", "Smallest non-zero withdrawal", func(s analytics.Summary) any {
		return map[string]any{"lowest_withdrawn_amount": s.LowestWithdrawal}
	})
	summary("minimum_amount_transacted", "Smallest non-zero amount in either direction", func(s analytics.Summary) any {
		return map[string]any{"lowest_amount_transacted": s.MinimumAmountTransacted}
	})
	summary("maximum_amount_transacted", "Largest amount in either direction", func(s analytics.Summary) any {
		return map[string]any{"highest_amount_transacted": s.MaximumAmountTransacted}
	})

	r.Register(Query{Name: "trans_type", Description: "Count and total amount per transaction type",
		Run: func(d *analytics.Dataset) (any, error) { return data(analytics.TypeTotals(d.Records)), nil }})

	receipts := []string{model.ColReceiptNo}
	r.Register(Query{Name: "top_transaction_hour", Description: "Top time-of-day buckets by receipt count", Columns: receipts,
		Run: func(d *analytics.Dataset) (any, error) { return data(analytics.TimeOfDayActivity(d.Records)), nil }})
	r.Register(Query{Name: "top_transaction_day", Description: "Top weekdays by receipt count", Columns: receipts,
		Run: func(d *analytics.Dataset) (any, error) { return data(analytics.WeekdayActivity(d.Records)), nil }})
	r.Register(Query{Name: "top_paybill_transactions", Description: "Top pay bills by receipt count with largest payment", Columns: receipts,
		Run: func(d *analytics.Dataset) (any, error) { return data(analytics.TopPayBills(d.Records)), nil }})

	for name, txType := range map[string]string{
		"top_till_transactions":       model.TypeTillNo,
		"top_send_money_transactions": model.TypeSendMoney,
		"top_transactions_customer":   model.TypeCustomerDeposit,
		"top_withdrawals":             model.TypeCashWithdrawal,
		"top_transactions_received":   model.TypeReceivedMoney,
	} {
		txType := txType
		r.Register(Query{Name: name, Description: "Top " + txType + " counterparties by receipt count", Columns: receipts,
			Run: func(d *analytics.Dataset) (any, error) {
				return data(analytics.TopCounterparties(d.Records, txType)), nil
			}})
	}

	for _, c := range analytics.Categories(lists) {
		c := c
		r.Register(Query{Name: c.Name, Description: "Transactions in the " + c.Name + " category",
			Run: func(d *analytics.Dataset) (any, error) {
				matched := analytics.Filter(d.Records, c.Match)
				if len(matched) == 0 {
					return nil, noMatches(c.Name)
				}
				return data(analytics.Rows(matched, 0)), nil
			}})
		r.Register(Query{Name: c.Name + "_metrics", Description: "Metric bundle of the " + c.Name + " category",
			Run: func(d *analytics.Dataset) (any, error) {
				b, ok := analytics.NewBundle(analytics.Filter(d.Records, c.Match))
				if !ok {
					return nil, noMatches(c.Name)
				}
				return b, nil
			}})
	}

	registerCredit(r)
	return r
}

func registerCredit(r *Registry) {
	scalar := func(name, desc string, f func(d *analytics.Dataset) any) {
		r.Register(Query{Name: name, Description: desc, Run: func(d *analytics.Dataset) (any, error) {
			return map[string]any{name: f(d)}, nil
		}})
	}
	r.Register(Query{Name: "credit_report", Description: "Every credit indicator",
		Run: func(d *analytics.Dataset) (any, error) { return analytics.Credit(d.Records), nil }})
	scalar("expense_ratio", "Money sent over money received", func(d *analytics.Dataset) any { return analytics.ExpenseRatio(d.Records) })
	r.Register(Query{Name: "cash_withdrawal_ratio", Description: "Cash withdrawn over money sent",
		Run: func(d *analytics.Dataset) (any, error) { return analytics.CashWithdrawal(d.Records), nil }})
	r.Register(Query{Name: "merchant_diversity", Description: "Distinct merchants over merchant payments",
		Run: func(d *analytics.Dataset) (any, error) { return analytics.Diversity(d.Records), nil }})
	scalar("income_stability_score", "One minus the coefficient of variation of monthly income", func(d *analytics.Dataset) any {
		return analytics.IncomeStability(d.Records)
	})
	scalar("income_regularity", "Standard deviation of monthly income", func(d *analytics.Dataset) any {
		return analytics.IncomeRegularity(d.Records)
	})
	scalar("average_monthly_income", "Mean monthly income", func(d *analytics.Dataset) any {
		return analytics.AverageMonthlyIncome(d.Records)
	})
	scalar("net_flow", "Money received minus money sent", func(d *analytics.Dataset) any { return analytics.NetFlow(d.Records) })
	scalar("end_of_month_balance_avg", "Mean closing balance per month", func(d *analytics.Dataset) any {
		return analytics.EndOfMonthBalanceAvg(d.Records)
	})
	scalar("low_balance_frequency", "Share of days closing below the mean daily balance", func(d *analytics.Dataset) any {
		return analytics.LowBalanceFrequency(d.Records)
	})
	scalar("transaction_frequency", "Mean transactions per month", func(d *analytics.Dataset) any {
		return analytics.TransactionFrequency(d.Records)
	})
	scalar("activity_ratio", "Share of days with at least one transaction", func(d *analytics.Dataset) any {
		return analytics.ActivityRatio(d.Records)
	})
}

// data wraps list payloads.
func data(v any) map[string]any {
	return map[string]any{"data": v}
}

func noMatches(category string) error {
	return apperr.Unavailable(apperr.NoMatchingTransactions, stage, "no %s transactions", category)
}
