package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/model"
)

// CashWithdrawalRatio is cash withdrawn over money sent, with its parts.
type CashWithdrawalRatio struct {
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalSent        decimal.Decimal `json:"total_sent"`
	Ratio            float64         `json:"ratio"`
}

// MerchantDiversity is distinct merchant details over merchant payments.
type MerchantDiversity struct {
	UniqueMerchants   int     `json:"unique_merchants"`
	TotalTransactions int     `json:"total_transactions"`
	Ratio             float64 `json:"diversity_ratio"`
}

// CreditReport collects every credit indicator.
type CreditReport struct {
	ExpenseRatio         float64             `json:"expense_ratio"`
	CashWithdrawal       CashWithdrawalRatio `json:"cash_withdrawal_ratio"`
	MerchantDiversity    MerchantDiversity   `json:"merchant_diversity"`
	IncomeStabilityScore float64             `json:"income_stability_score"`
	IncomeRegularity     float64             `json:"income_regularity"`
	AverageMonthlyIncome float64             `json:"average_monthly_income"`
	NetFlow              decimal.Decimal     `json:"net_flow"`
	EndOfMonthBalanceAvg float64             `json:"end_of_month_balance_avg"`
	LowBalanceFrequency  float64             `json:"low_balance_frequency"`
	TransactionFrequency float64             `json:"transaction_frequency"`
	ActivityRatio        float64             `json:"activity_ratio"`
}

// Credit computes every indicator.
func Credit(records []derive.Record) CreditReport {
	return CreditReport{
		ExpenseRatio:         ExpenseRatio(records),
		CashWithdrawal:       CashWithdrawal(records),
		MerchantDiversity:    Diversity(records),
		IncomeStabilityScore: IncomeStability(records),
		IncomeRegularity:     IncomeRegularity(records),
		AverageMonthlyIncome: AverageMonthlyIncome(records),
		NetFlow:              NetFlow(records),
		EndOfMonthBalanceAvg: EndOfMonthBalanceAvg(records),
		LowBalanceFrequency:  LowBalanceFrequency(records),
		TransactionFrequency: TransactionFrequency(records),
		ActivityRatio:        ActivityRatio(records),
	}
}

// ExpenseRatio is money sent over total paid in.
func ExpenseRatio(records []derive.Record) float64 {
	return ratio(sumWithdrawn(records, model.TypeSendMoney), sumPaidIn(records))
}

// CashWithdrawal is cash withdrawn over money sent.
func CashWithdrawal(records []derive.Record) CashWithdrawalRatio {
	withdrawn := sumWithdrawn(records, model.TypeCashWithdrawal)
	sent := sumWithdrawn(records, model.TypeSendMoney)
	return CashWithdrawalRatio{TotalWithdrawals: withdrawn, TotalSent: sent, Ratio: ratio(withdrawn, sent)}
}

// Diversity is the number of distinct details among till and pay bill
// payments over the number of such payments.
func Diversity(records []derive.Record) MerchantDiversity {
	merchants := Filter(records, OfType(model.TypeTillNo, model.TypePayBill))
	unique := make(map[string]bool)
	for _, r := range merchants {
		unique[r.Details] = true
	}
	d := MerchantDiversity{UniqueMerchants: len(unique), TotalTransactions: len(merchants)}
	if d.TotalTransactions > 0 {
		d.Ratio = float64(d.UniqueMerchants) / float64(d.TotalTransactions)
	}
	return d
}

// IncomeStability is 1 - stdev/mean of monthly paid-in totals, floored at 0.
// Fewer than two months or a zero mean score 0.
func IncomeStability(records []derive.Record) float64 {
	totals := monthlyIncome(records)
	mean := meanOf(totals)
	sd, ok := sampleStdDev(totals)
	if !ok || mean == 0 {
		return 0
	}
	return math.Max(0, 1-sd/mean)
}

// IncomeRegularity is the sample standard deviation of monthly paid-in
// totals, 0 with fewer than two months.
func IncomeRegularity(records []derive.Record) float64 {
	sd, _ := sampleStdDev(monthlyIncome(records))
	return sd
}

// AverageMonthlyIncome is the mean of monthly paid-in totals.
func AverageMonthlyIncome(records []derive.Record) float64 {
	return meanOf(monthlyIncome(records))
}

// NetFlow is total paid in minus money sent.
func NetFlow(records []derive.Record) decimal.Decimal {
	return sumPaidIn(records).Sub(sumWithdrawn(records, model.TypeSendMoney))
}

// EndOfMonthBalanceAvg averages the last balance recorded in each month.
func EndOfMonthBalanceAvg(records []derive.Record) float64 {
	last := make(map[string]decimal.Decimal)
	for _, r := range byTime(records) {
		last[r.MonthName] = r.Balance
	}
	values := make([]float64, 0, len(last))
	for _, b := range last {
		values = append(values, b.InexactFloat64())
	}
	return meanOf(values)
}

// LowBalanceFrequency counts the days whose closing balance is below the
// mean closing balance, over the calendar days of the months present.
func LowBalanceFrequency(records []derive.Record) float64 {
	closing := make(map[civilDate]decimal.Decimal)
	for _, r := range byTime(records) {
		closing[dateOf(r.CompletionTime)] = r.Balance
	}
	values := make([]float64, 0, len(closing))
	for _, b := range closing {
		values = append(values, b.InexactFloat64())
	}
	mean := meanOf(values)
	low := 0
	for _, v := range values {
		if v < mean {
			low++
		}
	}
	return ratioInt(low, spannedDays(records))
}

// TransactionFrequency is the mean number of transactions per month.
func TransactionFrequency(records []derive.Record) float64 {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.MonthName]++
	}
	values := make([]float64, 0, len(counts))
	for _, c := range counts {
		values = append(values, float64(c))
	}
	return meanOf(values)
}

// ActivityRatio is the number of days with a transaction over the calendar
// days of the months present.
func ActivityRatio(records []derive.Record) float64 {
	days := make(map[civilDate]bool)
	for _, r := range records {
		days[dateOf(r.CompletionTime)] = true
	}
	return ratioInt(len(days), spannedDays(records))
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

// spannedDays sums the true length of every (year, month) present.
func spannedDays(records []derive.Record) int {
	type yearMonth struct {
		year  int
		month time.Month
	}
	seen := make(map[yearMonth]bool)
	total := 0
	for _, r := range records {
		ym := yearMonth{r.CompletionTime.Year(), r.CompletionTime.Month()}
		if seen[ym] {
			continue
		}
		seen[ym] = true
		total += daysIn(ym.year, ym.month)
	}
	return total
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// byTime returns records stable-sorted by completion time.
func byTime(records []derive.Record) []derive.Record {
	out := make([]derive.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CompletionTime.Before(out[b].CompletionTime)
	})
	return out
}

func monthlyIncome(records []derive.Record) []float64 {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		totals[r.MonthName] = totals[r.MonthName].Add(r.PaidIn)
	}
	values := make([]float64, 0, len(totals))
	for _, t := range totals {
		values = append(values, t.InexactFloat64())
	}
	return values
}

func sumPaidIn(records []derive.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.PaidIn)
	}
	return total
}

func sumWithdrawn(records []derive.Record, txType string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Type == txType {
			total = total.Add(r.Withdrawn)
		}
	}
	return total
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev uses n-1 degrees of freedom; ok is false below two values.
func sampleStdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean := meanOf(values)
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1)), true
}

func ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).InexactFloat64()
}

func ratioInt(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
