package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
)

// Summary holds the ledger-wide totals, counts and extremes.
type Summary struct {
	TotalReceived           decimal.Decimal `json:"total_received"`
	TotalWithdrawn          decimal.Decimal `json:"total_withdrawn"`
	TotalTransacted         decimal.Decimal `json:"total_transacted"`
	WithdrawalCount         int             `json:"withdrawal_count"`
	DepositCount            int             `json:"deposit_count"`
	TotalTransactionCount   int             `json:"total_transaction_count"`
	TopDeposit              decimal.Decimal `json:"top_deposit"`
	LowestDeposit           decimal.Decimal `json:"lowest_deposit"`
	TopWithdrawal           decimal.Decimal `json:"top_withdrawal"`
	LowestWithdrawal        decimal.Decimal `json:"lowest_withdrawal"`
	MinimumAmountTransacted decimal.Decimal `json:"minimum_amount_transacted"`
	MaximumAmountTransacted decimal.Decimal `json:"maximum_amount_transacted"`
}

// Summarize computes the Summary. Lowest deposit and lowest withdrawal
// ignore zero amounts and are 0 when no such row exists.
func Summarize(records []derive.Record) Summary {
	var s Summary
	var haveLowDep, haveLowWd bool
	for i, r := range records {
		s.TotalReceived = s.TotalReceived.Add(r.PaidIn)
		s.TotalWithdrawn = s.TotalWithdrawn.Add(r.Withdrawn)

		if i == 0 || r.PaidIn.GreaterThan(s.TopDeposit) {
			s.TopDeposit = r.PaidIn
		}
		if i == 0 || r.Withdrawn.GreaterThan(s.TopWithdrawal) {
			s.TopWithdrawal = r.Withdrawn
		}

		if !r.PaidIn.IsZero() {
			s.DepositCount++
			if !haveLowDep || r.PaidIn.LessThan(s.LowestDeposit) {
				s.LowestDeposit = r.PaidIn
				haveLowDep = true
			}
		}
		if !r.Withdrawn.IsZero() {
			s.WithdrawalCount++
			if !haveLowWd || r.Withdrawn.LessThan(s.LowestWithdrawal) {
				s.LowestWithdrawal = r.Withdrawn
				haveLowWd = true
			}
		}
	}
	s.TotalTransacted = s.TotalReceived.Add(s.TotalWithdrawn)
	s.TotalTransactionCount = s.WithdrawalCount + s.DepositCount

	if s.LowestWithdrawal.IsPositive() && (s.LowestDeposit.IsZero() || s.LowestWithdrawal.LessThan(s.LowestDeposit)) {
		s.MinimumAmountTransacted = s.LowestWithdrawal
	} else {
		s.MinimumAmountTransacted = s.LowestDeposit
	}

	if s.TopWithdrawal.GreaterThan(s.TopDeposit) {
		s.MaximumAmountTransacted = s.TopWithdrawal
	} else {
		s.MaximumAmountTransacted = s.TopDeposit
	}
	return s
}
