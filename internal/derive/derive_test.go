package derive

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesalens/pesalens/internal/model"
)

func TestTimeBucket(t *testing.T) {
	cases := map[int]string{
		0:  BucketEarlyNight,
		5:  BucketEarlyNight,
		6:  BucketMorning,
		11: BucketMorning,
		12: BucketAfternoon,
		16: BucketAfternoon,
		17: BucketEvening,
		21: BucketEvening,
		22: BucketLateNight,
		23: BucketLateNight,
	}
	for hour, want := range cases {
		assert.Equal(t, want, TimeBucket(hour), "hour %d", hour)
	}
	assert.Equal(t, "Morning (06-12)", TimeBucket(6))
	assert.Equal(t, "Night (22-00)", TimeBucket(23))
}

func TestBucketOfUndefined(t *testing.T) {
	assert.Equal(t, "", BucketOf(nil))
	h := 12
	assert.Equal(t, BucketAfternoon, BucketOf(&h))
}

func TestCalendar(t *testing.T) {
	month, day, hour := Calendar(time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, "March", month)
	assert.Equal(t, "Friday", day)
	assert.Equal(t, 18, hour)
}

func TestApplyCalendar(t *testing.T) {
	ledger := &model.Ledger{Transactions: []model.Transaction{
		{CompletionTime: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)},
		{CompletionTime: time.Date(2024, 2, 4, 23, 59, 0, 0, time.UTC)},
	}}
	ApplyCalendar(ledger)
	assert.Equal(t, "January", ledger.Transactions[0].MonthName)
	assert.Equal(t, "Monday", ledger.Transactions[0].DayName)
	assert.Equal(t, 7, ledger.Transactions[0].Hour)
	assert.Equal(t, "February", ledger.Transactions[1].MonthName)
	assert.Equal(t, "Sunday", ledger.Transactions[1].DayName)
	assert.Equal(t, 23, ledger.Transactions[1].Hour)
}

func TestExtractName(t *testing.T) {
	cases := []struct {
		details string
		want    string
	}{
		{"Customer Transfer to 0712***678 JOHN DOE", "JOHN DOE"},
		// the separator hyphen is part of the capture
		{"Merchant Payment to 123456 - NAIVAS WESTLANDS", "- NAIVAS WESTLANDS"},
		{"Funds received from 2547******89 MARY-ANN WANJIRU", "MARY-ANN WANJIRU"},
		{"Pay Bill to 888880 - KPLC PREPAID Acc. 1234", "- KPLC PREPAID Acc"},
		// capture too short, details echoed
		{"Deposit 12 abc", "Deposit 12 abc"},
		// no digits at all
		{"OD Loan Repayment", "OD Loan Repayment"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractName(c.details), c.details)
	}
}

func TestExtractNumber(t *testing.T) {
	n, ok := ExtractNumber("Pay Bill Online to 4097371 - XYZ")
	require.True(t, ok)
	assert.Equal(t, "4097371", n)

	n, ok = ExtractNumber("Customer Transfer to 0******678 JOHN")
	require.True(t, ok)
	assert.Equal(t, "0******678", n)

	// digits are concatenated when there is no "to <n> -" form
	n, ok = ExtractNumber("Withdrawal at Agent Till 12 ab 34")
	require.True(t, ok)
	assert.Equal(t, "1234", n)

	// "To" is case-sensitive and falls through to the digit scan
	n, ok = ExtractNumber("Sent To 555 - ME")
	require.True(t, ok)
	assert.Equal(t, "555", n)

	_, ok = ExtractNumber("OD Loan Repayment")
	assert.False(t, ok)
}

func TestEnrich(t *testing.T) {
	ledger := &model.Ledger{Transactions: []model.Transaction{{
		CompletionTime: time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
		Details:        "Merchant Payment to 123456 - NAIVAS",
		PaidIn:         decimal.Zero,
		Withdrawn:      decimal.NewFromInt(250),
		Type:           model.TypeTillNo,
	}, {
		CompletionTime: time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		Details:        "Interest",
		PaidIn:         decimal.NewFromInt(5),
		Withdrawn:      decimal.Zero,
		Type:           model.TypeOther,
	}}}
	ApplyCalendar(ledger)

	recs := Enrich(ledger)
	require.Len(t, recs, 2)

	assert.True(t, recs[0].Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, BucketAfternoon, recs[0].TimeOfDay)
	assert.Equal(t, "- NAIVAS", recs[0].CounterpartyName)
	assert.Equal(t, "123456", recs[0].CounterpartyNumber)
	assert.True(t, recs[0].HasNumber)

	assert.Equal(t, BucketEarlyNight, recs[1].TimeOfDay)
	assert.Equal(t, "Interest", recs[1].CounterpartyName)
	assert.False(t, recs[1].HasNumber)

	assert.Empty(t, Enrich(nil))
}
