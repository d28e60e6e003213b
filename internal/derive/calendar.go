// Package derive computes calendar, time-of-day and counterparty attributes.
package derive

import (
	"time"

	"github.com/pesalens/pesalens/internal/model"
)

// Time-of-day buckets. Each covers a closed-open hour range.
const (
	BucketEarlyNight = "Night (00-06)"
	BucketMorning    = "Morning (06-12)"
	BucketAfternoon  = "Afternoon (12-17)"
	BucketEvening    = "Evening (17-22)"
	BucketLateNight  = "Night (22-00)"
)

// Calendar returns the month name, weekday name and hour of t.
func Calendar(t time.Time) (month, day string, hour int) {
	return t.Month().String(), t.Weekday().String(), t.Hour()
}

// ApplyCalendar fills the calendar attributes of every transaction.
func ApplyCalendar(ledger *model.Ledger) {
	for i := range ledger.Transactions {
		txn := &ledger.Transactions[i]
		txn.MonthName, txn.DayName, txn.Hour = Calendar(txn.CompletionTime)
	}
}

// TimeBucket maps an hour of the day to its bucket.
func TimeBucket(hour int) string {
	switch {
	case hour >= 0 && hour < 6:
		return BucketEarlyNight
	case hour >= 6 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 22:
		return BucketEvening
	default:
		return BucketLateNight
	}
}

// BucketOf is TimeBucket for an optional hour; an undefined hour has no bucket.
func BucketOf(hour *int) string {
	if hour == nil {
		return ""
	}
	return TimeBucket(*hour)
}
