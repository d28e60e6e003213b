package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/derive"
)

// TopN is the number of groups kept by ranked views.
const TopN = 10

// Group is one bucket of a grouped aggregate. Size counts every row;
// Count counts rows with a receipt number.
type Group struct {
	Keys  []string
	Size  int
	Count int
	Sum   decimal.Decimal
	Mean  decimal.Decimal
	Max   decimal.Decimal
	Min   decimal.Decimal
}

// KeyFunc returns the grouping key of a record; ok is false to leave the
// record out of every group.
type KeyFunc func(derive.Record) (keys []string, ok bool)

// ValueFunc returns the aggregated value of a record.
type ValueFunc func(derive.Record) decimal.Decimal

// Amount is the default value: paid in plus withdrawn.
func Amount(r derive.Record) decimal.Decimal { return r.Amount }

// ByType groups by transaction type.
func ByType(r derive.Record) ([]string, bool) { return []string{r.Type}, true }

// ByTimeOfDay groups by time-of-day bucket.
func ByTimeOfDay(r derive.Record) ([]string, bool) { return []string{r.TimeOfDay}, r.TimeOfDay != "" }

// ByWeekday groups by weekday name.
func ByWeekday(r derive.Record) ([]string, bool) { return []string{r.DayName}, r.DayName != "" }

// ByMonth groups by month name.
func ByMonth(r derive.Record) ([]string, bool) { return []string{r.MonthName}, r.MonthName != "" }

// ByCounterparty groups by counterparty name and number. Records without a
// number are left out.
func ByCounterparty(r derive.Record) ([]string, bool) {
	return []string{r.CounterpartyName, r.CounterpartyNumber}, r.HasNumber
}

// Aggregate groups records by key and aggregates value. Groups are returned
// in ascending key order.
func Aggregate(records []derive.Record, key KeyFunc, value ValueFunc) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		keys, ok := key(r)
		if !ok {
			continue
		}
		k := joinKeys(keys)
		i, seen := index[k]
		v := value(r)
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Keys: keys, Sum: decimal.Zero, Max: v, Min: v})
		}
		g := &groups[i]
		g.Size++
		if r.ReceiptNo != "" {
			g.Count++
		}
		g.Sum = g.Sum.Add(v)
		if v.GreaterThan(g.Max) {
			g.Max = v
		}
		if v.LessThan(g.Min) {
			g.Min = v
		}
	}

	for i := range groups {
		groups[i].Mean = groups[i].Sum.Div(decimal.NewFromInt(int64(groups[i].Size)))
	}
	sort.Slice(groups, func(a, b int) bool {
		return lessKeys(groups[a].Keys, groups[b].Keys)
	})
	return groups
}

// Top returns the first n groups ranked by Count descending. Ties keep
// their key order.
func Top(groups []Group, n int) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func joinKeys(keys []string) string {
	n := 0
	for _, k := range keys {
		n += len(k) + 1
	}
	b := make([]byte, 0, n)
	for _, k := range keys {
		b = append(b, k...)
		b = append(b, 0x1f)
	}
	return string(b)
}

func lessKeys(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
