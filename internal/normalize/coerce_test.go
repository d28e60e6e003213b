package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,000", "1000"},
		{"  2,500.75 ", "2500.75"},
		{"-300.00", "-300"},
		{"", "0"},
		{"nan", "0"},
		{"12abc", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAmount(tt.in).String(), "ParseAmount(%q)", tt.in)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-05 10:00:00", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-05 10:00", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-05\r23:59:01", time.Date(2024, 1, 5, 23, 59, 1, 0, time.UTC), true},
		{"2024-01-05T08:30:00", time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), true},
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"03/04/2024 14:00", time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"Completion Time", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseTime(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseTime(%q)", tt.in)
		assert.True(t, tt.want.Equal(got), "ParseTime(%q) = %v", tt.in, got)
	}
}

func TestCleanDetails(t *testing.T) {
	assert.Equal(t, "Customer Transfer to John", CleanDetails("Customer Transfer\rto John"))
	assert.Equal(t, "Pay Bill to 888880 - KPLC", CleanDetails("Pay Bill to\n888880 - KPLC"))
	assert.Equal(t, "abc", CleanDetails("a\x00b\x07c"))
}
