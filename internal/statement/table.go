package statement

import (
	"strings"

	"github.com/pesalens/pesalens/internal/model"
)

// headerLabels identify the header row of a transaction table.
var headerLabels = []string{
	model.ColReceiptNo,
	model.ColCompletionTime,
	model.ColDetails,
	model.ColStatus,
	model.ColPaidIn,
	model.ColWithdrawn,
	model.ColBalance,
}

const (
	labelCustomerName = "customer name"
	labelMobileNumber = "mobile number"
)

// buildTable turns a grid of cells into a table. Rows before the first
// header row are scanned for holder metadata; repeated header rows (page
// breaks) and blank rows are skipped. ok is false when no header was found.
func buildTable(grid [][]string, holder *Holder) (table model.RawTable, ok bool) {
	start := -1
	for i, cells := range grid {
		if isHeader(cells) {
			start = i
			break
		}
		scanHolder(cells, holder)
	}
	if start < 0 {
		return model.RawTable{}, false
	}

	header := grid[start]
	table.Columns = append(table.Columns, header...)
	for _, cells := range grid[start+1:] {
		if isBlank(cells) || sameRow(cells, header) {
			continue
		}
		row := make(model.RawRow, len(header))
		for i, label := range header {
			if label == "" || i >= len(cells) {
				continue
			}
			row[label] = cells[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, true
}

func isHeader(cells []string) bool {
	for _, c := range cells {
		c = strings.TrimSpace(c)
		for _, l := range headerLabels {
			if strings.EqualFold(c, l) {
				return true
			}
		}
	}
	return false
}

// scanHolder accepts both "Customer Name: X" in one cell and the label and
// value in adjacent cells.
func scanHolder(cells []string, holder *Holder) {
	for i, c := range cells {
		label, value, _ := strings.Cut(c, ":")
		label = strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" {
			value = nextValue(cells[i+1:])
		}
		switch label {
		case labelCustomerName:
			if holder.Name == "" {
				holder.Name = value
			}
		case labelMobileNumber:
			if holder.MobileNumber == "" {
				holder.MobileNumber = value
			}
		}
	}
}

func nextValue(cells []string) string {
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sameRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}
